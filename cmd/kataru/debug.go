package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/expr-lang/expr"
	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/runner"
	"github.com/kataru-lang/kataru/pkg/storyyaml"
	"github.com/kataru-lang/kataru/pkg/validate"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug <story-dir>",
	Short: "Step through a story one line at a time in an interactive REPL",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebug,
}

// debugger is an interactive stepping REPL over a Runner, grounded
// line-for-line on pkg/debugger.Debugger's prompt-completer-loop
// pattern (readline.NewEx with a PrefixCompleter, a buildPrompt
// method, a Fields-based command switch).
type debugger struct {
	r      *runner.Runner
	last   runner.Line
	output io.Writer
}

func runDebug(cmd *cobra.Command, args []string) error {
	st, err := storyyaml.Load(args[0])
	if err != nil {
		return fmt.Errorf("load story: %w", err)
	}
	if err := validate.Story(st); err != nil {
		return fmt.Errorf("validate story: %w", err)
	}

	bm := bookmark.New()
	r, err := runner.New(bm, st)
	if err != nil {
		return fmt.Errorf("start runner: %w", err)
	}
	d := &debugger{r: r, output: cmd.OutOrStdout()}
	return d.run()
}

func (d *debugger) run() error {
	commands := []string{"next", "snapshot", "load", "print state", "print stack", "watch", "help", "quit"}
	completer := readline.NewPrefixCompleter()
	for _, c := range commands {
		completer.Children = append(completer.Children, readline.PcItem(c))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          d.buildPrompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(d.output, "kataru debugger — type 'help' for commands, 'next' to step.")

	for {
		rl.SetPrompt(d.buildPrompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "next", "n":
			d.handleNext()
		case "snapshot":
			d.handleSnapshot(parts)
		case "load":
			d.handleLoad(parts)
		case "print", "p":
			d.handlePrint(parts)
		case "watch", "w":
			d.handleWatch(strings.TrimSpace(strings.TrimPrefix(line, parts[0])))
		case "help", "?":
			d.handleHelp()
		case "quit", "q":
			fmt.Fprintln(d.output, "Exiting debugger.")
			return nil
		default:
			fmt.Fprintf(d.output, "Unknown command: %q. Type 'help' for available commands.\n", parts[0])
		}
	}
}

func (d *debugger) buildPrompt() string {
	bm := d.r.Bookmark()
	return fmt.Sprintf("kataru[%s:%s:%d]> ", bm.Namespace(), bm.Passage(), bm.Line())
}

func (d *debugger) handleNext() {
	input := ""
	if lc, ok := d.last.(runner.LineChoices); ok && lc.Choices.Len() > 0 {
		input = lc.Choices.Labels[0]
	}
	line, err := d.r.Next(input)
	if err != nil {
		fmt.Fprintln(d.output, errorStyle.Render(err.Error()))
		return
	}
	d.last = line
	d.printLine(line)
}

func (d *debugger) printLine(line runner.Line) {
	switch l := line.(type) {
	case runner.LineDialogue:
		fmt.Fprintln(d.output, renderDialogue(l.Dialogue.Name, l.Dialogue.Text, len(l.Dialogue.Attributes)))
	case runner.LineChoices:
		fmt.Fprintln(d.output, choicePromptStyle.Render(strings.Join(l.Choices.Labels, " | ")))
	case runner.LineCommand:
		fmt.Fprintln(d.output, formatCommand(l.Command))
	case runner.LineInput:
		for _, p := range l.Prompts {
			fmt.Fprintln(d.output, choicePromptStyle.Render(p.Prompt))
		}
	case runner.LineInvalidChoice:
		fmt.Fprintln(d.output, warnStyle.Render("invalid choice"))
	case runner.LineEnd:
		fmt.Fprintln(d.output, successStyle.Render("story ended"))
	}
}

func (d *debugger) handleSnapshot(parts []string) {
	if len(parts) < 2 {
		fmt.Fprintln(d.output, "usage: snapshot <name>")
		return
	}
	d.r.SaveSnapshot(parts[1])
	fmt.Fprintf(d.output, "saved snapshot %q\n", parts[1])
}

func (d *debugger) handleLoad(parts []string) {
	if len(parts) < 2 {
		fmt.Fprintln(d.output, "usage: load <name>")
		return
	}
	if err := d.r.LoadSnapshot(parts[1]); err != nil {
		fmt.Fprintln(d.output, errorStyle.Render(err.Error()))
		return
	}
	fmt.Fprintf(d.output, "loaded snapshot %q\n", parts[1])
}

func (d *debugger) handlePrint(parts []string) {
	if len(parts) < 2 {
		fmt.Fprintln(d.output, "usage: print state|stack")
		return
	}
	bm := d.r.Bookmark()
	switch parts[1] {
	case "state":
		state, err := bm.State()
		if err != nil {
			fmt.Fprintln(d.output, errorStyle.Render(err.Error()))
			return
		}
		for k, v := range state {
			fmt.Fprintf(d.output, "  %s = %s\n", k, v.String())
		}
	case "stack":
		for i, pos := range bm.Stack() {
			fmt.Fprintf(d.output, "  #%d %s:%s:%d\n", i, pos.Namespace, pos.Passage, pos.Line)
		}
	default:
		fmt.Fprintln(d.output, "usage: print state|stack")
	}
}

// handleWatch evaluates a plain expr-lang/expr expression (not
// Kataru's own $var story-expression syntax) against the current
// namespace's state, for ad-hoc inspection at the prompt — e.g.
// "hp > 0 && hasKey" — something pkg/value's own small parser was
// never meant to serve, since it only ever needs to evaluate guard
// and set: text written by a story's author, not typed live by a
// human at a debug prompt.
func (d *debugger) handleWatch(exprText string) {
	if exprText == "" {
		fmt.Fprintln(d.output, "usage: watch <expression>")
		return
	}
	bm := d.r.Bookmark()
	state, err := bm.State()
	if err != nil {
		fmt.Fprintln(d.output, errorStyle.Render(err.Error()))
		return
	}
	env := make(map[string]interface{}, len(state))
	for k, v := range state {
		name := strings.TrimPrefix(k, "$")
		switch v.Kind().String() {
		case "string":
			env[name] = v.AsString()
		case "number":
			env[name] = v.AsNumber()
		case "bool":
			env[name] = v.AsBool()
		}
	}
	result, err := expr.Eval(exprText, env)
	if err != nil {
		fmt.Fprintln(d.output, errorStyle.Render(err.Error()))
		return
	}
	fmt.Fprintf(d.output, "%v\n", result)
}

func (d *debugger) handleHelp() {
	fmt.Fprintln(d.output, `commands:
  next             step to the next line
  snapshot <name>  save a named snapshot of the current bookmark
  load <name>      restore a named snapshot
  print state      show the current namespace's state
  print stack      show the call stack
  watch <expr>     evaluate an expr-lang expression against state
  quit             exit the debugger`)
}
