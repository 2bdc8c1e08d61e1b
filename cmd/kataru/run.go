package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/runner"
	"github.com/kataru-lang/kataru/pkg/storyyaml"
	"github.com/kataru-lang/kataru/pkg/validate"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <story-dir>",
	Short: "Load, validate, and run a story over stdin/stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
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

	scanner := bufio.NewScanner(os.Stdin)
	input := ""
	for {
		line, err := r.Next(input)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		input = ""

		switch l := line.(type) {
		case runner.LineDialogue:
			fmt.Println(renderDialogue(l.Dialogue.Name, l.Dialogue.Text, len(l.Dialogue.Attributes)))

		case runner.LineChoices:
			fmt.Println(choicePromptStyle.Render("What do you do?"))
			for i, label := range l.Choices.Labels {
				fmt.Printf("  %s %s\n", choiceLabelStyle.Render(strconv.Itoa(i+1)+")"), label)
			}
			input = readChoice(scanner, l.Choices.Labels)

		case runner.LineInput:
			prompt := ""
			if len(l.Prompts) > 0 {
				prompt = l.Prompts[0].Prompt
			}
			fmt.Print(choicePromptStyle.Render(prompt + " "))
			scanner.Scan()
			input = scanner.Text()

		case runner.LineCommand:
			if err := dispatchCommand(os.Stdout, l.Command); err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			}

		case runner.LineInvalidChoice:
			fmt.Println(warnStyle.Render("That's not one of the choices. Try again."))

		case runner.LineEnd:
			fmt.Println(successStyle.Render("— The End —"))
			return nil
		}
	}
}

// readChoice prompts once and reads one line: a valid choice number is
// turned into that choice's label, and any other text is returned
// as typed (an unknown label is left for the Runner to reject).
func readChoice(scanner *bufio.Scanner, labels []string) string {
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return ""
		}
		text := strings.TrimSpace(scanner.Text())
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(labels) {
			return labels[n-1]
		}
		return text
	}
}
