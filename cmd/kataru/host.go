package main

import (
	"fmt"
	"io"
	"time"

	"github.com/kataru-lang/kataru/pkg/story"
)

// hostCommand is a Command a story can invoke that the terminal host
// itself understands and executes, rather than just printing for the
// player to notice. Anything not in this table is simply echoed.
type hostCommand func(w io.Writer, cmd story.Command) error

// hostCommands is the small dispatch table the run and play
// subcommands both consult before falling back to printing the
// command name and its parameters, mirroring how the teacher's
// providers package dispatches a Step's Type to a handler and falls
// through to an error for anything unregistered.
var hostCommands = map[string]hostCommand{
	"clearScreen": func(w io.Writer, cmd story.Command) error {
		fmt.Fprint(w, "\x1b[2J\x1b[H")
		return nil
	},
	"wait": func(w io.Writer, cmd story.Command) error {
		seconds := 1.0
		if v, ok := cmd.Params.Get("seconds"); ok && v.IsNumber() {
			seconds = v.AsNumber()
		}
		time.Sleep(time.Duration(seconds * float64(time.Second)))
		return nil
	},
}

// dispatchCommand runs cmd through hostCommands if it's registered,
// otherwise prints it so the player/developer can see what the story
// asked for.
func dispatchCommand(w io.Writer, cmd story.Command) error {
	if fn, ok := hostCommands[cmd.Name]; ok {
		return fn(w, cmd)
	}
	fmt.Fprintf(w, "%s\n", dimStyle.Render(formatCommand(cmd)))
	return nil
}

func formatCommand(cmd story.Command) string {
	s := "> " + cmd.Name
	for _, p := range cmd.Params {
		s += fmt.Sprintf(" %s=%s", p.Name, p.Value.String())
	}
	return s
}
