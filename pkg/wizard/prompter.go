// Package wizard walks a user through creating, editing and destroying jobs.
// It only talks to the terminal through a Prompter.
package wizard

import "errors"

// ErrAborted is returned when the user interrupts a prompt
var ErrAborted = errors.New("wizard aborted")

// Prompter is the terminal the wizard talks to
type Prompter interface {
	// Say prints a message
	Say(format string, args ...any)
	// Ask reads a free-text answer, offering def as an editable default
	Ask(message, def string) (string, error)
	// Choose reads one of options, offering def as the default choice
	Choose(message string, options []string, def string) (string, error)
}
