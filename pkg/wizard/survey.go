package wizard

import (
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// SurveyPrompter prompts on the terminal with survey
type SurveyPrompter struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyPrompter writes messages to out; opts are passed to every survey question
func NewSurveyPrompter(out io.Writer, opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{out: out, opts: opts}
}

func (s *SurveyPrompter) Say(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *SurveyPrompter) Ask(message, def string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{
		Message: message,
		Default: def,
	}, &answer, s.opts...)
	return answer, translate(err)
}

func (s *SurveyPrompter) Choose(message string, options []string, def string) (string, error) {
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	for _, option := range options {
		if option == def {
			prompt.Default = def
			break
		}
	}

	var answer string
	err := survey.AskOne(prompt, &answer, s.opts...)
	return answer, translate(err)
}

func translate(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
