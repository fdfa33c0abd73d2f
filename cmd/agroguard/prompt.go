package main

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// errAborted is returned when the user cancels a prompt with Ctrl-C
var errAborted = errors.New("aborted")

// Prompter asks the user for form values. Tests replace the survey implementation.
type Prompter interface {
	Input(message, def, help string) (string, error)
	Select(message string, options []string, def string) (string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def, help string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{Message: message, Default: def, Help: help}, &out)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	prompt := &survey.Select{Message: message, Options: options, PageSize: 10}
	for _, o := range options {
		if o == def {
			prompt.Default = def
			break
		}
	}
	var out string
	err := survey.AskOne(prompt, &out)
	return out, translateSurveyErr(err)
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out)
	return out, translateSurveyErr(err)
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
