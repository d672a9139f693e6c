// Package prompt asks the user yes/no questions.
package prompt

import (
	"github.com/AlecAivazis/survey/v2"
)

// Prompter answers a single yes/no question. The interactive
// implementation reads the terminal; tests substitute fixed answers.
type Prompter interface {
	Confirm(message string, def bool) (bool, error)
}

type interactive struct{}

// Interactive returns the terminal-backed Prompter.
func Interactive() Prompter {
	return interactive{}
}

func (interactive) Confirm(message string, def bool) (bool, error) {
	answer := def
	q := &survey.Confirm{Message: message, Default: def}
	if err := survey.AskOne(q, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

// Fixed returns a Prompter that always answers the same way. Used in
// tests and when stdin is not a terminal.
func Fixed(answer bool) Prompter {
	return fixed(answer)
}

type fixed bool

func (f fixed) Confirm(string, bool) (bool, error) { return bool(f), nil }
