// Package prompt provides interactive terminal prompts using charmbracelet/huh.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
)

// Sentinel errors for prompts.
var (
	ErrCanceled  = errors.New("canceled by user")
	ErrNoOptions = errors.New("no options provided")
)

// Prompter abstracts user interaction for testability.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/prompter.go . Prompter
type Prompter interface {
	// Print writes a line of text for the user.
	Print(message string)

	// Confirm asks a yes/no question.
	Confirm(title, description string) (bool, error)

	// Choice asks the user to pick one of options and returns its index.
	Choice(title string, options []string) (int, error)
}

// HuhPrompter implements Prompter with huh forms.
type HuhPrompter struct {
	out io.Writer
}

// New creates a HuhPrompter printing to stdout.
func New() *HuhPrompter {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput creates a HuhPrompter whose Print writes to out.
func NewWithOutput(out io.Writer) *HuhPrompter {
	return &HuhPrompter{out: out}
}

// Print writes message followed by a newline.
func (p *HuhPrompter) Print(message string) {
	fmt.Fprintln(p.out, message)
}

// Confirm asks a yes/no question. It defaults to No.
func (p *HuhPrompter) Confirm(title, description string) (bool, error) {
	var confirmed bool

	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, wrap("confirm prompt", err)
	}

	return confirmed, nil
}

// Choice asks the user to select one of options.
func (p *HuhPrompter) Choice(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}

	huhOptions := make([]huh.Option[int], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt, i)
	}

	var selected int
	err := huh.NewSelect[int]().
		Title(title).
		Options(huhOptions...).
		Value(&selected).
		Run()
	if err != nil {
		return 0, wrap("choice prompt", err)
	}

	return selected, nil
}

// ChooseApp asks the user which of several app bundles ref meant.
func ChooseApp(p Prompter, ref string, candidates []string) (string, error) {
	idx, err := p.Choice(fmt.Sprintf("Several apps match %q", ref), candidates)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(candidates) {
		return "", fmt.Errorf("choice %d out of range", idx)
	}
	return candidates[idx], nil
}

func wrap(what string, err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCanceled
	}
	return fmt.Errorf("%s: %w", what, err)
}
