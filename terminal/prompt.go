package terminal

import "github.com/pterm/pterm"

// Prompter asks the people at the keyboard for input.
type Prompter interface {
	Text(prompt, defaultValue string) (string, error)
	Select(prompt string, options []string) (string, error)
	Confirm(prompt string, defaultValue bool) (bool, error)
}

type ptermPrompter struct{}

// NewPrompter returns a Prompter backed by pterm's interactive printers.
func NewPrompter() Prompter {
	return ptermPrompter{}
}

func (ptermPrompter) Text(prompt, defaultValue string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithDefaultText(prompt).WithDefaultValue(defaultValue).Show()
}

func (ptermPrompter) Select(prompt string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.WithDefaultText(prompt).WithOptions(options).Show()
}

func (ptermPrompter) Confirm(prompt string, defaultValue bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultText(prompt).WithDefaultValue(defaultValue).Show()
}
