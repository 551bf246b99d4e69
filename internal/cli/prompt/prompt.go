// Package prompt provides the interactive prompts used by appfx init.
package prompt

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user presses Ctrl+C.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err means the user aborted a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err != nil && IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Input prompts for free text with a default.
func Input(label, def string) (string, error) {
	p := promptui.Prompt{Label: label, Default: def}
	result, err := p.Run()
	return result, wrapError(err)
}

// InputWithValidation prompts for text checked by validate.
func InputWithValidation(label, def string, validate func(string) error) (string, error) {
	p := promptui.Prompt{Label: label, Default: def, Validate: validate}
	result, err := p.Run()
	return result, wrapError(err)
}

// InputPort prompts for a TCP port.
func InputPort(label string, def int) (int, error) {
	result, err := InputWithValidation(label, strconv.Itoa(def), ValidatePort)
	if err != nil {
		return 0, err
	}
	port, _ := strconv.Atoi(result)
	return port, nil
}

// ValidatePort accepts 1-65535.
func ValidatePort(s string) error {
	port, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a valid integer")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be a valid port (1-65535)")
	}
	return nil
}

// Select prompts for one of items and returns it.
func Select(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . | white }}",
			Selected: "* {{ . | green }}",
		},
	}
	_, result, err := p.Run()
	return result, wrapError(err)
}

// Confirm prompts for yes/no. An empty answer returns def.
func Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	p := promptui.Prompt{Label: fmt.Sprintf("%s [%s]", label, hint), IsConfirm: true}

	result, err := p.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		if result == "" {
			return def, nil
		}
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}
