package main

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Prompter asks the operator for values the flags did not carry.
type Prompter interface {
	Input(title, value string, validate func(string) error) (string, error)
	Password(title string, validate func(string) error) (string, error)
	MultiSelect(title string, options []string, validate func([]string) error) ([]string, error)
}

type huhPrompter struct{}

func (huhPrompter) Input(title, value string, validate func(string) error) (string, error) {
	err := huh.NewInput().
		Title(title).
		Value(&value).
		Validate(validate).
		Run()
	return strings.TrimSpace(value), err
}

func (huhPrompter) Password(title string, validate func(string) error) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Validate(validate).
		Run()
	return value, err
}

func (huhPrompter) MultiSelect(title string, options []string, validate func([]string) error) ([]string, error) {
	var selected []string
	err := huh.NewMultiSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&selected).
		Validate(validate).
		Run()
	return selected, err
}

func isInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func required(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New("The " + field + " field is required.")
		}
		return nil
	}
}

func requiredOption(flag string) error {
	return errors.New("The --" + flag + " option is required when running in non-interactive mode.")
}
