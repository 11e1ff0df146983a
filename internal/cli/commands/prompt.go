package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// Prompter asks the user for login details
type Prompter interface {
	Username() (string, error)
	Password() (string, error)
}

// terminalPrompter prompts on the controlling terminal
type terminalPrompter struct{}

func (terminalPrompter) interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (p terminalPrompter) Username() (string, error) {
	if !p.interactive() {
		return "", errors.New("username is required in non-interactive mode (use --username flag or BOXOFFICE_USERNAME env var)")
	}

	prompt := promptui.Prompt{
		Label: "Username or email",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("username is required")
			}
			return nil
		},
	}

	username, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("login cancelled: %w", err)
	}
	return strings.TrimSpace(username), nil
}

func (p terminalPrompter) Password() (string, error) {
	if !p.interactive() {
		return "", errors.New("password is required in non-interactive mode (use --password flag or BOXOFFICE_PASSWORD env var)")
	}

	fmt.Print("Password: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}
