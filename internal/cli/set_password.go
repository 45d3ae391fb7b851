package cli

import (
	"flag"
	"fmt"
)

// SetPasswordCommand sets or resets the owner password for AUTH_MODE=local.
// It works in any mode so the password can be prepared before enabling auth.
type SetPasswordCommand struct {
	base
	Password string
}

func NewSetPasswordCommand() *SetPasswordCommand {
	return &SetPasswordCommand{base: newBase()}
}

func (cmd *SetPasswordCommand) ParseFlags(args []string) error {
	fs := newFlagSet("set-password", "set-password [-password <password>]", func(fs *flag.FlagSet) {
		cmd.registerDBFlag(fs)
		fs.StringVar(&cmd.Password, "password", "", "New owner password; read from stdin when empty")
	})
	return fs.Parse(args)
}

func (cmd *SetPasswordCommand) Run() error {
	password := cmd.Password
	if password == "" {
		cmd.printf("New owner password: ")
		line, err := cmd.readLine()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = line
	}

	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.AuthService().ResetPassword(password); err != nil {
		return err
	}
	app.Audit.LogAuth("password_reset_cli", "", true)
	cmd.printf("Owner password updated\n")
	return nil
}
