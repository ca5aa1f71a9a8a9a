package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	dserrors "github.com/systmms/dskeyring/internal/errors"
	"github.com/systmms/dskeyring/internal/secure"
)

func NewSetCommand(rt *Runtime) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "set [service] <account>",
		Short: "Store a password",
		Long: `Store a password in the credential store, replacing any existing value.

The password is taken from --password, from stdin when it is piped, or from
a hidden terminal prompt.

Examples:
  # Prompt for the password
  dskeyring set net.example tester

  # Pipe it in
  printf '%s' "$TOKEN" | dskeyring set api.example ci`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kr, settings, err := rt.openKeyring()
			if err != nil {
				return err
			}

			service, account, err := serviceAccount(args, settings)
			if err != nil {
				return err
			}

			var secret []byte
			if cmd.Flags().Changed("password") {
				secret = []byte(password)
			} else {
				secret, err = readPassword(cmd, rt.NonInteractive)
				if err != nil {
					return err
				}
			}
			defer secure.Wipe(secret)

			if len(secret) == 0 {
				return dserrors.UserError{
					Message:    "Password cannot be empty",
					Suggestion: "Pass --password, pipe the value on stdin, or type it at the prompt",
				}
			}

			if err := kr.SetPassword(service, account, string(secret)); err != nil {
				return dserrors.BackendError("set", err)
			}

			rt.logger().Info("✓ Stored password for %s/%s in %s", service, account, kr.BackendID())
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password value (visible in shell history; prefer stdin or the prompt)")

	return cmd
}

// readPassword reads a hidden password from a terminal, or everything from
// a pipe with one trailing newline removed.
func readPassword(cmd *cobra.Command, nonInteractive bool) ([]byte, error) {
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if nonInteractive {
			return nil, dserrors.UserError{
				Message:    "No password given",
				Suggestion: "Pass --password or pipe the value on stdin when running non-interactively",
			}
		}
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password (input will be hidden): ")
		secret, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, fmt.Errorf("failed to read password from terminal: %w", err)
		}
		return secret, nil
	}

	secret, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read password from stdin: %w", err)
	}
	trimmed := bytes.TrimSuffix(secret, []byte("\n"))
	trimmed = bytes.TrimSuffix(trimmed, []byte("\r"))
	return trimmed, nil
}
