package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	dserrors "github.com/systmms/dskeyring/internal/errors"
	"github.com/systmms/dskeyring/internal/secure"
)

func NewGetCommand(rt *Runtime) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get [service] <account>",
		Short: "Print a stored password",
		Long: `Retrieve a password from the credential store and print it to stdout.
Only the raw value is printed, making it suitable for scripting.

Examples:
  # Get a password
  dskeyring get net.example tester

  # Use the default service from dskeyring.yaml
  dskeyring get tester

  # Include the backend in JSON output
  dskeyring get net.example tester --json

  # Use in scripts
  export DB_PASSWORD=$(dskeyring get db.example admin)`,
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

			password, err := kr.GetPassword(service, account)
			if err != nil {
				return dserrors.BackendError("get", err)
			}

			if jsonOutput {
				secret := []byte(password)
				defer secure.Wipe(secret)

				output := map[string]interface{}{
					"service":  service,
					"account":  account,
					"backend":  kr.BackendID().String(),
					"password": string(secret),
				}
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(output)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), password)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON with metadata")

	return cmd
}
