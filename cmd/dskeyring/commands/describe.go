package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	dserrors "github.com/systmms/dskeyring/internal/errors"
	"github.com/systmms/dskeyring/pkg/keyring"
)

func NewDescribeCommand(rt *Runtime) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "describe [service] <account>",
		Short: "Show metadata of a stored password without revealing it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kr, settings, err := rt.openKeyring()
			if err != nil {
				return err
			}

			service, account, err := serviceAccount(args, settings)
			if err != nil {
				return err
			}

			cred, err := kr.Describe(service, account)
			if errors.Is(err, keyring.ErrDescribeUnsupported) {
				return dserrors.UserError{
					Message:    fmt.Sprintf("%s does not keep credential metadata", kr.BackendID()),
					Suggestion: "Use 'dskeyring get' to check that the entry exists",
					Err:        err,
				}
			}
			if err != nil {
				return dserrors.BackendError("describe", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				output := map[string]interface{}{
					"service": cred.Service,
					"account": cred.Account,
					"backend": kr.BackendID().String(),
				}
				if cred.Comment != "" {
					output["comment"] = cred.Comment
				}
				if cred.TargetAlias != "" {
					output["target_alias"] = cred.TargetAlias
				}
				if !cred.LastWritten.IsZero() {
					output["last_written"] = cred.LastWritten.UTC().Format(time.RFC3339)
				}
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(output)
			}

			_, _ = fmt.Fprintf(out, "Service:      %s\n", cred.Service)
			_, _ = fmt.Fprintf(out, "Account:      %s\n", cred.Account)
			_, _ = fmt.Fprintf(out, "Backend:      %s\n", kr.BackendID())
			if cred.Comment != "" {
				_, _ = fmt.Fprintf(out, "Comment:      %s\n", cred.Comment)
			}
			if cred.TargetAlias != "" {
				_, _ = fmt.Fprintf(out, "Alias:        %s\n", cred.TargetAlias)
			}
			if !cred.LastWritten.IsZero() {
				_, _ = fmt.Fprintf(out, "Last written: %s\n", cred.LastWritten.Local().Format(time.RFC1123))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
