package commands

import (
	"github.com/spf13/cobra"

	dserrors "github.com/systmms/dskeyring/internal/errors"
	"github.com/systmms/dskeyring/pkg/backend"
)

func NewDeleteCommand(rt *Runtime) *cobra.Command {
	var ignoreMissing bool

	cmd := &cobra.Command{
		Use:     "delete [service] <account>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored password",
		Long: `Remove a password from the credential store.

Some stores report an error when the entry does not exist and others do
not. Use --ignore-missing to treat a missing entry as success everywhere.`,
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

			if err := kr.DeletePassword(service, account); err != nil {
				if ignoreMissing && backend.IsNotFound(err) {
					rt.logger().Debug("%s/%s was not stored in %s", service, account, kr.BackendID())
					return nil
				}
				return dserrors.BackendError("delete", err)
			}

			rt.logger().Info("✓ Deleted password for %s/%s from %s", service, account, kr.BackendID())
			return nil
		},
	}

	cmd.Flags().BoolVar(&ignoreMissing, "ignore-missing", false, "Succeed if the entry does not exist")

	return cmd
}
