package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/dskeyring/pkg/backend"
	"github.com/systmms/dskeyring/pkg/keyring"
)

func NewBackendsCommand(rt *Runtime) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List credential store backends and whether they work here",
		Long: `List every backend in auto-detection order, whether it is supported on
this system, and whether it needs a key store path. The backend marked with
'*' is the one the other commands would use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := rt.settings()
			if err != nil {
				return err
			}

			infos := keyring.ListBackends(rt.KeyringOptions...)
			selected := settings.Backend
			if selected == "" {
				for _, info := range infos {
					if info.Supported {
						selected = info.ID
						break
					}
				}
			}

			if jsonOutput {
				return writeBackendsJSON(cmd, infos, selected)
			}
			return writeBackendsTable(cmd, infos, selected)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func writeBackendsTable(cmd *cobra.Command, infos []keyring.BackendInfo, selected backend.ID) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, " \tBACKEND\tSUPPORTED\tKEYSTORE PATH\tDESCRIPTION\n")
	_, _ = fmt.Fprintf(w, " \t-------\t---------\t-------------\t-----------\n")

	for _, info := range infos {
		marker := " "
		if info.ID == selected {
			marker = "*"
		}

		supported := "✗ no"
		if info.Supported {
			supported = "✓ yes"
		}
		if info.Err != nil {
			supported = "✗ error"
		}

		path := "-"
		if info.KeyStorePathRequired {
			path = "required"
		}

		description := info.Description
		if info.Err != nil {
			description = info.Err.Error()
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, info.ID, supported, path, description)
	}

	return w.Flush()
}

func writeBackendsJSON(cmd *cobra.Command, infos []keyring.BackendInfo, selected backend.ID) error {
	type entry struct {
		ID                   string `json:"id"`
		Description          string `json:"description"`
		Supported            bool   `json:"supported"`
		KeyStorePathRequired bool   `json:"keystore_path_required"`
		Selected             bool   `json:"selected"`
		Error                string `json:"error,omitempty"`
	}

	entries := make([]entry, 0, len(infos))
	for _, info := range infos {
		e := entry{
			ID:                   info.ID.String(),
			Description:          info.Description,
			Supported:            info.Supported,
			KeyStorePathRequired: info.KeyStorePathRequired,
			Selected:             info.ID == selected,
		}
		if info.Err != nil {
			e.Error = info.Err.Error()
		}
		entries = append(entries, e)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}
