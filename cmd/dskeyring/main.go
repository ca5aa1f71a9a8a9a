package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/dskeyring/cmd/dskeyring/commands"
	"github.com/systmms/dskeyring/internal/config"
	dserrors "github.com/systmms/dskeyring/internal/errors"
	"github.com/systmms/dskeyring/internal/logging"
	"github.com/systmms/dskeyring/internal/secure"
	"github.com/systmms/dskeyring/pkg/keyring"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	memguard.CatchInterrupt()

	err := run()
	secure.Purge()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", dserrors.SimplifyError(err))
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile     string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	rt := &commands.Runtime{
		Config: &config.Config{},
		Getenv: os.Getenv,
	}

	rootCmd := &cobra.Command{
		Use:   "dskeyring",
		Short: "Store and retrieve passwords in the platform credential store",
		Long: `dskeyring reads and writes passwords in whichever credential store the
platform offers: the macOS Keychain, the Windows Credential Manager or a
DPAPI-protected file, a Secret Service daemon, the Linux kernel keyring, or
process memory as a last resort.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := logging.New(debug, noColor)

			rt.Config.Logger = logger
			rt.Config.Path = configFile
			rt.Config.Optional = !cmd.Flags().Changed("config")
			if env := os.Getenv(config.EnvConfig); env != "" && !cmd.Flags().Changed("config") {
				rt.Config.Path = env
				rt.Config.Optional = false
			}
			rt.NonInteractive = nonInteractive
			rt.KeyringOptions = []keyring.Option{keyring.WithLogger(logger)}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt for input")
	rootCmd.PersistentFlags().StringVar(&rt.Flags.Backend, "backend", "", "Backend to use instead of auto-detection")
	rootCmd.PersistentFlags().StringVar(&rt.Flags.KeyStorePath, "keystore-path", "", "Key store path for backends that need one")
	rootCmd.PersistentFlags().StringVar(&rt.Flags.Service, "service", "", "Default service name")

	rootCmd.AddCommand(
		commands.NewGetCommand(rt),
		commands.NewSetCommand(rt),
		commands.NewDeleteCommand(rt),
		commands.NewDescribeCommand(rt),
		commands.NewBackendsCommand(rt),
		commands.NewDoctorCommand(rt),
		commands.NewCompletionCommand(rt),
	)

	return rootCmd.Execute()
}
