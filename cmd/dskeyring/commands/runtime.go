package commands

import (
	"os"

	"github.com/systmms/dskeyring/internal/config"
	dserrors "github.com/systmms/dskeyring/internal/errors"
	"github.com/systmms/dskeyring/internal/logging"
	"github.com/systmms/dskeyring/pkg/keyring"
)

// Runtime is the state shared by all commands. The root command fills it
// in from global flags before any command runs.
type Runtime struct {
	Config         *config.Config
	Flags          config.Overrides
	NonInteractive bool

	// KeyringOptions are passed to every keyring the commands open.
	KeyringOptions []keyring.Option

	// Getenv looks up environment overrides. Defaults to os.Getenv.
	Getenv func(string) string
}

func (rt *Runtime) logger() *logging.Logger {
	if rt.Config != nil && rt.Config.Logger != nil {
		return rt.Config.Logger
	}
	return logging.Nop()
}

// settings loads the configuration file and applies environment and flag
// overrides.
func (rt *Runtime) settings() (config.Settings, error) {
	if rt.Config == nil {
		rt.Config = &config.Config{Optional: true}
	}
	if rt.Config.Definition == nil {
		if rt.Config.Path == "" {
			rt.Config.Definition = &config.Definition{}
		} else if err := rt.Config.Load(); err != nil {
			return config.Settings{}, err
		}
	}

	getenv := rt.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return rt.Config.Resolve(rt.Flags, getenv)
}

// openKeyring selects the configured backend, or auto-detects one.
func (rt *Runtime) openKeyring(extra ...keyring.Option) (*keyring.Keyring, config.Settings, error) {
	settings, err := rt.settings()
	if err != nil {
		return nil, settings, err
	}

	opts := append([]keyring.Option{}, rt.KeyringOptions...)
	opts = append(opts, keyring.WithKeyStorePath(settings.KeyStorePath))
	opts = append(opts, extra...)

	var kr *keyring.Keyring
	if settings.Backend != "" {
		kr, err = keyring.CreateWithBackend(settings.Backend, opts...)
	} else {
		kr, err = keyring.Create(opts...)
	}
	if err != nil {
		return nil, settings, dserrors.BackendError("select", err)
	}

	rt.logger().Debug("using backend %s", kr.BackendID())
	return kr, settings, nil
}

// serviceAccount resolves "<service> <account>" or "<account>" with the
// default service.
func serviceAccount(args []string, settings config.Settings) (string, string, error) {
	switch len(args) {
	case 2:
		return args[0], args[1], nil
	case 1:
		if settings.Service == "" {
			return "", "", dserrors.UserError{
				Message:    "Service name is required",
				Suggestion: "Pass <service> <account>, use --service, or set 'service' in dskeyring.yaml",
			}
		}
		return settings.Service, args[0], nil
	}
	return "", "", dserrors.UserError{
		Message:    "Expected <service> <account>",
		Suggestion: "Example: dskeyring get net.example tester",
	}
}
