package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/dskeyring/internal/errors"
	"github.com/systmms/dskeyring/internal/logging"
	"github.com/systmms/dskeyring/pkg/backend"
)

// Environment variables that override the configuration file.
const (
	EnvBackend      = "DSKEYRING_BACKEND"
	EnvKeyStorePath = "DSKEYRING_KEYSTORE_PATH"
	EnvConfig       = "DSKEYRING_CONFIG"
)

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition

	// Optional makes a missing file load as an empty definition.
	Optional bool
}

// Definition represents the dskeyring.yaml structure
type Definition struct {
	Version      int    `yaml:"version"`
	Backend      string `yaml:"backend,omitempty"`
	KeyStorePath string `yaml:"keystore_path,omitempty"`
	Service      string `yaml:"service,omitempty"`
}

// Overrides are values given on the command line. Empty fields do not
// override anything.
type Overrides struct {
	Backend      string
	KeyStorePath string
	Service      string
}

// Settings are the effective values after applying file, environment and
// flags.
type Settings struct {
	Backend      backend.ID // empty means auto-detect
	KeyStorePath string
	Service      string
}

// DefaultPath returns the configuration file location under the XDG config
// directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "dskeyring", "dskeyring.yaml")
}

// DefaultKeyStorePath returns where the DPAPI key store lives when nothing
// else is configured.
func DefaultKeyStorePath() string {
	return filepath.Join(xdg.DataHome, "dskeyring", "dpapi.keystore")
}

// Load reads, validates and parses the configuration file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if c.Optional {
				c.debug("no configuration file at %s, using defaults", c.Path)
				c.Definition = &Definition{}
				return nil
			}
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create the file or drop --config to use defaults",
				Err:        err,
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	def, err := Parse(data)
	if err != nil {
		return err
	}

	c.debug("loaded configuration from %s", c.Path)
	c.Definition = def
	return nil
}

// Parse validates data against the configuration schema and decodes it.
func Parse(data []byte) (*Definition, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
			Err:        err,
		}
	}
	if raw == nil {
		return &Definition{}, nil
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, dserrors.ConfigError{
			Message:    "invalid configuration",
			Suggestion: "Check the value types in your dskeyring.yaml",
			Err:        err,
		}
	}

	if def.Version != 0 {
		return nil, dserrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your dskeyring.yaml file",
		}
	}

	if def.Backend != "" {
		if _, err := ParseBackendID(def.Backend); err != nil {
			return nil, err
		}
	}

	return &def, nil
}

func validateSchema(doc map[string]interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(definitionSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return dserrors.ConfigError{
			Message: "schema validation error",
			Err:     err,
		}
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return dserrors.ConfigError{
			Message:    "schema validation failed:\n  - " + strings.Join(errorMessages, "\n  - "),
			Suggestion: "Allowed keys are version, backend, keystore_path and service",
		}
	}
	return nil
}

// Resolve combines the loaded definition with environment variables and
// command line overrides. Flags win over the environment, which wins over
// the file.
func (c *Config) Resolve(flags Overrides, getenv func(string) string) (Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	def := c.Definition
	if def == nil {
		def = &Definition{}
	}

	backendName := firstNonEmpty(flags.Backend, getenv(EnvBackend), def.Backend)
	var id backend.ID
	if backendName != "" {
		var err error
		id, err = ParseBackendID(backendName)
		if err != nil {
			return Settings{}, err
		}
	}

	settings := Settings{
		Backend:      id,
		KeyStorePath: firstNonEmpty(flags.KeyStorePath, getenv(EnvKeyStorePath), def.KeyStorePath, DefaultKeyStorePath()),
		Service:      firstNonEmpty(flags.Service, def.Service),
	}
	c.debug("resolved backend=%q keystore_path=%q", settings.Backend, settings.KeyStorePath)
	return settings, nil
}

// KnownBackends lists every backend ID the configuration accepts.
var KnownBackends = []backend.ID{
	backend.OSXKeychain,
	backend.WindowsCredentialStore,
	backend.WindowsDPAPI,
	backend.GNOMEKeyring,
	backend.SystemKeyring,
	backend.LinuxKeyctl,
	backend.UnencryptedMemory,
}

// ParseBackendID matches name against the known backend IDs, ignoring case.
func ParseBackendID(name string) (backend.ID, error) {
	for _, id := range KnownBackends {
		if strings.EqualFold(name, id.String()) {
			return id, nil
		}
	}

	known := make([]string, len(KnownBackends))
	for i, id := range KnownBackends {
		known[i] = id.String()
	}
	return "", dserrors.ConfigError{
		Field:      "backend",
		Value:      name,
		Message:    "unknown backend",
		Suggestion: fmt.Sprintf("Use one of: %s", strings.Join(known, ", ")),
	}
}

func (c *Config) debug(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Debug(format, args...)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
