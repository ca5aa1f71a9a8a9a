package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/dskeyring/internal/config"
	dserrors "github.com/systmms/dskeyring/internal/errors"
	"github.com/systmms/dskeyring/internal/logging"
	"github.com/systmms/dskeyring/pkg/backend"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dskeyring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `version: 0
backend: windowsdpapi
keystore_path: C:\Users\tester\keystore
service: net.example
`)

	cfg := &config.Config{Path: path, Logger: logging.Nop()}
	require.NoError(t, cfg.Load())
	require.NotNil(t, cfg.Definition)

	assert.Equal(t, "windowsdpapi", cfg.Definition.Backend)
	assert.Equal(t, `C:\Users\tester\keystore`, cfg.Definition.KeyStorePath)
	assert.Equal(t, "net.example", cfg.Definition.Service)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg := &config.Config{Path: missing}
	err := cfg.Load()
	var configErr dserrors.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "path", configErr.Field)

	cfg = &config.Config{Path: missing, Optional: true}
	require.NoError(t, cfg.Load())
	assert.Equal(t, &config.Definition{}, cfg.Definition)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{name: "bad_yaml", content: "backend: [unclosed", contains: "invalid YAML syntax"},
		{name: "unknown_key", content: "providers: {}", contains: "schema validation failed"},
		{name: "wrong_version", content: "version: 2", contains: "schema validation failed"},
		{name: "wrong_type", content: "backend: 12", contains: "schema validation failed"},
		{name: "unknown_backend", content: "backend: Floppy", contains: "unknown backend"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.True(t, dserrors.IsUserFacing(err))
		})
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	def, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &config.Definition{}, def)
}

func TestResolvePrecedence(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Definition: &config.Definition{
		Backend:      "LinuxKeyctl",
		KeyStorePath: "/from/file",
		Service:      "file.service",
	}}

	tests := []struct {
		name     string
		flags    config.Overrides
		env      map[string]string
		wantID   backend.ID
		wantPath string
		wantSvc  string
	}{
		{
			name:     "file_only",
			wantID:   backend.LinuxKeyctl,
			wantPath: "/from/file",
			wantSvc:  "file.service",
		},
		{
			name:     "env_over_file",
			env:      map[string]string{config.EnvBackend: "UnencryptedMemory", config.EnvKeyStorePath: "/from/env"},
			wantID:   backend.UnencryptedMemory,
			wantPath: "/from/env",
			wantSvc:  "file.service",
		},
		{
			name:     "flags_over_env",
			flags:    config.Overrides{Backend: "gnomekeyring", KeyStorePath: "/from/flag", Service: "flag.service"},
			env:      map[string]string{config.EnvBackend: "UnencryptedMemory", config.EnvKeyStorePath: "/from/env"},
			wantID:   backend.GNOMEKeyring,
			wantPath: "/from/flag",
			wantSvc:  "flag.service",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			settings, err := cfg.Resolve(tt.flags, env(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, settings.Backend)
			assert.Equal(t, tt.wantPath, settings.KeyStorePath)
			assert.Equal(t, tt.wantSvc, settings.Service)
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	settings, err := cfg.Resolve(config.Overrides{}, env(nil))
	require.NoError(t, err)

	assert.Empty(t, settings.Backend, "empty backend means auto-detect")
	assert.Equal(t, config.DefaultKeyStorePath(), settings.KeyStorePath)
	assert.Equal(t, "dpapi.keystore", filepath.Base(settings.KeyStorePath))
}

func TestResolveUnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	_, err := cfg.Resolve(config.Overrides{}, env(map[string]string{config.EnvBackend: "Floppy"}))

	var configErr dserrors.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "backend", configErr.Field)
}

func TestParseBackendID(t *testing.T) {
	t.Parallel()

	for _, id := range config.KnownBackends {
		got, err := config.ParseBackendID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	got, err := config.ParseBackendID("osxkeychain")
	require.NoError(t, err)
	assert.Equal(t, backend.OSXKeychain, got)
}
