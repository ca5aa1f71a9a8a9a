package commands

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/systmms/dskeyring/internal/backends"
	"github.com/systmms/dskeyring/internal/config"
	"github.com/systmms/dskeyring/internal/logging"
	"github.com/systmms/dskeyring/pkg/backend"
	"github.com/systmms/dskeyring/pkg/keyring"
)

// testEnv is a runtime whose only backend is one shared in-memory store, so
// state survives across commands.
type testEnv struct {
	rt     *Runtime
	store  *backends.MemoryBackend
	logs   *bytes.Buffer
	getenv map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := backends.NewMemory()
	logs := &bytes.Buffer{}
	env := &testEnv{store: store, logs: logs, getenv: map[string]string{}}

	env.rt = &Runtime{
		Config: &config.Config{Logger: logging.NewWithWriter(logs, false, true)},
		Getenv: func(key string) string { return env.getenv[key] },
		KeyringOptions: []keyring.Option{
			keyring.WithDescriptors(backends.Descriptor{
				ID:          backend.UnencryptedMemory,
				Description: "shared test store",
				New:         func() (backend.Backend, error) { return store, nil },
			}),
		},
	}
	return env
}

// execute runs cmd with args and stdin, returning stdout.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(io.Reader(strings.NewReader(stdin)))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return out.String(), err
}
