package backends_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/systmms/dskeyring/internal/backends"
	"github.com/systmms/dskeyring/pkg/backend"
	"github.com/systmms/dskeyring/pkg/backend/backendtest"
)

// go-keyring mocks are process-wide, so these tests do not run in parallel.

func TestSystemConformance(t *testing.T) {
	backendtest.Run(t, backendtest.Harness{
		New: func(t *testing.T) backend.Backend {
			keyring.MockInit()
			return backends.NewSystem(backends.WithGOOS("darwin"))
		},
		DeleteMissingFails: true,
	})
}

func TestSystemNotFoundIsTranslated(t *testing.T) {
	keyring.MockInit()
	b := backends.NewSystem(backends.WithGOOS("windows"))

	_, err := b.GetPassword("svc", "acct")
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestSystemProviderFailure(t *testing.T) {
	broken := errors.New("keyring daemon unavailable")
	keyring.MockInitWithError(broken)
	t.Cleanup(keyring.MockInit)

	b := backends.NewSystem(backends.WithGOOS("darwin"))

	_, err := b.GetPassword("svc", "acct")
	assert.ErrorIs(t, err, backend.ErrPasswordRetrieval)
	assert.ErrorIs(t, err, broken)
	assert.False(t, backend.IsNotFound(err))

	err = b.SetPassword("svc", "acct", []byte("pw"))
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrPasswordSave)
	assert.ErrorIs(t, err, broken)
}

func TestSystemIsSupported(t *testing.T) {
	keyring.MockInit()

	for _, tt := range []struct {
		goos   string
		getenv func(string) string
		want   bool
	}{
		{"darwin", noEnv, true},
		{"windows", noEnv, true},
		{"linux", sessionBus, true},
		{"linux", noEnv, false},
		{"plan9", sessionBus, false},
	} {
		b := backends.NewSystem(backends.WithGOOS(tt.goos), backends.WithGetenv(tt.getenv))
		assert.Equal(t, tt.want, b.IsSupported(), tt.goos)
	}
}

func TestSystemUnsupportedWhenDaemonFails(t *testing.T) {
	keyring.MockInitWithError(errors.New("The name org.freedesktop.secrets was not provided by any .service files"))
	t.Cleanup(keyring.MockInit)

	linux := backends.NewSystem(backends.WithGOOS("linux"), backends.WithGetenv(sessionBus))
	assert.False(t, linux.IsSupported())

	darwin := backends.NewSystem(backends.WithGOOS("darwin"))
	assert.True(t, darwin.IsSupported())
}
