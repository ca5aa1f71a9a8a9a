package backends_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/dskeyring/internal/backends"
	"github.com/systmms/dskeyring/internal/backends/fakes"
	"github.com/systmms/dskeyring/pkg/backend"
	"github.com/systmms/dskeyring/pkg/backend/backendtest"
)

func sessionBus(key string) string {
	if key == "DBUS_SESSION_BUS_ADDRESS" {
		return "unix:path=/run/user/1000/bus"
	}
	return ""
}

func noEnv(string) string { return "" }

func newTestSecretService(t *testing.T) (*backends.SecretServiceBackend, *fakes.FakeSecretServiceClient) {
	t.Helper()
	client := fakes.NewFakeSecretServiceClient()
	b := backends.NewSecretServiceWithClient(client, backends.WithGOOS("linux"), backends.WithGetenv(sessionBus))
	return b, client
}

func TestSecretServiceConformance(t *testing.T) {
	backendtest.Run(t, backendtest.Harness{
		New: func(t *testing.T) backend.Backend {
			b, _ := newTestSecretService(t)
			return b
		},
	})
}

func TestSecretServiceItemAttributes(t *testing.T) {
	t.Parallel()

	b, client := newTestSecretService(t)
	require.NoError(t, b.SetPassword("svc", "acct", []byte("pw")))
	require.NoError(t, b.SetPassword("svc", "acct", []byte("pw2")))

	assert.Equal(t, 1, client.Len(), "storing twice must replace the item")
	assert.Equal(t, "Password for 'acct' on 'svc'", client.Label(map[string]string{
		"service":  "svc",
		"username": "acct",
	}))
}

func TestSecretServiceNativeErrors(t *testing.T) {
	t.Parallel()

	locked := errors.New("org.freedesktop.Secret.Error.IsLocked")

	b, client := newTestSecretService(t)
	client.LookupErr = locked
	client.StoreErr = locked
	client.RemoveErr = locked

	_, err := b.GetPassword("svc", "acct")
	assert.ErrorIs(t, err, backend.ErrPasswordRetrieval)
	assert.ErrorIs(t, err, locked)

	err = b.SetPassword("svc", "acct", []byte("pw"))
	assert.ErrorIs(t, err, backend.ErrPasswordSave)
	assert.ErrorIs(t, err, locked)

	err = b.DeletePassword("svc", "acct")
	assert.ErrorIs(t, err, backend.ErrPasswordSave)
	assert.ErrorIs(t, err, locked)
}

func TestSecretServiceIsSupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		goos    string
		getenv  func(string) string
		pingErr error
		want    bool
	}{
		{name: "linux_with_bus", goos: "linux", getenv: sessionBus, want: true},
		{name: "freebsd_with_bus", goos: "freebsd", getenv: sessionBus, want: true},
		{name: "linux_headless", goos: "linux", getenv: noEnv, want: false},
		{name: "linux_bus_without_daemon", goos: "linux", getenv: sessionBus,
			pingErr: errors.New("org.freedesktop.secrets was not provided by any .service files"), want: false},
		{name: "windows", goos: "windows", getenv: sessionBus, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := fakes.NewFakeSecretServiceClient()
			client.PingErr = tt.pingErr
			b := backends.NewSecretServiceWithClient(client,
				backends.WithGOOS(tt.goos), backends.WithGetenv(tt.getenv))
			assert.Equal(t, tt.want, b.IsSupported())
		})
	}
}
