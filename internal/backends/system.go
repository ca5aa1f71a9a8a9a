package backends

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/systmms/dskeyring/pkg/backend"
)

// SystemBackend stores secrets through go-keyring, which picks the host's
// keyring itself: the Keychain on macOS, the Credential Manager on Windows
// and the Secret Service elsewhere.
//
// Deleting an entry that does not exist fails.
type SystemBackend struct {
	storePath
	client   keyring.Keyring
	settings settings
}

// NewSystem creates a backend over the package-level go-keyring provider,
// which keyring.MockInit replaces in tests.
func NewSystem(opts ...Option) *SystemBackend {
	return NewSystemWithClient(packageKeyring{}, opts...)
}

// NewSystemWithClient creates the backend over a custom keyring.
func NewSystemWithClient(client keyring.Keyring, opts ...Option) *SystemBackend {
	return &SystemBackend{
		client:   client,
		settings: newSettings(opts),
	}
}

// ID returns backend.SystemKeyring.
func (b *SystemBackend) ID() backend.ID {
	return backend.SystemKeyring
}

// Lookup key used to check that the Unix keyring daemon answers.
const (
	systemProbeService = "dskeyring"
	systemProbeAccount = "availability-check"
)

// IsSupported reports whether go-keyring has a native provider here. On
// Unix desktops that also requires a D-Bus session bus whose keyring daemon
// answers a lookup.
func (b *SystemBackend) IsSupported() bool {
	switch goos := b.settings.goos; {
	case goos == "darwin" || goos == "windows":
		return true
	case isUnixDesktop(goos):
		if b.settings.getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
			return false
		}
		_, err := b.client.Get(systemProbeService, systemProbeAccount)
		return err == nil || errors.Is(err, keyring.ErrNotFound)
	}
	return false
}

// KeyStorePathRequired returns false.
func (b *SystemBackend) KeyStorePathRequired() bool {
	return false
}

// GetPassword returns the stored secret.
func (b *SystemBackend) GetPassword(service, account string) ([]byte, error) {
	if err := backend.ValidateKey(service, account); err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}

	secret, err := b.client.Get(service, account)
	if err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, translateKeyringError(err))
	}

	password, err := checkUTF8([]byte(secret))
	if err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}
	return password, nil
}

// SetPassword creates or replaces the entry.
func (b *SystemBackend) SetPassword(service, account string, password []byte) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	if _, err := checkUTF8(password); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}

	if err := b.client.Set(service, account, string(password)); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, translateKeyringError(err))
	}
	return nil
}

// DeletePassword removes the entry. A missing entry is an error.
func (b *SystemBackend) DeletePassword(service, account string) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}

	if err := b.client.Delete(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, translateKeyringError(err))
	}
	return nil
}

func translateKeyringError(err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %w", backend.ErrNotFound, err)
	}
	return err
}

// packageKeyring forwards to the go-keyring package functions.
type packageKeyring struct{}

func (packageKeyring) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

func (packageKeyring) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

func (packageKeyring) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

func (packageKeyring) DeleteAll(service string) error {
	return keyring.DeleteAll(service)
}

var (
	_ backend.Backend = (*SystemBackend)(nil)
	_ keyring.Keyring = packageKeyring{}
)
