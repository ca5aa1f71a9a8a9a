package backends

import (
	"fmt"

	"github.com/systmms/dskeyring/internal/backends/contracts"
	"github.com/systmms/dskeyring/pkg/backend"
)

// Secret Service lookup attribute names, shared with other keyring clients
// so entries stay interoperable.
const (
	attrService  = "service"
	attrUsername = "username"
)

// SecretServiceBackend stores secrets in the default collection of a
// freedesktop Secret Service daemon (gnome-keyring, KWallet, KeePassXC)
// reached over the D-Bus session bus.
//
// Deleting an item that does not exist succeeds.
type SecretServiceBackend struct {
	storePath
	client   contracts.SecretServiceClient
	settings settings
}

// NewSecretService creates a Secret Service backend.
func NewSecretService(opts ...Option) *SecretServiceBackend {
	return NewSecretServiceWithClient(newSecretServiceClient(), opts...)
}

// NewSecretServiceWithClient creates the backend over a custom client.
// This is primarily for testing.
func NewSecretServiceWithClient(client contracts.SecretServiceClient, opts ...Option) *SecretServiceBackend {
	return &SecretServiceBackend{
		client:   client,
		settings: newSettings(opts),
	}
}

// ID returns backend.GNOMEKeyring.
func (b *SecretServiceBackend) ID() backend.ID {
	return backend.GNOMEKeyring
}

// IsSupported reports whether the process runs on a Unix desktop OS with a
// D-Bus session bus address and a Secret Service daemon answering on it.
func (b *SecretServiceBackend) IsSupported() bool {
	if !isUnixDesktop(b.settings.goos) || b.settings.getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		return false
	}
	return b.client.Ping() == nil
}

// KeyStorePathRequired returns false.
func (b *SecretServiceBackend) KeyStorePathRequired() bool {
	return false
}

// GetPassword returns the secret of the matching item.
func (b *SecretServiceBackend) GetPassword(service, account string) ([]byte, error) {
	if err := backend.ValidateKey(service, account); err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}

	secret, err := b.client.Lookup(secretAttributes(service, account))
	if err != nil {
		return nil, retrievalErr(b.ID(), service, account, err)
	}

	password, err := checkUTF8(secret)
	if err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}
	return password, nil
}

// SetPassword creates or replaces the matching item.
func (b *SecretServiceBackend) SetPassword(service, account string, password []byte) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	if _, err := checkUTF8(password); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}

	label := fmt.Sprintf("Password for '%s' on '%s'", account, service)
	if err := b.client.Store(label, secretAttributes(service, account), password); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	return nil
}

// DeletePassword removes the matching items. A missing item is not an error.
func (b *SecretServiceBackend) DeletePassword(service, account string) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}

	if err := b.client.Remove(secretAttributes(service, account)); err != nil {
		if notFound(err) {
			return nil
		}
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}
	return nil
}

func secretAttributes(service, account string) map[string]string {
	return map[string]string{
		attrService:  service,
		attrUsername: account,
	}
}

var _ backend.Backend = (*SecretServiceBackend)(nil)
