package backends

import (
	"github.com/systmms/dskeyring/internal/backends/contracts"
	"github.com/systmms/dskeyring/pkg/backend"
)

const keyctlPrefix = "dskeyring:"

// KeyctlBackend stores secrets as "user" keys in the Linux kernel user
// keyring. Keys live until they are removed or the machine reboots.
//
// Deleting a key that does not exist succeeds.
type KeyctlBackend struct {
	storePath
	client   contracts.KernelKeyring
	settings settings
}

// NewKeyctl creates a kernel keyring backend.
func NewKeyctl(opts ...Option) *KeyctlBackend {
	return NewKeyctlWithClient(newKernelKeyring(), opts...)
}

// NewKeyctlWithClient creates the backend over a custom client.
// This is primarily for testing.
func NewKeyctlWithClient(client contracts.KernelKeyring, opts ...Option) *KeyctlBackend {
	return &KeyctlBackend{
		client:   client,
		settings: newSettings(opts),
	}
}

// ID returns backend.LinuxKeyctl.
func (b *KeyctlBackend) ID() backend.ID {
	return backend.LinuxKeyctl
}

// IsSupported reports whether the process runs on Linux and can reach its
// user keyring.
func (b *KeyctlBackend) IsSupported() bool {
	return b.settings.goos == "linux" && b.client.Ping() == nil
}

// KeyStorePathRequired returns false.
func (b *KeyctlBackend) KeyStorePathRequired() bool {
	return false
}

// GetPassword returns the key's payload.
func (b *KeyctlBackend) GetPassword(service, account string) ([]byte, error) {
	if err := backend.ValidateKey(service, account); err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}

	payload, err := b.client.Read(keyDescription(service, account))
	if err != nil {
		return nil, retrievalErr(b.ID(), service, account, err)
	}

	password, err := checkUTF8(payload)
	if err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}
	return password, nil
}

// SetPassword creates or updates the key.
func (b *KeyctlBackend) SetPassword(service, account string, password []byte) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	if _, err := checkUTF8(password); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}

	if err := b.client.Add(keyDescription(service, account), password); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	return nil
}

// DeletePassword removes the key. A missing key is not an error.
func (b *KeyctlBackend) DeletePassword(service, account string) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}

	if err := b.client.Revoke(keyDescription(service, account)); err != nil {
		if notFound(err) {
			return nil
		}
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}
	return nil
}

func keyDescription(service, account string) string {
	return keyctlPrefix + service + ":" + account
}

var _ backend.Backend = (*KeyctlBackend)(nil)
