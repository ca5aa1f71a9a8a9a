package backends

import (
	"errors"

	"github.com/systmms/dskeyring/internal/backends/contracts"
	"github.com/systmms/dskeyring/pkg/backend"
)

// KeychainBackend stores generic password items in the macOS login
// keychain. Items are labelled with the service name and never sync to
// iCloud.
//
// Deleting an item that does not exist fails.
type KeychainBackend struct {
	storePath
	client   contracts.KeychainClient
	linked   bool
	settings settings
}

// NewKeychain creates a macOS Keychain backend.
func NewKeychain(opts ...Option) *KeychainBackend {
	b := NewKeychainWithClient(newKeychainClient(), opts...)
	b.linked = keychainLinked
	return b
}

// NewKeychainWithClient creates the backend over a custom client, which is
// taken to be available on macOS. This is primarily for testing.
func NewKeychainWithClient(client contracts.KeychainClient, opts ...Option) *KeychainBackend {
	return &KeychainBackend{
		client:   client,
		linked:   true,
		settings: newSettings(opts),
	}
}

// ID returns backend.OSXKeychain.
func (b *KeychainBackend) ID() backend.ID {
	return backend.OSXKeychain
}

// IsSupported reports whether the process runs on macOS and was built with
// the Keychain binding.
func (b *KeychainBackend) IsSupported() bool {
	return b.settings.goos == "darwin" && b.linked
}

// KeyStorePathRequired returns false.
func (b *KeychainBackend) KeyStorePathRequired() bool {
	return false
}

// GetPassword returns the item's data.
func (b *KeychainBackend) GetPassword(service, account string) ([]byte, error) {
	if err := backend.ValidateKey(service, account); err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}

	data, err := b.client.Find(service, account)
	if err != nil {
		return nil, retrievalErr(b.ID(), service, account, err)
	}

	password, err := checkUTF8(data)
	if err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}
	return password, nil
}

// SetPassword adds the item, or updates it if it already exists.
func (b *KeychainBackend) SetPassword(service, account string, password []byte) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	if _, err := checkUTF8(password); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}

	err := b.client.Add(service, account, service, password)
	if errors.Is(err, contracts.ErrDuplicateItem) {
		err = b.client.Update(service, account, password)
	}
	if err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	return nil
}

// DeletePassword removes the item. A missing item is an error.
func (b *KeychainBackend) DeletePassword(service, account string) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}

	if err := b.client.Delete(service, account); err != nil {
		if notFound(err) {
			err = markNotFound(err)
		}
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}
	return nil
}

var _ backend.Backend = (*KeychainBackend)(nil)
