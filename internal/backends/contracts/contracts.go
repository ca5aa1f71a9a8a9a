// Package contracts defines the native client interfaces that backends talk
// to. Each interface is satisfied by a thin wrapper over a real binding in
// the backends package and by an in-memory fake in backends/fakes, so that
// backend logic runs and is tested on every platform.
package contracts

import (
	"errors"

	"github.com/danieljoos/wincred"
)

// Errors returned by client implementations. Real clients wrap the native
// error as well so the original code survives errors.As.
var (
	// ErrItemNotFound reports that the native store has no matching entry.
	ErrItemNotFound = errors.New("item not found")

	// ErrDuplicateItem reports that an add collided with an existing entry.
	ErrDuplicateItem = errors.New("item already exists")

	// ErrUnsupportedPlatform is returned by stub clients compiled for a
	// platform that lacks the native facility.
	ErrUnsupportedPlatform = errors.New("native facility not available on this platform")
)

// CredentialManager abstracts the generic credential API of the Windows
// Credential Manager.
type CredentialManager interface {
	// Read returns the generic credential stored under targetName.
	Read(targetName string) (*wincred.Credential, error)

	// Write creates or replaces a generic credential.
	Write(cred *wincred.Credential) error

	// Delete removes the generic credential stored under targetName.
	Delete(targetName string) error
}

// DataProtector abstracts the Windows Data Protection API.
type DataProtector interface {
	Protect(plaintext []byte) ([]byte, error)
	Unprotect(ciphertext []byte) ([]byte, error)
}

// KeychainClient abstracts generic password items in the macOS Keychain.
type KeychainClient interface {
	// Find returns the data of the item for (service, account).
	Find(service, account string) ([]byte, error)

	// Add creates a new item. It returns ErrDuplicateItem if one exists.
	Add(service, account, label string, data []byte) error

	// Update replaces the data of an existing item.
	Update(service, account string, data []byte) error

	// Delete removes the item for (service, account).
	Delete(service, account string) error
}

// SecretServiceClient abstracts the freedesktop Secret Service D-Bus API.
// Items are addressed by their lookup attributes.
type SecretServiceClient interface {
	// Ping checks that a Secret Service daemon answers on the session bus.
	Ping() error

	// Lookup returns the secret of the first unlocked item matching attrs.
	Lookup(attrs map[string]string) ([]byte, error)

	// Store creates or replaces the item matching attrs.
	Store(label string, attrs map[string]string, secret []byte) error

	// Remove deletes every item matching attrs. It returns ErrItemNotFound
	// when nothing matched.
	Remove(attrs map[string]string) error
}

// KernelKeyring abstracts user keys in the Linux kernel key retention
// service.
type KernelKeyring interface {
	// Ping checks that the user keyring can be reached.
	Ping() error

	// Add creates or updates the user key with the given description.
	Add(description string, payload []byte) error

	// Read returns the payload of the user key with the given description.
	Read(description string) ([]byte, error)

	// Revoke invalidates the user key with the given description.
	Revoke(description string) error
}
