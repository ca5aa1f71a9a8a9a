package backend

import (
	"time"
)

// ID is the stable identifier of a backend variant. It is used for explicit
// backend selection and shows up in diagnostics.
type ID string

// Known backend identifiers.
const (
	// OSXKeychain stores generic passwords in the macOS login keychain.
	OSXKeychain ID = "OSXKeychain"

	// WindowsCredentialStore stores generic credentials in the Windows
	// Credential Manager.
	WindowsCredentialStore ID = "WindowsCredentialStore"

	// WindowsDPAPI stores credentials in a flat file protected with the
	// Windows Data Protection API. It requires a key store path.
	WindowsDPAPI ID = "WindowsDPAPI"

	// GNOMEKeyring stores secrets through the freedesktop Secret Service
	// (gnome-keyring, KWallet and compatible daemons).
	GNOMEKeyring ID = "GNOMEKeyring"

	// SystemKeyring uses whichever keyring the host offers through a
	// portable client library.
	SystemKeyring ID = "SystemKeyring"

	// LinuxKeyctl stores secrets in the Linux kernel user keyring. Entries
	// do not survive a reboot.
	LinuxKeyctl ID = "LinuxKeyctl"

	// UnencryptedMemory keeps secrets in process memory. It is supported
	// everywhere and is always the last resort.
	UnencryptedMemory ID = "UnencryptedMemory"
)

// String returns the identifier as a string.
func (id ID) String() string {
	return string(id)
}

// Backend is the capability contract every credential store adapter satisfies.
//
// Backends are constructed once per facade and hold no credential state
// between calls: each GetPassword, SetPassword and DeletePassword is a fresh,
// self-contained round trip to the native store.
type Backend interface {
	// ID returns the backend's stable identifier.
	ID() ID

	// IsSupported reports whether the current OS and runtime can use this
	// backend. It must not panic and must not fail; lack of support is a
	// normal false.
	IsSupported() bool

	// KeyStorePathRequired reports whether a key store path must be set
	// before any credential operation can succeed.
	KeyStorePathRequired() bool

	// KeyStorePath returns the configured key store path, or "" if none is
	// set.
	KeyStorePath() string

	// SetKeyStorePath configures the key store path. Backends that do not
	// need a path keep the value but never consult it.
	SetKeyStorePath(path string)

	// GetPassword looks up the secret stored for (service, account).
	//
	// It returns a *PasswordRetrievalError if there is no such entry (the
	// error then also matches ErrNotFound), if the native call fails, or if
	// the stored bytes are not valid in the backend's text encoding.
	// The returned slice is owned by the caller.
	GetPassword(service, account string) ([]byte, error)

	// SetPassword creates or overwrites the entry for (service, account).
	// Any native write failure is returned as a *PasswordSaveError.
	SetPassword(service, account string, password []byte) error

	// DeletePassword removes the entry for (service, account). A failing
	// native delete is returned as a *PasswordSaveError. Whether deleting a
	// missing entry fails is documented by each backend.
	DeletePassword(service, account string) error
}

// Credential describes a stored entry without its secret.
type Credential struct {
	Service     string
	Account     string
	Comment     string
	TargetAlias string
	LastWritten time.Time
}

// Describer is implemented by backends whose native store keeps metadata
// next to the secret.
type Describer interface {
	// Describe returns the metadata of the entry for (service, account).
	// A missing entry is reported as a *PasswordRetrievalError matching
	// ErrNotFound.
	Describe(service, account string) (Credential, error)
}
