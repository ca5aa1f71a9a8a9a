package backends

import (
	"github.com/systmms/dskeyring/internal/backends/contracts"
	"github.com/systmms/dskeyring/pkg/backend"
)

// WinCredBackend stores generic credentials in the Windows Credential
// Manager. The target name is "service:account", the secret is stored as
// UTF-16LE and credentials persist on the local machine.
//
// Deleting a credential that does not exist succeeds.
type WinCredBackend struct {
	storePath
	client   contracts.CredentialManager
	settings settings
}

// NewWinCred creates a Windows Credential Manager backend.
func NewWinCred(opts ...Option) *WinCredBackend {
	return NewWinCredWithClient(newCredentialManager(), opts...)
}

// NewWinCredWithClient creates the backend over a custom client.
// This is primarily for testing.
func NewWinCredWithClient(client contracts.CredentialManager, opts ...Option) *WinCredBackend {
	return &WinCredBackend{
		client:   client,
		settings: newSettings(opts),
	}
}

// ID returns backend.WindowsCredentialStore.
func (b *WinCredBackend) ID() backend.ID {
	return backend.WindowsCredentialStore
}

// IsSupported reports whether the process runs on Windows.
func (b *WinCredBackend) IsSupported() bool {
	return b.settings.goos == "windows"
}

// KeyStorePathRequired returns false.
func (b *WinCredBackend) KeyStorePathRequired() bool {
	return false
}

// GetPassword reads the credential and decodes its UTF-16LE blob.
func (b *WinCredBackend) GetPassword(service, account string) ([]byte, error) {
	if err := backend.ValidateKey(service, account); err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}

	record, err := b.read(service, account)
	if err != nil {
		return nil, retrievalErr(b.ID(), service, account, err)
	}
	defer record.wipe()

	password, err := record.password()
	if err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}
	return password, nil
}

// SetPassword creates or replaces the credential.
func (b *WinCredBackend) SetPassword(service, account string, password []byte) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}

	record, err := newCredentialRecord(service, account, password)
	if err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	defer record.wipe()

	if err := b.client.Write(record.toCredential()); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	return nil
}

// DeletePassword removes the credential. A missing credential is not an
// error.
func (b *WinCredBackend) DeletePassword(service, account string) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}

	if err := b.client.Delete(credentialTarget(service, account)); err != nil {
		if notFound(err) {
			return nil
		}
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}
	return nil
}

// Describe returns the credential's metadata without its secret.
func (b *WinCredBackend) Describe(service, account string) (backend.Credential, error) {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.Credential{}, backend.RetrievalError(b.ID(), service, account, err)
	}

	record, err := b.read(service, account)
	if err != nil {
		return backend.Credential{}, retrievalErr(b.ID(), service, account, err)
	}
	defer record.wipe()

	return backend.Credential{
		Service:     service,
		Account:     record.UserName,
		Comment:     record.Comment,
		TargetAlias: record.TargetAlias,
		LastWritten: record.LastWritten,
	}, nil
}

func (b *WinCredBackend) read(service, account string) (credentialRecord, error) {
	cred, err := b.client.Read(credentialTarget(service, account))
	if err != nil {
		return credentialRecord{}, err
	}
	return recordFromCredential(cred)
}

var (
	_ backend.Backend   = (*WinCredBackend)(nil)
	_ backend.Describer = (*WinCredBackend)(nil)
)
