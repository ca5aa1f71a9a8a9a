package fakes

import (
	"sync"
	"time"

	"github.com/danieljoos/wincred"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

// FakeCredentialManager is a test double for contracts.CredentialManager.
type FakeCredentialManager struct {
	mu          sync.Mutex
	credentials map[string]wincred.Credential

	// Now stamps LastWritten on Write. Defaults to time.Now.
	Now func() time.Time

	// ReadErr, WriteErr and DeleteErr override the corresponding call.
	ReadErr   error
	WriteErr  error
	DeleteErr error

	// Writes counts successful Write calls.
	Writes int
}

// NewFakeCredentialManager creates an empty fake credential vault.
func NewFakeCredentialManager() *FakeCredentialManager {
	return &FakeCredentialManager{
		credentials: make(map[string]wincred.Credential),
		Now:         time.Now,
	}
}

// Put stores cred as-is, bypassing Write. Use it to plant malformed data.
func (f *FakeCredentialManager) Put(cred wincred.Credential) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credentials[cred.TargetName] = cloneCredential(cred)
}

// Get returns the stored credential for inspection.
func (f *FakeCredentialManager) Get(targetName string) (wincred.Credential, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cred, ok := f.credentials[targetName]
	return cloneCredential(cred), ok
}

// Read returns a copy of the stored credential.
func (f *FakeCredentialManager) Read(targetName string) (*wincred.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	cred, ok := f.credentials[targetName]
	if !ok {
		return nil, contracts.ErrItemNotFound
	}
	out := cloneCredential(cred)
	return &out, nil
}

// Write stores a copy of cred.
func (f *FakeCredentialManager) Write(cred *wincred.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.WriteErr != nil {
		return f.WriteErr
	}
	stored := cloneCredential(*cred)
	stored.LastWritten = f.Now()
	f.credentials[cred.TargetName] = stored
	f.Writes++
	return nil
}

// Delete removes the stored credential.
func (f *FakeCredentialManager) Delete(targetName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.credentials[targetName]; !ok {
		return contracts.ErrItemNotFound
	}
	delete(f.credentials, targetName)
	return nil
}

func cloneCredential(cred wincred.Credential) wincred.Credential {
	out := cred
	out.CredentialBlob = append([]byte(nil), cred.CredentialBlob...)
	out.Attributes = append([]wincred.CredentialAttribute(nil), cred.Attributes...)
	return out
}

var _ contracts.CredentialManager = (*FakeCredentialManager)(nil)
