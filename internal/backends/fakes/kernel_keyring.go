package fakes

import (
	"sync"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

// FakeKernelKeyring is a test double for contracts.KernelKeyring.
type FakeKernelKeyring struct {
	mu   sync.Mutex
	keys map[string][]byte

	// PingErr, AddErr, ReadErr and RevokeErr override the corresponding call.
	PingErr   error
	AddErr    error
	ReadErr   error
	RevokeErr error
}

// NewFakeKernelKeyring creates an empty fake user keyring.
func NewFakeKernelKeyring() *FakeKernelKeyring {
	return &FakeKernelKeyring{keys: make(map[string][]byte)}
}

// Descriptions returns the descriptions of all live keys.
func (f *FakeKernelKeyring) Descriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.keys))
	for d := range f.keys {
		out = append(out, d)
	}
	return out
}

// SetKey stores a raw payload, bypassing Add.
func (f *FakeKernelKeyring) SetKey(description string, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[description] = append([]byte(nil), payload...)
}

// Ping returns PingErr.
func (f *FakeKernelKeyring) Ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PingErr
}

// Add creates or updates a key.
func (f *FakeKernelKeyring) Add(description string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.AddErr != nil {
		return f.AddErr
	}
	f.keys[description] = append([]byte(nil), payload...)
	return nil
}

// Read returns a copy of the key payload.
func (f *FakeKernelKeyring) Read(description string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	payload, ok := f.keys[description]
	if !ok {
		return nil, contracts.ErrItemNotFound
	}
	return append([]byte(nil), payload...), nil
}

// Revoke removes a key.
func (f *FakeKernelKeyring) Revoke(description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RevokeErr != nil {
		return f.RevokeErr
	}
	if _, ok := f.keys[description]; !ok {
		return contracts.ErrItemNotFound
	}
	delete(f.keys, description)
	return nil
}

var _ contracts.KernelKeyring = (*FakeKernelKeyring)(nil)
