package backends

import (
	"sync"
	"time"

	"github.com/systmms/dskeyring/internal/secure"
	"github.com/systmms/dskeyring/pkg/backend"
)

type memoryKey struct {
	service string
	account string
}

type memoryEntry struct {
	secret      *secure.SecureBuffer
	lastWritten time.Time
}

// MemoryBackend keeps credentials in process memory for the lifetime of the
// backend. It is supported everywhere and is the last resort of
// auto-detection. Secrets are sealed in memguard enclaves, but the enclave
// key lives in the same process, so this offers no protection against
// anything that can read process memory.
//
// Deleting an entry that does not exist fails.
type MemoryBackend struct {
	storePath
	mu      sync.RWMutex
	entries map[memoryKey]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[memoryKey]memoryEntry),
		now:     time.Now,
	}
}

// ID returns backend.UnencryptedMemory.
func (b *MemoryBackend) ID() backend.ID {
	return backend.UnencryptedMemory
}

// IsSupported returns true.
func (b *MemoryBackend) IsSupported() bool {
	return true
}

// KeyStorePathRequired returns false.
func (b *MemoryBackend) KeyStorePathRequired() bool {
	return false
}

// GetPassword returns a copy of the stored secret.
func (b *MemoryBackend) GetPassword(service, account string) ([]byte, error) {
	if err := backend.ValidateKey(service, account); err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}

	// Writers destroy replaced buffers only after swapping them out under the
	// write lock, so the entry stays readable while the read lock is held.
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.entries[memoryKey{service, account}]
	if !ok {
		return nil, backend.RetrievalError(b.ID(), service, account, backend.ErrNotFound)
	}

	password, err := entry.secret.Copy()
	if err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}
	return password, nil
}

// SetPassword stores a sealed copy of password.
func (b *MemoryBackend) SetPassword(service, account string, password []byte) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	if _, err := checkUTF8(password); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}

	entry := memoryEntry{
		secret:      secure.NewSecureBuffer(password),
		lastWritten: b.now(),
	}

	b.mu.Lock()
	old, existed := b.entries[memoryKey{service, account}]
	b.entries[memoryKey{service, account}] = entry
	b.mu.Unlock()

	if existed {
		old.secret.Destroy()
	}
	return nil
}

// DeletePassword removes the entry. A missing entry is an error.
func (b *MemoryBackend) DeletePassword(service, account string) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}

	b.mu.Lock()
	entry, ok := b.entries[memoryKey{service, account}]
	delete(b.entries, memoryKey{service, account})
	b.mu.Unlock()

	if !ok {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, backend.ErrNotFound)
	}
	entry.secret.Destroy()
	return nil
}

// Describe returns the entry's metadata without its secret.
func (b *MemoryBackend) Describe(service, account string) (backend.Credential, error) {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.Credential{}, backend.RetrievalError(b.ID(), service, account, err)
	}

	b.mu.RLock()
	entry, ok := b.entries[memoryKey{service, account}]
	b.mu.RUnlock()
	if !ok {
		return backend.Credential{}, backend.RetrievalError(b.ID(), service, account, backend.ErrNotFound)
	}

	return backend.Credential{
		Service:     service,
		Account:     account,
		LastWritten: entry.lastWritten,
	}, nil
}

// Len returns the number of stored entries.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

var (
	_ backend.Backend   = (*MemoryBackend)(nil)
	_ backend.Describer = (*MemoryBackend)(nil)
)
