package backends

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/systmms/dskeyring/internal/backends/contracts"
	"github.com/systmms/dskeyring/internal/secure"
	"github.com/systmms/dskeyring/pkg/backend"
)

const dpapiDocumentVersion = 1

// dpapiDocument is the plaintext inside the protected key store file.
type dpapiDocument struct {
	Version int                          `yaml:"version"`
	Entries map[string]map[string]string `yaml:"entries"`
}

// DPAPIBackend stores credentials in one file whose contents are protected
// with the Windows Data Protection API for the current user. It requires a
// key store path.
//
// Writes hold an exclusive file lock for the whole read-modify-write and
// replace the file atomically. Deleting a missing entry fails.
type DPAPIBackend struct {
	storePath
	protector contracts.DataProtector
	settings  settings
}

// NewDPAPI creates a DPAPI file backend.
func NewDPAPI(opts ...Option) *DPAPIBackend {
	return NewDPAPIWithProtector(newDataProtector(), opts...)
}

// NewDPAPIWithProtector creates the backend over a custom protector.
// This is primarily for testing.
func NewDPAPIWithProtector(protector contracts.DataProtector, opts ...Option) *DPAPIBackend {
	return &DPAPIBackend{
		protector: protector,
		settings:  newSettings(opts),
	}
}

// ID returns backend.WindowsDPAPI.
func (b *DPAPIBackend) ID() backend.ID {
	return backend.WindowsDPAPI
}

// IsSupported reports whether the process runs on Windows.
func (b *DPAPIBackend) IsSupported() bool {
	return b.settings.goos == "windows"
}

// KeyStorePathRequired returns true.
func (b *DPAPIBackend) KeyStorePathRequired() bool {
	return true
}

// GetPassword reads the entry from the protected file.
func (b *DPAPIBackend) GetPassword(service, account string) ([]byte, error) {
	if err := backend.ValidateKey(service, account); err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}

	path := b.KeyStorePath()
	if path == "" {
		return nil, backend.RetrievalError(b.ID(), service, account, backend.ErrKeyStorePathRequired)
	}

	// The lock file can only be created inside an existing directory, and a
	// store whose directory is absent has never been written.
	if _, err := os.Stat(filepath.Dir(path)); errors.Is(err, fs.ErrNotExist) {
		return nil, backend.RetrievalError(b.ID(), service, account, backend.ErrNotFound)
	}

	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, fmt.Errorf("lock key store: %w", err))
	}
	defer func() { _ = lock.Unlock() }()

	doc, err := b.load(path)
	if err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}

	password, ok := doc.Entries[service][account]
	if !ok {
		return nil, backend.RetrievalError(b.ID(), service, account, backend.ErrNotFound)
	}
	out, err := checkUTF8([]byte(password))
	if err != nil {
		return nil, backend.RetrievalError(b.ID(), service, account, err)
	}
	return out, nil
}

// SetPassword creates or replaces the entry.
func (b *DPAPIBackend) SetPassword(service, account string, password []byte) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	if _, err := checkUTF8(password); err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}

	err := b.update(func(doc *dpapiDocument) error {
		if doc.Entries[service] == nil {
			doc.Entries[service] = make(map[string]string)
		}
		doc.Entries[service][account] = string(password)
		return nil
	})
	if err != nil {
		return backend.SaveError(b.ID(), backend.OpSet, service, account, err)
	}
	return nil
}

// DeletePassword removes the entry. A missing entry is an error.
func (b *DPAPIBackend) DeletePassword(service, account string) error {
	if err := backend.ValidateKey(service, account); err != nil {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}

	err := b.update(func(doc *dpapiDocument) error {
		accounts, ok := doc.Entries[service]
		if !ok {
			return backend.ErrNotFound
		}
		if _, ok := accounts[account]; !ok {
			return backend.ErrNotFound
		}
		delete(accounts, account)
		if len(accounts) == 0 {
			delete(doc.Entries, service)
		}
		return nil
	})
	if err != nil {
		return backend.SaveError(b.ID(), backend.OpDelete, service, account, err)
	}
	return nil
}

// update runs fn over the document under an exclusive lock and writes the
// result back atomically.
func (b *DPAPIBackend) update(fn func(doc *dpapiDocument) error) error {
	path := b.KeyStorePath()
	if path == "" {
		return backend.ErrKeyStorePathRequired
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key store directory: %w", err)
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock key store: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	doc, err := b.load(path)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return b.store(path, doc)
}

// load reads and unprotects the key store. A missing or empty file is an
// empty store.
func (b *DPAPIBackend) load(path string) (dpapiDocument, error) {
	doc := dpapiDocument{Version: dpapiDocumentVersion, Entries: map[string]map[string]string{}}

	ciphertext, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read key store: %w", err)
	}
	if len(ciphertext) == 0 {
		return doc, nil
	}

	plaintext, err := b.protector.Unprotect(ciphertext)
	if err != nil {
		return doc, fmt.Errorf("unprotect key store: %w", err)
	}
	defer secure.Wipe(plaintext)

	if err := yaml.Unmarshal(plaintext, &doc); err != nil {
		return doc, fmt.Errorf("parse key store: %w", err)
	}
	if doc.Version != dpapiDocumentVersion {
		return doc, fmt.Errorf("unsupported key store version %d", doc.Version)
	}
	if doc.Entries == nil {
		doc.Entries = map[string]map[string]string{}
	}
	return doc, nil
}

// store protects doc and replaces the key store file.
func (b *DPAPIBackend) store(path string, doc dpapiDocument) error {
	plaintext, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode key store: %w", err)
	}
	defer secure.Wipe(plaintext)

	ciphertext, err := b.protector.Protect(plaintext)
	if err != nil {
		return fmt.Errorf("protect key store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary key store: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(ciphertext); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temporary key store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temporary key store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary key store: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace key store: %w", err)
	}
	return nil
}

func lockPath(path string) string {
	return path + ".lock"
}

var _ backend.Backend = (*DPAPIBackend)(nil)
