package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when a destroyed SecureBuffer is read.
var ErrDestroyed = errors.New("secure buffer has been destroyed")

// SecureBuffer holds one secret encrypted in a memguard enclave.
//
// memguard refuses to build an enclave from zero bytes, so an empty secret is
// tracked with a nil enclave and reads back as an empty slice.
type SecureBuffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	size      int
	destroyed bool
}

// NewSecureBuffer seals a copy of data. The caller's slice is left intact;
// callers that own it should Wipe it afterwards.
func NewSecureBuffer(data []byte) *SecureBuffer {
	buf := &SecureBuffer{size: len(data)}
	if len(data) == 0 {
		return buf
	}

	// NewEnclave wipes its source, so seal a scratch copy.
	scratch := make([]byte, len(data))
	copy(scratch, data)
	buf.enclave = memguard.NewEnclave(scratch)
	return buf
}

// Open decrypts the secret into a locked buffer. The caller MUST Destroy the
// returned LockedBuffer when done.
//
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, ErrDestroyed
	}
	if s.enclave == nil {
		return memguard.NewBuffer(0), nil
	}
	return s.enclave.Open()
}

// Copy returns the plaintext in ordinary memory. The returned slice belongs
// to the caller, who should Wipe it when done.
func (s *SecureBuffer) Copy() ([]byte, error) {
	locked, err := s.Open()
	if err != nil {
		return nil, err
	}
	defer locked.Destroy()

	out := make([]byte, s.Len())
	copy(out, locked.Bytes())
	return out, nil
}

// Len returns the size of the sealed secret.
func (s *SecureBuffer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Destroy drops the enclave. It is idempotent; later reads return
// ErrDestroyed.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.size = 0
	s.destroyed = true
}

// Wipe overwrites b with zeroes.
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
}

// Purge destroys every memguard buffer and enclave key in the process. It is
// meant for deferred use in main.
func Purge() {
	memguard.Purge()
}
