package fakes

import (
	"bytes"
	"errors"
	"sync"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

var fakeDPAPIMagic = []byte("FAKEDPAPI1")

// ErrFakeCorruptBlob is returned by Unprotect for data it did not produce.
var ErrFakeCorruptBlob = errors.New("fake dpapi: blob is not protected data")

// FakeDataProtector is a test double for contracts.DataProtector. Its
// "ciphertext" is a magic header followed by the plaintext XORed with a
// fixed byte, so tests can check that files never hold plaintext.
type FakeDataProtector struct {
	mu sync.Mutex

	// ProtectErr and UnprotectErr override the corresponding call.
	ProtectErr   error
	UnprotectErr error

	// Protects counts successful Protect calls.
	Protects int
}

// NewFakeDataProtector creates a working fake protector.
func NewFakeDataProtector() *FakeDataProtector {
	return &FakeDataProtector{}
}

// Protect scrambles plaintext.
func (f *FakeDataProtector) Protect(plaintext []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ProtectErr != nil {
		return nil, f.ProtectErr
	}
	out := make([]byte, 0, len(fakeDPAPIMagic)+len(plaintext))
	out = append(out, fakeDPAPIMagic...)
	for _, b := range plaintext {
		out = append(out, b^0x5a)
	}
	f.Protects++
	return out, nil
}

// Unprotect reverses Protect.
func (f *FakeDataProtector) Unprotect(ciphertext []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UnprotectErr != nil {
		return nil, f.UnprotectErr
	}
	if !bytes.HasPrefix(ciphertext, fakeDPAPIMagic) {
		return nil, ErrFakeCorruptBlob
	}
	body := ciphertext[len(fakeDPAPIMagic):]
	out := make([]byte, len(body))
	for i, b := range body {
		out[i] = b ^ 0x5a
	}
	return out, nil
}

var _ contracts.DataProtector = (*FakeDataProtector)(nil)
