//go:build !linux

package backends

import (
	"github.com/systmms/dskeyring/internal/backends/contracts"
)

// unsupportedKernelKeyring is a stub for platforms without keyctl(2).
type unsupportedKernelKeyring struct{}

func newKernelKeyring() contracts.KernelKeyring {
	return unsupportedKernelKeyring{}
}

// Ping returns contracts.ErrUnsupportedPlatform.
func (unsupportedKernelKeyring) Ping() error {
	return contracts.ErrUnsupportedPlatform
}

// Add returns contracts.ErrUnsupportedPlatform.
func (unsupportedKernelKeyring) Add(string, []byte) error {
	return contracts.ErrUnsupportedPlatform
}

// Read returns contracts.ErrUnsupportedPlatform.
func (unsupportedKernelKeyring) Read(string) ([]byte, error) {
	return nil, contracts.ErrUnsupportedPlatform
}

// Revoke returns contracts.ErrUnsupportedPlatform.
func (unsupportedKernelKeyring) Revoke(string) error {
	return contracts.ErrUnsupportedPlatform
}

var _ contracts.KernelKeyring = unsupportedKernelKeyring{}
