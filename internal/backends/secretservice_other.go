//go:build !linux && !freebsd && !openbsd && !netbsd && !dragonfly

package backends

import (
	"github.com/systmms/dskeyring/internal/backends/contracts"
)

// unsupportedSecretServiceClient is a stub for platforms without a D-Bus
// session bus.
type unsupportedSecretServiceClient struct{}

func newSecretServiceClient() contracts.SecretServiceClient {
	return unsupportedSecretServiceClient{}
}

// Ping returns contracts.ErrUnsupportedPlatform.
func (unsupportedSecretServiceClient) Ping() error {
	return contracts.ErrUnsupportedPlatform
}

// Lookup returns contracts.ErrUnsupportedPlatform.
func (unsupportedSecretServiceClient) Lookup(map[string]string) ([]byte, error) {
	return nil, contracts.ErrUnsupportedPlatform
}

// Store returns contracts.ErrUnsupportedPlatform.
func (unsupportedSecretServiceClient) Store(string, map[string]string, []byte) error {
	return contracts.ErrUnsupportedPlatform
}

// Remove returns contracts.ErrUnsupportedPlatform.
func (unsupportedSecretServiceClient) Remove(map[string]string) error {
	return contracts.ErrUnsupportedPlatform
}

var _ contracts.SecretServiceClient = unsupportedSecretServiceClient{}
