//go:build !darwin || !cgo

package backends

import (
	"github.com/systmms/dskeyring/internal/backends/contracts"
)

const keychainLinked = false

// unsupportedKeychainClient is a stub for builds without Security.framework.
type unsupportedKeychainClient struct{}

func newKeychainClient() contracts.KeychainClient {
	return unsupportedKeychainClient{}
}

// Find returns contracts.ErrUnsupportedPlatform.
func (unsupportedKeychainClient) Find(string, string) ([]byte, error) {
	return nil, contracts.ErrUnsupportedPlatform
}

// Add returns contracts.ErrUnsupportedPlatform.
func (unsupportedKeychainClient) Add(string, string, string, []byte) error {
	return contracts.ErrUnsupportedPlatform
}

// Update returns contracts.ErrUnsupportedPlatform.
func (unsupportedKeychainClient) Update(string, string, []byte) error {
	return contracts.ErrUnsupportedPlatform
}

// Delete returns contracts.ErrUnsupportedPlatform.
func (unsupportedKeychainClient) Delete(string, string) error {
	return contracts.ErrUnsupportedPlatform
}

var _ contracts.KeychainClient = unsupportedKeychainClient{}
