//go:build !windows

package backends

import (
	"github.com/systmms/dskeyring/internal/backends/contracts"
)

// unsupportedDataProtector is a stub for platforms without DPAPI.
type unsupportedDataProtector struct{}

func newDataProtector() contracts.DataProtector {
	return unsupportedDataProtector{}
}

// Protect returns contracts.ErrUnsupportedPlatform.
func (unsupportedDataProtector) Protect([]byte) ([]byte, error) {
	return nil, contracts.ErrUnsupportedPlatform
}

// Unprotect returns contracts.ErrUnsupportedPlatform.
func (unsupportedDataProtector) Unprotect([]byte) ([]byte, error) {
	return nil, contracts.ErrUnsupportedPlatform
}

var _ contracts.DataProtector = unsupportedDataProtector{}
