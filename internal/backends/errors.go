package backends

import (
	"errors"
	"fmt"

	"github.com/systmms/dskeyring/internal/backends/contracts"
	"github.com/systmms/dskeyring/pkg/backend"
)

// notFound reports whether a client error means the entry is absent.
func notFound(err error) bool {
	return errors.Is(err, contracts.ErrItemNotFound) || errors.Is(err, backend.ErrNotFound)
}

// markNotFound adds backend.ErrNotFound to a client not-found error so
// callers can match it without knowing the client.
func markNotFound(err error) error {
	if errors.Is(err, backend.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", backend.ErrNotFound, err)
}

// retrievalErr builds the GetPassword failure for a client error.
func retrievalErr(id backend.ID, service, account string, err error) error {
	if notFound(err) {
		err = markNotFound(err)
	}
	return backend.RetrievalError(id, service, account, err)
}
