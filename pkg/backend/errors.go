package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors. The three kind sentinels are matched by the concrete error
// types through errors.Is; the remaining sentinels describe common causes and
// are wrapped by them.
var (
	// ErrBackendNotSupported matches every *BackendNotSupportedError.
	ErrBackendNotSupported = errors.New("backend not supported")

	// ErrPasswordRetrieval matches every *PasswordRetrievalError.
	ErrPasswordRetrieval = errors.New("password retrieval failed")

	// ErrPasswordSave matches every *PasswordSaveError.
	ErrPasswordSave = errors.New("password save failed")

	// ErrNotFound is wrapped when the native store has no entry for the key.
	ErrNotFound = errors.New("credential not found")

	// ErrKeyStorePathRequired is wrapped when a backend that needs a key
	// store path is used before one is set.
	ErrKeyStorePathRequired = errors.New("key store path is required but not set")

	// ErrEmptyKey is wrapped when service or account is empty.
	ErrEmptyKey = errors.New("service and account must not be empty")

	// ErrInvalidEncoding is wrapped when stored bytes cannot be decoded.
	ErrInvalidEncoding = errors.New("stored secret is not valid text")
)

// Operation names carried by PasswordSaveError.
const (
	OpSet    = "set"
	OpDelete = "delete"
)

// BackendNotSupportedError is returned at selection time when no backend
// satisfying the request is usable on this platform.
type BackendNotSupportedError struct {
	ID     ID // empty when auto-detection found nothing
	Reason string
	Err    error
}

func (e *BackendNotSupportedError) Error() string {
	subject := "no supported backend"
	if e.ID != "" {
		subject = fmt.Sprintf("backend %s is not supported", e.ID)
	}
	if e.Reason != "" {
		subject += ": " + e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", subject, e.Err)
	}
	return subject
}

// Is reports whether target is ErrBackendNotSupported.
func (e *BackendNotSupportedError) Is(target error) bool {
	return target == ErrBackendNotSupported
}

func (e *BackendNotSupportedError) Unwrap() error {
	return e.Err
}

// PasswordRetrievalError is returned by GetPassword (and Describe) when the
// entry is absent, the native read fails, or the secret cannot be decoded.
type PasswordRetrievalError struct {
	Backend ID
	Service string
	Account string
	Err     error
}

func (e *PasswordRetrievalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: failed to retrieve password for %s/%s: %v", e.Backend, e.Service, e.Account, e.Err)
	}
	return fmt.Sprintf("%s: failed to retrieve password for %s/%s", e.Backend, e.Service, e.Account)
}

// Is reports whether target is ErrPasswordRetrieval.
func (e *PasswordRetrievalError) Is(target error) bool {
	return target == ErrPasswordRetrieval
}

func (e *PasswordRetrievalError) Unwrap() error {
	return e.Err
}

// PasswordSaveError is returned by SetPassword and DeletePassword on any
// native write or delete failure.
type PasswordSaveError struct {
	Backend ID
	Op      string // OpSet or OpDelete
	Service string
	Account string
	Err     error
}

func (e *PasswordSaveError) Error() string {
	verb := "save"
	if e.Op == OpDelete {
		verb = "delete"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: failed to %s password for %s/%s: %v", e.Backend, verb, e.Service, e.Account, e.Err)
	}
	return fmt.Sprintf("%s: failed to %s password for %s/%s", e.Backend, verb, e.Service, e.Account)
}

// Is reports whether target is ErrPasswordSave.
func (e *PasswordSaveError) Is(target error) bool {
	return target == ErrPasswordSave
}

func (e *PasswordSaveError) Unwrap() error {
	return e.Err
}

// NotSupported builds a *BackendNotSupportedError.
func NotSupported(id ID, reason string, err error) *BackendNotSupportedError {
	return &BackendNotSupportedError{ID: id, Reason: reason, Err: err}
}

// RetrievalError builds a *PasswordRetrievalError.
func RetrievalError(id ID, service, account string, err error) *PasswordRetrievalError {
	return &PasswordRetrievalError{Backend: id, Service: service, Account: account, Err: err}
}

// SaveError builds a *PasswordSaveError.
func SaveError(id ID, op, service, account string, err error) *PasswordSaveError {
	return &PasswordSaveError{Backend: id, Op: op, Service: service, Account: account, Err: err}
}

// ValidateKey returns ErrEmptyKey if service or account is empty.
func ValidateKey(service, account string) error {
	if service == "" || account == "" {
		return ErrEmptyKey
	}
	return nil
}

// IsNotFound reports whether err says the entry does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
