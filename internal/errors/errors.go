package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/systmms/dskeyring/pkg/backend"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents a failed CLI command
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// BackendError turns a credential store error into a UserError with a
// suggestion for the user. The original error stays reachable through
// errors.Is and errors.As.
func BackendError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var (
		notSupported *backend.BackendNotSupportedError
		retrieval    *backend.PasswordRetrievalError
		save         *backend.PasswordSaveError
	)

	switch {
	case errors.As(err, &notSupported):
		return UserError{
			Message:    notSupportedMessage(notSupported),
			Suggestion: notSupportedSuggestion(notSupported.ID),
			Err:        err,
		}
	case errors.As(err, &retrieval):
		msg := fmt.Sprintf("Could not read password for %s/%s from %s", retrieval.Service, retrieval.Account, retrieval.Backend)
		if backend.IsNotFound(err) {
			msg = fmt.Sprintf("No password stored for %s/%s in %s", retrieval.Service, retrieval.Account, retrieval.Backend)
		}
		return UserError{
			Message:    msg,
			Details:    causeText(retrieval.Err),
			Suggestion: getBackendSuggestion(retrieval.Backend, operation, err),
			Err:        err,
		}
	case errors.As(err, &save):
		verb := "save"
		if save.Op == backend.OpDelete {
			verb = "delete"
		}
		return UserError{
			Message:    fmt.Sprintf("Could not %s password for %s/%s in %s", verb, save.Service, save.Account, save.Backend),
			Details:    causeText(save.Err),
			Suggestion: getBackendSuggestion(save.Backend, operation, err),
			Err:        err,
		}
	}

	return UserError{
		Message: fmt.Sprintf("%s failed", operation),
		Err:     err,
	}
}

func notSupportedMessage(e *backend.BackendNotSupportedError) string {
	if e.ID == "" {
		return "No credential store is available on this system"
	}
	return fmt.Sprintf("Credential store %s is not available: %s", e.ID, e.Reason)
}

func notSupportedSuggestion(id backend.ID) string {
	switch id {
	case "":
		return "Run 'dskeyring backends' to see which stores were probed"
	case backend.OSXKeychain:
		return "OSXKeychain needs macOS and a cgo-enabled build"
	case backend.WindowsCredentialStore, backend.WindowsDPAPI:
		return fmt.Sprintf("%s is only available on Windows", id)
	case backend.GNOMEKeyring, backend.SystemKeyring:
		return "Start a desktop session or export DBUS_SESSION_BUS_ADDRESS for a running Secret Service"
	case backend.LinuxKeyctl:
		return "Check that the kernel keyring is enabled and not blocked by a seccomp profile"
	}
	return "Run 'dskeyring backends' to list available stores"
}

// getBackendSuggestion returns helpful suggestions based on backend and error
func getBackendSuggestion(id backend.ID, operation string, err error) string {
	switch {
	case errors.Is(err, backend.ErrKeyStorePathRequired):
		return fmt.Sprintf("%s needs a key store path: pass --keystore-path or set DSKEYRING_KEYSTORE_PATH", id)
	case errors.Is(err, backend.ErrEmptyKey):
		return "Both a service and an account name are required"
	case errors.Is(err, backend.ErrInvalidEncoding):
		return "The stored value is not valid text. Overwrite it with 'dskeyring set'"
	case backend.IsNotFound(err):
		if operation == "delete" {
			return "Nothing to delete. Check the service and account spelling"
		}
		return "Store one first with 'dskeyring set <service> <account>'"
	}

	errStr := strings.ToLower(err.Error())
	switch id {
	case backend.GNOMEKeyring, backend.SystemKeyring:
		if strings.Contains(errStr, "locked") || strings.Contains(errStr, "dismissed") {
			return "Unlock your login keyring and try again"
		}
		if strings.Contains(errStr, "dbus") || strings.Contains(errStr, "d-bus") {
			return "Make sure a Secret Service daemon such as gnome-keyring-daemon is running"
		}
	case backend.OSXKeychain:
		if strings.Contains(errStr, "auth") || strings.Contains(errStr, "interaction") {
			return "Unlock the login keychain or allow access when macOS prompts"
		}
	case backend.LinuxKeyctl:
		if strings.Contains(errStr, "quota") {
			return "The kernel key quota is exhausted. Remove unused keys with 'keyctl purge'"
		}
	}

	if strings.Contains(errStr, "permission denied") || strings.Contains(errStr, "access is denied") {
		return "Check that the current user may access the credential store"
	}

	return ""
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsUserFacing reports whether err already carries user-facing context.
func IsUserFacing(err error) bool {
	var (
		userErr    UserError
		configErr  ConfigError
		commandErr CommandError
	)
	return errors.As(err, &userErr) || errors.As(err, &configErr) || errors.As(err, &commandErr)
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	if _, ok := err.(UserError); ok {
		return err
	}
	if _, ok := err.(ConfigError); ok {
		return err
	}
	if _, ok := err.(CommandError); ok {
		return err
	}

	if errors.Is(err, backend.ErrBackendNotSupported) ||
		errors.Is(err, backend.ErrPasswordRetrieval) ||
		errors.Is(err, backend.ErrPasswordSave) {
		return BackendError("operation", err)
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
