// Package backend defines the contract every credential storage backend in
// dskeyring implements, together with the error taxonomy that backends use to
// report failures.
//
// A backend is an adapter over one native credential facility: the Windows
// Credential Manager, a DPAPI-protected file, the macOS Keychain, a Secret
// Service daemon reached over D-Bus, the Linux kernel keyring, or plain
// process memory. The package is deliberately free of any platform code so
// that callers, tests and the selector can depend on it everywhere.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                    CLI Commands                             │
//	│              (cmd/dskeyring/commands/)                      │
//	└─────────────────────────┬───────────────────────────────────┘
//	                          │
//	┌─────────────────────────▼───────────────────────────────────┐
//	│                  Keyring facade                             │
//	│                  (pkg/keyring/)                             │
//	└─────────────────────────┬───────────────────────────────────┘
//	                          │
//	┌─────────────────────────▼───────────────────────────────────┐
//	│                Backend contract                             │
//	│                 (pkg/backend/)                ◄─────────────┤
//	└─────────────────────────┬───────────────────────────────────┘
//	                          │
//	┌─────────────────────────▼───────────────────────────────────┐
//	│        Backend implementations and selector                 │
//	│              (internal/backends/)                           │
//	└─────────────────────────────────────────────────────────────┘
//
// # Secret Encoding
//
// Secrets cross this interface as UTF-8 bytes. Each backend converts to the
// encoding its native store expects (UTF-16LE for the Windows Credential
// Manager) and back, and reports bytes it cannot decode as a
// PasswordRetrievalError.
//
// # Error Handling
//
// Every failure surfaces as exactly one of three kinds:
//
//   - BackendNotSupportedError when a backend cannot be used on this platform
//   - PasswordRetrievalError from GetPassword
//   - PasswordSaveError from SetPassword and DeletePassword
//
// Callers branch on the kind with errors.Is against ErrBackendNotSupported,
// ErrPasswordRetrieval and ErrPasswordSave, or with errors.As against the
// concrete types. A missing entry additionally matches ErrNotFound. The
// message text is diagnostic only.
//
// # Resources
//
// Backends hold no credential state between calls. Any native handle or
// buffer acquired during a call is released before the call returns, on every
// path. Backends add no locking of their own around the native store;
// concurrent writers to the same key are serialized (or not) by the store.
package backend
