// Package backends implements the credential storage backends and the
// selector that picks one at runtime.
//
// # Backends
//
//   - WinCredBackend (WindowsCredentialStore): Windows Credential Manager
//   - DPAPIBackend (WindowsDPAPI): DPAPI-protected file, needs a key store path
//   - KeychainBackend (OSXKeychain): macOS Keychain
//   - SecretServiceBackend (GNOMEKeyring): Secret Service over D-Bus
//   - SystemBackend (SystemKeyring): go-keyring
//   - KeyctlBackend (LinuxKeyctl): Linux kernel user keyring
//   - MemoryBackend (UnencryptedMemory): process memory
//
// Every backend except MemoryBackend and SystemBackend talks to its native
// facility through an interface from the contracts package. The real client
// lives in a file guarded by build constraints; other platforms get a stub
// that reports contracts.ErrUnsupportedPlatform. Backend logic (key layout,
// text encoding, error translation) is platform-neutral and is tested on
// every OS against the fakes package.
//
// # Delete Semantics
//
// Deleting an entry that does not exist succeeds on WinCredBackend,
// SecretServiceBackend and KeyctlBackend, matching their native stores, and
// fails with a backend.PasswordSaveError everywhere else.
//
// # Selection
//
// Select and Registry.Select implement auto-detection and explicit choice
// over an ordered descriptor list. There is no process-wide default; callers
// pass the descriptors or hold a Registry.
package backends
