// Package secure provides memory-safe handling of secret bytes.
//
// It wraps the memguard library so that secrets held in process memory are:
//
//   - Encrypted at rest (XSalsa20Poly1305)
//   - Protected from swapping via mlock where the OS allows it
//   - Wiped when no longer needed
//
// The UnencryptedMemory backend keeps each stored password in a SecureBuffer,
// and the keyring facade uses Wipe to clear the transient byte copies it
// creates while converting between strings and bytes.
//
// # Usage
//
//	buf := secure.NewSecureBuffer(password)
//	defer buf.Destroy()
//
//	plain, err := buf.Copy()
//	if err != nil {
//	    return err
//	}
//	defer secure.Wipe(plain)
//
// # Platform Behavior
//
// Memory locking varies by platform. On Linux it is bounded by
// RLIMIT_MEMLOCK; memguard degrades to ordinary memory when the limit is hit.
//
// This package does NOT protect against attackers with access to the running
// process, and the name of the memory backend is honest about that: the
// enclave key lives in the same process as the data.
package secure
