// Package keyring is the entry point for storing, retrieving and deleting
// passwords in the platform credential store.
//
// A Keyring wraps exactly one backend. Create picks the first backend that
// works on the current platform, falling back to process memory;
// CreateWithBackend asks for one by ID and fails if it is unusable; New wraps
// a backend the caller built.
//
//	kr, err := keyring.Create()
//	if err != nil {
//	    return err
//	}
//	if err := kr.SetPassword("net.example", "tester", "HogeHoge2012"); err != nil {
//	    return err
//	}
//	pw, err := kr.GetPassword("net.example", "tester")
//
// Errors are the kinds defined in package backend and are returned as the
// backend produced them. Use errors.Is with backend.ErrPasswordRetrieval,
// backend.ErrPasswordSave, backend.ErrBackendNotSupported and
// backend.ErrNotFound to branch on them.
//
// A Keyring adds no locking. Concurrent use is as safe as the underlying
// store makes it.
package keyring
