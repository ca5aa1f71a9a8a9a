//go:build linux

package backends

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

// keyPerm grants possessor and user full access so the key stays readable
// from later processes of the same user.
const keyPerm = 0x3f3f0000

// kernelKeyring implements contracts.KernelKeyring with keyctl(2).
type kernelKeyring struct{}

func newKernelKeyring() contracts.KernelKeyring {
	return kernelKeyring{}
}

func (kernelKeyring) ring() (int, error) {
	ringID, err := unix.KeyctlGetKeyringID(unix.KEY_SPEC_USER_KEYRING, true)
	if err != nil {
		return 0, fmt.Errorf("could not get user keyring: %w", err)
	}
	return ringID, nil
}

// Ping resolves the user keyring.
func (k kernelKeyring) Ping() error {
	_, err := k.ring()
	return err
}

// Add creates or updates a "user" key in the user keyring.
func (k kernelKeyring) Add(description string, payload []byte) error {
	ringID, err := k.ring()
	if err != nil {
		return err
	}

	keyID, err := unix.AddKey("user", description, payload, ringID)
	if err != nil {
		return fmt.Errorf("add key: %w", err)
	}
	if err := unix.KeyctlSetperm(keyID, keyPerm); err != nil {
		return fmt.Errorf("set key permissions: %w", err)
	}
	return nil
}

// Read returns the payload of a "user" key.
func (k kernelKeyring) Read(description string) ([]byte, error) {
	_, keyID, err := k.search(description)
	if err != nil {
		return nil, err
	}

	size, err := unix.KeyctlBuffer(unix.KEYCTL_READ, keyID, nil, 0)
	if err != nil {
		return nil, translateKeyctlError(err)
	}
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	n, err := unix.KeyctlBuffer(unix.KEYCTL_READ, keyID, buf, 0)
	if err != nil {
		return nil, translateKeyctlError(err)
	}
	if n > size {
		return nil, fmt.Errorf("key payload grew from %d to %d bytes during read", size, n)
	}
	return buf[:n], nil
}

// Revoke unlinks the key from the user keyring and revokes it.
func (k kernelKeyring) Revoke(description string) error {
	ringID, keyID, err := k.search(description)
	if err != nil {
		return err
	}

	if _, err := unix.KeyctlInt(unix.KEYCTL_UNLINK, keyID, ringID, 0, 0); err != nil {
		return translateKeyctlError(err)
	}
	if _, err := unix.KeyctlInt(unix.KEYCTL_REVOKE, keyID, 0, 0, 0); err != nil && !errors.Is(err, unix.EKEYREVOKED) {
		return translateKeyctlError(err)
	}
	return nil
}

func (k kernelKeyring) search(description string) (int, int, error) {
	ringID, err := k.ring()
	if err != nil {
		return 0, 0, err
	}
	keyID, err := unix.KeyctlSearch(ringID, "user", description, 0)
	if err != nil {
		return 0, 0, translateKeyctlError(err)
	}
	return ringID, keyID, nil
}

func translateKeyctlError(err error) error {
	switch {
	case errors.Is(err, unix.ENOKEY), errors.Is(err, unix.EKEYREVOKED), errors.Is(err, unix.EKEYEXPIRED):
		return fmt.Errorf("%w: %w", contracts.ErrItemNotFound, err)
	}
	return err
}

var _ contracts.KernelKeyring = kernelKeyring{}
