//go:build windows

package backends

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

// dataProtector implements contracts.DataProtector with CryptProtectData
// scoped to the current user.
type dataProtector struct{}

func newDataProtector() contracts.DataProtector {
	return dataProtector{}
}

var dpapiDescription = windows.StringToUTF16Ptr("dskeyring")

// Protect encrypts plaintext for the current user.
func (dataProtector) Protect(plaintext []byte) ([]byte, error) {
	in := newDataBlob(plaintext)
	var out windows.DataBlob
	err := windows.CryptProtectData(in, dpapiDescription, nil, 0, nil, windows.CRYPTPROTECT_UI_FORBIDDEN, &out)
	if err != nil {
		return nil, err
	}
	defer freeDataBlob(&out)
	return copyDataBlob(&out), nil
}

// Unprotect decrypts a blob produced by Protect.
func (dataProtector) Unprotect(ciphertext []byte) ([]byte, error) {
	in := newDataBlob(ciphertext)
	var out windows.DataBlob
	err := windows.CryptUnprotectData(in, nil, nil, 0, nil, windows.CRYPTPROTECT_UI_FORBIDDEN, &out)
	if err != nil {
		return nil, err
	}
	defer freeDataBlob(&out)
	return copyDataBlob(&out), nil
}

func newDataBlob(b []byte) *windows.DataBlob {
	if len(b) == 0 {
		return &windows.DataBlob{}
	}
	return &windows.DataBlob{Size: uint32(len(b)), Data: &b[0]}
}

func copyDataBlob(blob *windows.DataBlob) []byte {
	if blob.Data == nil || blob.Size == 0 {
		return []byte{}
	}
	out := make([]byte, blob.Size)
	copy(out, unsafe.Slice(blob.Data, blob.Size))
	return out
}

// freeDataBlob wipes and releases memory that DPAPI allocated for out.
func freeDataBlob(blob *windows.DataBlob) {
	if blob.Data == nil {
		return
	}
	clear(unsafe.Slice(blob.Data, blob.Size))
	_, _ = windows.LocalFree(windows.Handle(unsafe.Pointer(blob.Data)))
	blob.Data = nil
	blob.Size = 0
}

var _ contracts.DataProtector = dataProtector{}
