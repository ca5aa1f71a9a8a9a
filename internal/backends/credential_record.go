package backends

import (
	"fmt"
	"time"

	"github.com/danieljoos/wincred"

	"github.com/systmms/dskeyring/internal/secure"
)

// Native CREDENTIALW constants.
const (
	credTypeGeneric           uint32 = 1
	credPersistLocalMachine   uint32 = 2
	credMaxCredentialBlobSize        = 5 * 512
)

// credentialRecord mirrors the native CREDENTIALW layout field for field, in
// native order. It is the only place where the Windows Credential Manager
// representation is built or taken apart.
type credentialRecord struct {
	Flags              uint32
	Type               uint32
	TargetName         string
	Comment            string
	LastWritten        time.Time
	CredentialBlobSize uint32
	CredentialBlob     []byte
	Persist            uint32
	AttributeCount     uint32
	Attributes         []wincred.CredentialAttribute
	TargetAlias        string
	UserName           string
}

// credentialTarget is the target name for (service, account). Keying on both
// keeps distinct accounts of one service in distinct credentials.
func credentialTarget(service, account string) string {
	return service + ":" + account
}

// newCredentialRecord builds a generic, machine-persisted record holding
// password encoded as UTF-16LE.
func newCredentialRecord(service, account string, password []byte) (credentialRecord, error) {
	blob, err := encodeUTF16LE(password)
	if err != nil {
		return credentialRecord{}, err
	}
	if len(blob) > credMaxCredentialBlobSize {
		return credentialRecord{}, fmt.Errorf("credential blob is %d bytes, limit is %d", len(blob), credMaxCredentialBlobSize)
	}

	return credentialRecord{
		Type:               credTypeGeneric,
		TargetName:         credentialTarget(service, account),
		CredentialBlobSize: uint32(len(blob)),
		CredentialBlob:     blob,
		Persist:            credPersistLocalMachine,
		UserName:           account,
	}, nil
}

// recordFromCredential decodes a credential returned by the binding.
func recordFromCredential(cred *wincred.Credential) (credentialRecord, error) {
	if cred == nil {
		return credentialRecord{}, fmt.Errorf("nil credential")
	}

	blob := make([]byte, len(cred.CredentialBlob))
	copy(blob, cred.CredentialBlob)

	attrs := make([]wincred.CredentialAttribute, len(cred.Attributes))
	copy(attrs, cred.Attributes)

	return credentialRecord{
		Type:               credTypeGeneric,
		TargetName:         cred.TargetName,
		Comment:            cred.Comment,
		LastWritten:        cred.LastWritten,
		CredentialBlobSize: uint32(len(blob)),
		CredentialBlob:     blob,
		Persist:            uint32(cred.Persist),
		AttributeCount:     uint32(len(attrs)),
		Attributes:         attrs,
		TargetAlias:        cred.TargetAlias,
		UserName:           cred.UserName,
	}, nil
}

// toCredential encodes the record for the binding. The binding fills Flags,
// Type and the size/count fields itself.
func (r credentialRecord) toCredential() *wincred.Credential {
	return &wincred.Credential{
		TargetName:     r.TargetName,
		Comment:        r.Comment,
		LastWritten:    r.LastWritten,
		CredentialBlob: r.CredentialBlob[:r.CredentialBlobSize],
		Attributes:     r.Attributes,
		TargetAlias:    r.TargetAlias,
		UserName:       r.UserName,
		Persist:        wincred.CredentialPersistence(r.Persist),
	}
}

// password decodes the UTF-16LE blob to UTF-8.
func (r credentialRecord) password() ([]byte, error) {
	if int(r.CredentialBlobSize) > len(r.CredentialBlob) {
		return nil, fmt.Errorf("credential blob size %d exceeds buffer of %d bytes", r.CredentialBlobSize, len(r.CredentialBlob))
	}
	return decodeUTF16LE(r.CredentialBlob[:r.CredentialBlobSize])
}

// wipe clears the secret bytes held by the record.
func (r *credentialRecord) wipe() {
	secure.Wipe(r.CredentialBlob)
	r.CredentialBlobSize = 0
}
