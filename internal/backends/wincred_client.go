package backends

import (
	"errors"
	"fmt"

	"github.com/danieljoos/wincred"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

// credentialManager implements contracts.CredentialManager with wincred.
// wincred compiles everywhere and reports "Operation not supported" off
// Windows, so no build constraint is needed.
type credentialManager struct{}

func newCredentialManager() contracts.CredentialManager {
	return credentialManager{}
}

// Read fetches a generic credential.
func (credentialManager) Read(targetName string) (*wincred.Credential, error) {
	cred, err := wincred.GetGenericCredential(targetName)
	if err != nil {
		return nil, translateWinCredError(err)
	}
	if cred == nil {
		return nil, contracts.ErrItemNotFound
	}
	return &cred.Credential, nil
}

// Write persists a generic credential.
func (credentialManager) Write(cred *wincred.Credential) error {
	generic := wincred.NewGenericCredential(cred.TargetName)
	generic.Credential = *cred
	return translateWinCredError(generic.Write())
}

// Delete removes a generic credential.
func (credentialManager) Delete(targetName string) error {
	return translateWinCredError(wincred.NewGenericCredential(targetName).Delete())
}

func translateWinCredError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, wincred.ErrElementNotFound) {
		return fmt.Errorf("%w: %w", contracts.ErrItemNotFound, err)
	}
	return err
}

var _ contracts.CredentialManager = credentialManager{}
