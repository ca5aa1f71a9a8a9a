//go:build darwin && cgo

package backends

import (
	"errors"
	"fmt"

	"github.com/keybase/go-keychain"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

const keychainLinked = true

// keychainClient implements contracts.KeychainClient with Security.framework.
type keychainClient struct{}

func newKeychainClient() contracts.KeychainClient {
	return keychainClient{}
}

// Find queries a single generic password item and returns its data.
func (keychainClient) Find(service, account string) ([]byte, error) {
	query := keychain.NewItem()
	query.SetSecClass(keychain.SecClassGenericPassword)
	query.SetService(service)
	query.SetAccount(account)
	query.SetMatchLimit(keychain.MatchLimitOne)
	query.SetReturnData(true)

	results, err := keychain.QueryItem(query)
	if err != nil {
		return nil, translateKeychainError(err)
	}
	if len(results) == 0 {
		return nil, contracts.ErrItemNotFound
	}
	return results[0].Data, nil
}

// Add creates a generic password item in the default keychain.
func (keychainClient) Add(service, account, label string, data []byte) error {
	item := keychain.NewGenericPassword(service, account, label, data, "")
	item.SetSynchronizable(keychain.SynchronizableNo)
	item.SetAccessible(keychain.AccessibleWhenUnlocked)
	return translateKeychainError(keychain.AddItem(item))
}

// Update replaces the data of the item for (service, account).
func (keychainClient) Update(service, account string, data []byte) error {
	query := keychain.NewItem()
	query.SetSecClass(keychain.SecClassGenericPassword)
	query.SetService(service)
	query.SetAccount(account)

	update := keychain.NewItem()
	update.SetData(data)
	return translateKeychainError(keychain.UpdateItem(query, update))
}

// Delete removes the item for (service, account).
func (keychainClient) Delete(service, account string) error {
	return translateKeychainError(keychain.DeleteGenericPasswordItem(service, account))
}

func translateKeychainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keychain.ErrorItemNotFound):
		return fmt.Errorf("%w: %w", contracts.ErrItemNotFound, err)
	case errors.Is(err, keychain.ErrorDuplicateItem):
		return fmt.Errorf("%w: %w", contracts.ErrDuplicateItem, err)
	}
	return err
}

var _ contracts.KeychainClient = keychainClient{}
