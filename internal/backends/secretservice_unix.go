//go:build linux || freebsd || openbsd || netbsd || dragonfly

package backends

import (
	"fmt"
	"sync"

	dbus "github.com/keybase/dbus"
	"github.com/keybase/go-keychain/secretservice"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

// secretServiceClient implements contracts.SecretServiceClient over the
// D-Bus session bus. The bus connection is opened on first use; each call
// opens and closes its own encrypted session.
type secretServiceClient struct {
	once sync.Once
	svc  *secretservice.SecretService
	err  error
}

func newSecretServiceClient() contracts.SecretServiceClient {
	return &secretServiceClient{}
}

func (c *secretServiceClient) service() (*secretservice.SecretService, error) {
	c.once.Do(func() {
		c.svc, c.err = secretservice.NewService()
	})
	return c.svc, c.err
}

// Ping opens and closes a plain session, which fails when no daemon owns
// org.freedesktop.secrets on the bus.
func (c *secretServiceClient) Ping() error {
	svc, err := c.service()
	if err != nil {
		return err
	}

	session, err := svc.OpenSession(secretservice.AuthenticationInsecurePlain)
	if err != nil {
		return err
	}
	svc.CloseSession(session)
	return nil
}

// Lookup returns the secret of the first item matching attrs.
func (c *secretServiceClient) Lookup(attrs map[string]string) ([]byte, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}

	items, err := svc.SearchCollection(secretservice.DefaultCollection, attrs)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, contracts.ErrItemNotFound
	}
	if err := svc.Unlock(items[:1]); err != nil {
		return nil, err
	}

	session, err := svc.OpenSession(secretservice.AuthenticationDHAES)
	if err != nil {
		return nil, err
	}
	defer svc.CloseSession(session)

	secret, err := svc.GetSecret(items[0], *session)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, fmt.Errorf("secret service returned an undecryptable secret")
	}
	return secret, nil
}

// Store creates or replaces the item matching attrs in the default
// collection.
func (c *secretServiceClient) Store(label string, attrs map[string]string, secret []byte) error {
	svc, err := c.service()
	if err != nil {
		return err
	}

	if err := svc.Unlock([]dbus.ObjectPath{secretservice.DefaultCollection}); err != nil {
		return err
	}

	session, err := svc.OpenSession(secretservice.AuthenticationDHAES)
	if err != nil {
		return err
	}
	defer svc.CloseSession(session)

	sealed, err := session.NewSecret(secret)
	if err != nil {
		return err
	}

	properties := secretservice.NewSecretProperties(label, attrs)
	_, err = svc.CreateItem(secretservice.DefaultCollection, properties, sealed, secretservice.ReplaceBehaviorReplace)
	return err
}

// Remove deletes every item matching attrs.
func (c *secretServiceClient) Remove(attrs map[string]string) error {
	svc, err := c.service()
	if err != nil {
		return err
	}

	items, err := svc.SearchCollection(secretservice.DefaultCollection, attrs)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return contracts.ErrItemNotFound
	}
	for _, item := range items {
		if err := svc.DeleteItem(item); err != nil {
			return err
		}
	}
	return nil
}

var _ contracts.SecretServiceClient = (*secretServiceClient)(nil)
