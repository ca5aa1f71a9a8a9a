package fakes

import (
	"sort"
	"strings"
	"sync"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

type secretItem struct {
	label  string
	attrs  map[string]string
	secret []byte
}

// FakeSecretServiceClient is a test double for contracts.SecretServiceClient.
type FakeSecretServiceClient struct {
	mu    sync.Mutex
	items map[string]secretItem

	// PingErr, LookupErr, StoreErr and RemoveErr override the corresponding
	// call.
	PingErr   error
	LookupErr error
	StoreErr  error
	RemoveErr error
}

// NewFakeSecretServiceClient creates an empty fake collection.
func NewFakeSecretServiceClient() *FakeSecretServiceClient {
	return &FakeSecretServiceClient{items: make(map[string]secretItem)}
}

// Len returns the number of items in the collection.
func (f *FakeSecretServiceClient) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Label returns the label of the item matching attrs.
func (f *FakeSecretServiceClient) Label(attrs map[string]string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[attrKey(attrs)].label
}

// Ping returns PingErr.
func (f *FakeSecretServiceClient) Ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PingErr
}

// Lookup returns the secret of the item matching attrs.
func (f *FakeSecretServiceClient) Lookup(attrs map[string]string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.LookupErr != nil {
		return nil, f.LookupErr
	}
	item, ok := f.items[attrKey(attrs)]
	if !ok {
		return nil, contracts.ErrItemNotFound
	}
	return append([]byte(nil), item.secret...), nil
}

// Store creates or replaces the item matching attrs.
func (f *FakeSecretServiceClient) Store(label string, attrs map[string]string, secret []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.StoreErr != nil {
		return f.StoreErr
	}
	copied := make(map[string]string, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	f.items[attrKey(attrs)] = secretItem{
		label:  label,
		attrs:  copied,
		secret: append([]byte(nil), secret...),
	}
	return nil
}

// Remove deletes the item matching attrs.
func (f *FakeSecretServiceClient) Remove(attrs map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	key := attrKey(attrs)
	if _, ok := f.items[key]; !ok {
		return contracts.ErrItemNotFound
	}
	delete(f.items, key)
	return nil
}

func attrKey(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte(0)
		sb.WriteString(attrs[k])
		sb.WriteByte(0)
	}
	return sb.String()
}

var _ contracts.SecretServiceClient = (*FakeSecretServiceClient)(nil)
