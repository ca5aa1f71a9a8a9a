package fakes

import (
	"sync"

	"github.com/systmms/dskeyring/internal/backends/contracts"
)

type serviceAccount struct {
	service string
	account string
}

// FakeKeychainClient is a test double for contracts.KeychainClient.
type FakeKeychainClient struct {
	mu     sync.Mutex
	items  map[serviceAccount][]byte
	labels map[serviceAccount]string

	// FindErr, AddErr, UpdateErr and DeleteErr override the corresponding call.
	FindErr   error
	AddErr    error
	UpdateErr error
	DeleteErr error

	// Updates counts successful Update calls.
	Updates int
}

// NewFakeKeychainClient creates an empty fake keychain.
func NewFakeKeychainClient() *FakeKeychainClient {
	return &FakeKeychainClient{
		items:  make(map[serviceAccount][]byte),
		labels: make(map[serviceAccount]string),
	}
}

// SetItem stores raw item data, bypassing Add.
func (f *FakeKeychainClient) SetItem(service, account string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[serviceAccount{service, account}] = append([]byte(nil), data...)
}

// Label returns the label recorded by Add.
func (f *FakeKeychainClient) Label(service, account string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.labels[serviceAccount{service, account}]
}

// Find returns a copy of the item data.
func (f *FakeKeychainClient) Find(service, account string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FindErr != nil {
		return nil, f.FindErr
	}
	data, ok := f.items[serviceAccount{service, account}]
	if !ok {
		return nil, contracts.ErrItemNotFound
	}
	return append([]byte(nil), data...), nil
}

// Add creates an item, failing with contracts.ErrDuplicateItem if it exists.
func (f *FakeKeychainClient) Add(service, account, label string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.AddErr != nil {
		return f.AddErr
	}
	key := serviceAccount{service, account}
	if _, ok := f.items[key]; ok {
		return contracts.ErrDuplicateItem
	}
	f.items[key] = append([]byte(nil), data...)
	f.labels[key] = label
	return nil
}

// Update replaces the data of an existing item.
func (f *FakeKeychainClient) Update(service, account string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	key := serviceAccount{service, account}
	if _, ok := f.items[key]; !ok {
		return contracts.ErrItemNotFound
	}
	f.items[key] = append([]byte(nil), data...)
	f.Updates++
	return nil
}

// Delete removes an item.
func (f *FakeKeychainClient) Delete(service, account string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	key := serviceAccount{service, account}
	if _, ok := f.items[key]; !ok {
		return contracts.ErrItemNotFound
	}
	delete(f.items, key)
	delete(f.labels, key)
	return nil
}

var _ contracts.KeychainClient = (*FakeKeychainClient)(nil)
