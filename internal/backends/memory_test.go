package backends_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/dskeyring/internal/backends"
	"github.com/systmms/dskeyring/pkg/backend"
	"github.com/systmms/dskeyring/pkg/backend/backendtest"
)

func TestMemoryConformance(t *testing.T) {
	backendtest.Run(t, backendtest.Harness{
		New:                func(t *testing.T) backend.Backend { return backends.NewMemory() },
		DeleteMissingFails: true,
	})
}

func TestMemoryReturnsCopies(t *testing.T) {
	t.Parallel()

	b := backends.NewMemory()
	input := []byte("secret")
	require.NoError(t, b.SetPassword("svc", "acct", input))
	input[0] = 'X'

	got, err := b.GetPassword("svc", "acct")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), got)

	got[0] = 'Y'
	again, err := b.GetPassword("svc", "acct")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), again)
}

func TestMemoryDescribe(t *testing.T) {
	t.Parallel()

	b := backends.NewMemory()
	require.NoError(t, b.SetPassword("svc", "acct", []byte("pw")))

	cred, err := b.Describe("svc", "acct")
	require.NoError(t, err)
	assert.Equal(t, "svc", cred.Service)
	assert.Equal(t, "acct", cred.Account)
	assert.False(t, cred.LastWritten.IsZero())

	_, err = b.Describe("svc", "missing")
	assert.True(t, backend.IsNotFound(err))
}

func TestMemoryConcurrentAccess(t *testing.T) {
	t.Parallel()

	b := backends.NewMemory()
	const workers = 16

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account := fmt.Sprintf("acct-%d", i)
			for j := 0; j < 20; j++ {
				password := []byte(fmt.Sprintf("pw-%d-%d", i, j))
				if err := b.SetPassword("svc", account, password); err != nil {
					t.Errorf("set %s: %v", account, err)
					return
				}
				got, err := b.GetPassword("svc", account)
				if err != nil {
					t.Errorf("get %s: %v", account, err)
					return
				}
				if string(got) != string(password) {
					t.Errorf("get %s: got %q, want %q", account, got, password)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers, b.Len())
}

func TestMemoryReadDuringOverwrite(t *testing.T) {
	t.Parallel()

	b := backends.NewMemory()
	require.NoError(t, b.SetPassword("svc", "acct", []byte("pw-0")))

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 1; i <= rounds; i++ {
			if err := b.SetPassword("svc", "acct", []byte(fmt.Sprintf("pw-%d", i))); err != nil {
				t.Errorf("overwrite %d: %v", i, err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			got, err := b.GetPassword("svc", "acct")
			if err != nil {
				t.Errorf("read %d while overwriting: %v", i, err)
				return
			}
			if len(got) < len("pw-0") {
				t.Errorf("read %d: short secret %q", i, got)
				return
			}
		}
	}()

	wg.Wait()
}
