package secure

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecureBuffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "password", data: []byte("my-secret-password")},
		{name: "empty", data: []byte{}},
		{name: "nil", data: nil},
		{name: "binary", data: []byte{0x00, 0xFF, 0x10, 0x20}},
		{name: "utf8", data: []byte("pässwörd 🔑")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := NewSecureBuffer(tt.data)
			defer buf.Destroy()

			assert.Equal(t, len(tt.data), buf.Len())

			got, err := buf.Copy()
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.data, got), "Copy() = %v, want %v", got, tt.data)
		})
	}
}

func TestNewSecureBuffer_LeavesSourceIntact(t *testing.T) {
	t.Parallel()

	src := []byte("do-not-touch")
	buf := NewSecureBuffer(src)
	defer buf.Destroy()

	assert.Equal(t, "do-not-touch", string(src))
}

func TestSecureBuffer_Open(t *testing.T) {
	t.Parallel()

	buf := NewSecureBuffer([]byte("super-secret-data"))
	defer buf.Destroy()

	for i := 0; i < 3; i++ {
		locked, err := buf.Open()
		require.NoError(t, err)
		assert.Equal(t, []byte("super-secret-data"), locked.Bytes())
		locked.Destroy()
	}
}

func TestSecureBuffer_CopyIsIndependent(t *testing.T) {
	t.Parallel()

	buf := NewSecureBuffer([]byte("original"))
	defer buf.Destroy()

	first, err := buf.Copy()
	require.NoError(t, err)
	Wipe(first)

	second, err := buf.Copy()
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), second)
}

func TestSecureBuffer_Destroy(t *testing.T) {
	t.Parallel()

	buf := NewSecureBuffer([]byte("secret-to-destroy"))
	buf.Destroy()
	buf.Destroy()

	_, err := buf.Open()
	assert.ErrorIs(t, err, ErrDestroyed)

	_, err = buf.Copy()
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.Zero(t, buf.Len())
}

func TestSecureBuffer_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	buf := NewSecureBuffer([]byte("concurrent-secret"))
	defer buf.Destroy()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			got, err := buf.Copy()
			if err != nil {
				t.Errorf("Copy() error = %v", err)
				return
			}
			if string(got) != "concurrent-secret" {
				t.Error("data mismatch in concurrent access")
			}
		}()
	}
	wg.Wait()
}

func TestWipe(t *testing.T) {
	t.Parallel()

	b := []byte("wipe me")
	Wipe(b)
	assert.Equal(t, make([]byte, 7), b)

	assert.NotPanics(t, func() { Wipe(nil) })
}

func BenchmarkSecureBuffer(b *testing.B) {
	secret := []byte("benchmark-secret-data")

	b.Run("NewSecureBuffer", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			NewSecureBuffer(secret).Destroy()
		}
	})

	b.Run("Copy", func(b *testing.B) {
		buf := NewSecureBuffer(secret)
		defer buf.Destroy()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			out, _ := buf.Copy()
			Wipe(out)
		}
	})
}
