// Package backendtest provides the conformance suite that every
// backend.Backend implementation must pass.
//
// Backend packages call Run from their own tests with a Harness that builds a
// fresh, empty backend, usually over a fake native client:
//
//	func TestMemoryConformance(t *testing.T) {
//	    backendtest.Run(t, backendtest.Harness{
//	        New: func(t *testing.T) backend.Backend { return backends.NewMemory() },
//	        DeleteMissingFails: true,
//	    })
//	}
package backendtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/dskeyring/pkg/backend"
)

// Scenario values used by the end-to-end password flow.
const (
	ScenarioService  = "net.example unit test"
	ScenarioAccount  = "tester"
	ScenarioPassword = "HogeHoge2012"
)

// Harness describes the backend under test.
type Harness struct {
	// New returns a supported backend whose store holds no entries. Backends
	// that require a key store path must come back with one already set.
	New func(t *testing.T) backend.Backend

	// DeleteMissingFails is true when deleting an absent entry returns a
	// *backend.PasswordSaveError instead of succeeding.
	DeleteMissingFails bool

	// SkipUnicode skips the non-ASCII round trip for stores that only keep
	// single-byte text.
	SkipUnicode bool
}

// Run executes the full conformance suite.
func Run(t *testing.T, h Harness) {
	t.Helper()
	require.NotNil(t, h.New, "Harness.New must be set")

	t.Run("Contract", func(t *testing.T) {
		t.Run("ID", func(t *testing.T) { testID(t, h) })
		t.Run("IsSupported", func(t *testing.T) { testIsSupported(t, h) })
		t.Run("KeyStorePath", func(t *testing.T) { testKeyStorePath(t, h) })
		t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, h) })
		t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, h) })
		t.Run("DeleteRemovesVisibility", func(t *testing.T) { testDeleteRemovesVisibility(t, h) })
		t.Run("DeleteMissing", func(t *testing.T) { testDeleteMissing(t, h) })
		t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, h) })
		t.Run("DistinctAccounts", func(t *testing.T) { testDistinctAccounts(t, h) })
		t.Run("EmptyKey", func(t *testing.T) { testEmptyKey(t, h) })
		if !h.SkipUnicode {
			t.Run("Unicode", func(t *testing.T) { testUnicode(t, h) })
		}
		t.Run("PasswordFlow", func(t *testing.T) { testPasswordFlow(t, h) })
	})
}

func testID(t *testing.T, h Harness) {
	b := h.New(t)

	id := b.ID()
	assert.NotEmpty(t, id)
	assert.Equal(t, id, b.ID(), "ID must be stable")
}

func testIsSupported(t *testing.T, h Harness) {
	b := h.New(t)

	assert.True(t, b.IsSupported())
	assert.Equal(t, b.IsSupported(), b.IsSupported(), "IsSupported must be stable")
}

func testKeyStorePath(t *testing.T, h Harness) {
	b := h.New(t)

	if b.KeyStorePathRequired() {
		require.NotEmpty(t, b.KeyStorePath(), "harness must set a key store path")
		return
	}

	assert.Empty(t, b.KeyStorePath())
	b.SetKeyStorePath("/path/to/keystore")
	assert.Equal(t, "/path/to/keystore", b.KeyStorePath())

	// The path is recorded but never consulted.
	require.NoError(t, b.SetPassword("svc.keystore", "acct", []byte("value")))
	got, err := b.GetPassword("svc.keystore", "acct")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
	require.NoError(t, b.DeletePassword("svc.keystore", "acct"))
}

func testRoundTrip(t *testing.T, h Harness) {
	b := h.New(t)

	require.NoError(t, b.SetPassword("svc.roundtrip", "acct", []byte("s3cr3t")))
	t.Cleanup(func() { _ = b.DeletePassword("svc.roundtrip", "acct") })

	got, err := b.GetPassword("svc.roundtrip", "acct")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cr3t"), got)
}

func testGetMissing(t *testing.T, h Harness) {
	b := h.New(t)

	_, err := b.GetPassword("svc.missing", "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrPasswordRetrieval)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	var retrievalErr *backend.PasswordRetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, b.ID(), retrievalErr.Backend)
	assert.Equal(t, "svc.missing", retrievalErr.Service)
	assert.Equal(t, "nobody", retrievalErr.Account)
}

func testDeleteRemovesVisibility(t *testing.T, h Harness) {
	b := h.New(t)

	require.NoError(t, b.SetPassword("svc.delete", "acct", []byte("gone soon")))
	require.NoError(t, b.DeletePassword("svc.delete", "acct"))

	_, err := b.GetPassword("svc.delete", "acct")
	assert.ErrorIs(t, err, backend.ErrPasswordRetrieval)
}

func testDeleteMissing(t *testing.T, h Harness) {
	b := h.New(t)

	err := b.DeletePassword("svc.delete-missing", "nobody")
	if !h.DeleteMissingFails {
		assert.NoError(t, err)
		return
	}

	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrPasswordSave)

	var saveErr *backend.PasswordSaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, backend.OpDelete, saveErr.Op)
}

func testOverwrite(t *testing.T, h Harness) {
	b := h.New(t)
	t.Cleanup(func() { _ = b.DeletePassword("svc.overwrite", "acct") })

	require.NoError(t, b.SetPassword("svc.overwrite", "acct", []byte("first")))
	require.NoError(t, b.SetPassword("svc.overwrite", "acct", []byte("second")))

	got, err := b.GetPassword("svc.overwrite", "acct")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	// A repeated identical write leaves the store unchanged.
	require.NoError(t, b.SetPassword("svc.overwrite", "acct", []byte("second")))
	got, err = b.GetPassword("svc.overwrite", "acct")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func testDistinctAccounts(t *testing.T, h Harness) {
	b := h.New(t)
	t.Cleanup(func() {
		_ = b.DeletePassword("svc.distinct", "alice")
		_ = b.DeletePassword("svc.distinct", "bob")
	})

	require.NoError(t, b.SetPassword("svc.distinct", "alice", []byte("alice-pw")))
	require.NoError(t, b.SetPassword("svc.distinct", "bob", []byte("bob-pw")))

	got, err := b.GetPassword("svc.distinct", "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("alice-pw"), got)

	got, err = b.GetPassword("svc.distinct", "bob")
	require.NoError(t, err)
	assert.Equal(t, []byte("bob-pw"), got)

	require.NoError(t, b.DeletePassword("svc.distinct", "alice"))
	_, err = b.GetPassword("svc.distinct", "bob")
	assert.NoError(t, err, "deleting one account must not affect another")
}

func testEmptyKey(t *testing.T, h Harness) {
	b := h.New(t)

	_, err := b.GetPassword("", "acct")
	assert.ErrorIs(t, err, backend.ErrPasswordRetrieval)
	assert.ErrorIs(t, err, backend.ErrEmptyKey)

	err = b.SetPassword("svc", "", []byte("x"))
	assert.ErrorIs(t, err, backend.ErrPasswordSave)
	assert.ErrorIs(t, err, backend.ErrEmptyKey)

	err = b.DeletePassword("", "")
	assert.ErrorIs(t, err, backend.ErrPasswordSave)
	assert.ErrorIs(t, err, backend.ErrEmptyKey)
}

func testUnicode(t *testing.T, h Harness) {
	b := h.New(t)
	t.Cleanup(func() { _ = b.DeletePassword("svc.unicode", "usér") })

	secret := []byte("pässwörd ✓ 🔑")
	require.NoError(t, b.SetPassword("svc.unicode", "usér", secret))

	got, err := b.GetPassword("svc.unicode", "usér")
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func testPasswordFlow(t *testing.T, h Harness) {
	b := h.New(t)

	_ = b.DeletePassword(ScenarioService, ScenarioAccount)
	_, err := b.GetPassword(ScenarioService, ScenarioAccount)
	require.Error(t, err, "entry %q must not exist before the flow runs", ScenarioService)

	require.NoError(t, b.SetPassword(ScenarioService, ScenarioAccount, []byte(ScenarioPassword)))

	got, err := b.GetPassword(ScenarioService, ScenarioAccount)
	require.NoError(t, err)
	assert.Equal(t, ScenarioPassword, string(got))

	require.NoError(t, b.DeletePassword(ScenarioService, ScenarioAccount))

	_, err = b.GetPassword(ScenarioService, ScenarioAccount)
	assert.ErrorIs(t, err, backend.ErrPasswordRetrieval)
}
