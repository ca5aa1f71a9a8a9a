package keyring_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/systmms/dskeyring/internal/backends"
	"github.com/systmms/dskeyring/internal/backends/fakes"
	"github.com/systmms/dskeyring/internal/metrics"
	"github.com/systmms/dskeyring/pkg/backend"
	"github.com/systmms/dskeyring/pkg/backend/backendtest"
	"github.com/systmms/dskeyring/pkg/keyring"
)

// headless is a platform where only process memory is usable.
func headless() keyring.Option {
	return keyring.WithPlatform(backends.WithGOOS("plan9"), backends.WithGetenv(func(string) string { return "" }))
}

func TestPasswordScenario(t *testing.T) {
	t.Parallel()

	kr := keyring.New(backends.NewMemory())

	require.NoError(t, kr.SetPassword(backendtest.ScenarioService, backendtest.ScenarioAccount, backendtest.ScenarioPassword))

	got, err := kr.GetPassword(backendtest.ScenarioService, backendtest.ScenarioAccount)
	require.NoError(t, err)
	assert.Equal(t, backendtest.ScenarioPassword, got)

	require.NoError(t, kr.DeletePassword(backendtest.ScenarioService, backendtest.ScenarioAccount))

	_, err = kr.GetPassword(backendtest.ScenarioService, backendtest.ScenarioAccount)
	assert.ErrorIs(t, err, backend.ErrPasswordRetrieval)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestOverwriteIsIdempotent(t *testing.T) {
	t.Parallel()

	kr := keyring.New(backends.NewMemory())
	require.NoError(t, kr.SetPassword("svc", "acct", "first"))
	require.NoError(t, kr.SetPassword("svc", "acct", "second"))
	require.NoError(t, kr.SetPassword("svc", "acct", "second"))

	got, err := kr.GetPassword("svc", "acct")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestCreateFallsBackToMemory(t *testing.T) {
	t.Parallel()

	kr, err := keyring.Create(headless())
	require.NoError(t, err)
	assert.Equal(t, backend.UnencryptedMemory, kr.BackendID())
}

func TestCreatePicksFirstSupported(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeKernelKeyring()
	kr, err := keyring.Create(keyring.WithDescriptors(
		backends.Descriptor{
			ID: backend.OSXKeychain,
			New: func() (backend.Backend, error) {
				return backends.NewKeychainWithClient(fakes.NewFakeKeychainClient(), backends.WithGOOS("linux")), nil
			},
		},
		backends.Descriptor{
			ID: backend.LinuxKeyctl,
			New: func() (backend.Backend, error) {
				return backends.NewKeyctlWithClient(client, backends.WithGOOS("linux")), nil
			},
		},
		backends.Descriptor{
			ID:  backend.UnencryptedMemory,
			New: func() (backend.Backend, error) { return backends.NewMemory(), nil },
		},
	))
	require.NoError(t, err)
	assert.Equal(t, backend.LinuxKeyctl, kr.BackendID())

	require.NoError(t, kr.SetPassword("svc", "acct", "pw"))
	assert.Equal(t, []string{"dskeyring:svc:acct"}, client.Descriptions())
}

func TestCreateWithBackend(t *testing.T) {
	t.Parallel()

	t.Run("supported", func(t *testing.T) {
		t.Parallel()
		kr, err := keyring.CreateWithBackend(backend.UnencryptedMemory, headless())
		require.NoError(t, err)
		assert.Equal(t, backend.UnencryptedMemory, kr.BackendID())
	})

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()
		kr, err := keyring.CreateWithBackend(backend.OSXKeychain, headless())
		assert.Nil(t, kr)
		assert.ErrorIs(t, err, backend.ErrBackendNotSupported)

		var nsErr *backend.BackendNotSupportedError
		require.ErrorAs(t, err, &nsErr)
		assert.Equal(t, backend.OSXKeychain, nsErr.ID)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		_, err := keyring.CreateWithBackend("Floppy", headless())
		assert.ErrorIs(t, err, backend.ErrBackendNotSupported)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := keyring.CreateWithBackend("", headless())
		assert.ErrorIs(t, err, backend.ErrBackendNotSupported)
	})
}

func TestSupportedBackends(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []backend.ID{backend.UnencryptedMemory}, keyring.SupportedBackends(headless()))

	windows := keyring.WithPlatform(backends.WithGOOS("windows"))
	ids := keyring.SupportedBackends(windows)
	assert.Contains(t, ids, backend.WindowsCredentialStore)
	assert.Contains(t, ids, backend.WindowsDPAPI)
	assert.Equal(t, backend.UnencryptedMemory, ids[len(ids)-1])
}

func TestKeyStorePath(t *testing.T) {
	t.Parallel()

	t.Run("not_required_is_noop", func(t *testing.T) {
		t.Parallel()
		kr := keyring.New(backends.NewMemory())
		require.False(t, kr.KeyStorePathRequired())

		require.NoError(t, kr.SetPassword("svc", "acct", "pw"))
		kr.SetKeyStorePath("/nonexistent/ignored")
		assert.Equal(t, "/nonexistent/ignored", kr.KeyStorePath())

		got, err := kr.GetPassword("svc", "acct")
		require.NoError(t, err)
		assert.Equal(t, "pw", got)
	})

	t.Run("required", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "store")
		b := backends.NewDPAPIWithProtector(fakes.NewFakeDataProtector(), backends.WithGOOS("windows"))

		kr := keyring.New(b)
		require.True(t, kr.KeyStorePathRequired())
		assert.Empty(t, kr.KeyStorePath())

		err := kr.SetPassword("svc", "acct", "pw")
		assert.ErrorIs(t, err, backend.ErrKeyStorePathRequired)

		kr = keyring.New(b, keyring.WithKeyStorePath(path))
		assert.Equal(t, path, kr.KeyStorePath())
		require.NoError(t, kr.SetPassword("svc", "acct", "pw"))
	})
}

func TestErrorsPassThroughUnchanged(t *testing.T) {
	t.Parallel()

	native := errors.New("native failure")
	client := fakes.NewFakeKernelKeyring()
	client.ReadErr = native
	client.AddErr = native
	client.RevokeErr = native
	b := backends.NewKeyctlWithClient(client, backends.WithGOOS("linux"))
	kr := keyring.New(b)

	_, err := kr.GetPassword("svc", "acct")
	var retrieval *backend.PasswordRetrievalError
	require.ErrorAs(t, err, &retrieval)
	assert.Equal(t, backend.LinuxKeyctl, retrieval.Backend)
	assert.ErrorIs(t, err, native)

	_, directErr := b.GetPassword("svc", "acct")
	assert.Equal(t, directErr.Error(), err.Error())

	err = kr.SetPassword("svc", "acct", "pw")
	var save *backend.PasswordSaveError
	require.ErrorAs(t, err, &save)
	assert.Equal(t, backend.OpSet, save.Op)

	err = kr.DeletePassword("svc", "acct")
	require.ErrorAs(t, err, &save)
	assert.Equal(t, backend.OpDelete, save.Op)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	kr := keyring.New(backends.NewMemory())
	require.NoError(t, kr.SetPassword("svc", "acct", "pw"))

	cred, err := kr.Describe("svc", "acct")
	require.NoError(t, err)
	assert.Equal(t, "acct", cred.Account)

	kr = keyring.New(backends.NewKeyctlWithClient(fakes.NewFakeKernelKeyring(), backends.WithGOOS("linux")))
	_, err = kr.Describe("svc", "acct")
	assert.ErrorIs(t, err, keyring.ErrDescribeUnsupported)
}

func TestMetricsAreRecorded(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	kr, err := keyring.Create(headless(), keyring.WithRecorder(rec))
	require.NoError(t, err)

	require.NoError(t, kr.SetPassword("svc", "acct", "pw"))
	_, err = kr.GetPassword("svc", "missing")
	require.Error(t, err)

	ops := rec.Operations()
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("UnencryptedMemory", metrics.OpSelect, metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("UnencryptedMemory", metrics.OpSet, metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("UnencryptedMemory", metrics.OpGet, metrics.OutcomeNotFound)))
}

func TestMetricsRegistryReusedAcrossKeyrings(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	var first, second *keyring.Keyring
	require.NotPanics(t, func() {
		var err error
		first, err = keyring.Create(headless(), keyring.WithMetrics(reg))
		require.NoError(t, err)
		second, err = keyring.Create(headless(), keyring.WithMetrics(reg))
		require.NoError(t, err)
	})

	require.NoError(t, first.SetPassword("svc", "acct", "pw"))
	require.NoError(t, second.SetPassword("svc", "acct", "pw"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != "dskeyring_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 4.0, total, "two selections and two writes")
}

func TestSecretsAreNotLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)

	kr, err := keyring.Create(headless(), keyring.WithZapLogger(zap.New(core)))
	require.NoError(t, err)
	require.NoError(t, kr.SetPassword("svc", "acct", "very-secret-value"))
	_, err = kr.GetPassword("svc", "acct")
	require.NoError(t, err)

	require.NotZero(t, logs.Len())
	assertNotLogged(t, logs, "very-secret-value")
	assert.NotZero(t, logs.FilterMessageSnippet("selected backend").Len())

	stored := logs.FilterMessageSnippet("set svc/acct ok").All()
	require.Len(t, stored, 1)
	assert.Equal(t, "[REDACTED]", stored[0].ContextMap()["password"])
}

// echoingBackend fails writes with a native error that repeats the secret.
type echoingBackend struct {
	*backends.MemoryBackend
}

func (e echoingBackend) SetPassword(service, account string, password []byte) error {
	return backend.SaveError(backend.UnencryptedMemory, backend.OpSet, service, account,
		fmt.Errorf("store rejected value %q", password))
}

func TestNativeErrorTextIsRedactedInLogs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	kr := keyring.New(echoingBackend{backends.NewMemory()}, keyring.WithZapLogger(zap.New(core)))

	err := kr.SetPassword("svc", "acct", "leaky-secret-value")
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrPasswordSave)

	failed := logs.FilterMessageSnippet("set svc/acct failed").All()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Message, "[REDACTED]")
	assertNotLogged(t, logs, "leaky-secret-value")
}

func assertNotLogged(t *testing.T, logs *observer.ObservedLogs, secret string) {
	t.Helper()
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, secret)
		for key, value := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(value), secret, key)
		}
	}
}

// teamVault is a custom store layered over a kernel keyring fake.
type teamVault struct {
	*backends.KeyctlBackend
}

func (teamVault) ID() backend.ID { return "TeamVault" }

func TestWithBackendsAddsCustomStore(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeKernelKeyring()
	custom := backends.Descriptor{
		ID:          "TeamVault",
		Description: "team vault",
		New: func() (backend.Backend, error) {
			return teamVault{backends.NewKeyctlWithClient(client, backends.WithGOOS("linux"))}, nil
		},
	}

	kr, err := keyring.CreateWithBackend("TeamVault", headless(), keyring.WithBackends(custom))
	require.NoError(t, err)
	require.NoError(t, kr.SetPassword("svc", "acct", "pw"))
	assert.Equal(t, []string{"dskeyring:svc:acct"}, client.Descriptions())

	auto, err := keyring.Create(headless(), keyring.WithBackends(custom))
	require.NoError(t, err)
	assert.Equal(t, backend.ID("TeamVault"), auto.BackendID(), "custom store is tried before memory")

	ids := keyring.SupportedBackends(headless(), keyring.WithBackends(custom))
	assert.Equal(t, []backend.ID{"TeamVault", backend.UnencryptedMemory}, ids)
}

func TestListBackends(t *testing.T) {
	t.Parallel()

	infos := keyring.ListBackends(keyring.WithPlatform(backends.WithGOOS("windows")))
	require.Len(t, infos, 7)

	byID := make(map[backend.ID]keyring.BackendInfo)
	for _, info := range infos {
		assert.NoError(t, info.Err)
		assert.NotEmpty(t, info.Description)
		byID[info.ID] = info
	}

	assert.True(t, byID[backend.WindowsCredentialStore].Supported)
	assert.True(t, byID[backend.WindowsDPAPI].KeyStorePathRequired)
	assert.False(t, byID[backend.WindowsCredentialStore].KeyStorePathRequired)
	assert.False(t, byID[backend.OSXKeychain].Supported)
	assert.True(t, byID[backend.UnencryptedMemory].Supported)
}

func TestListBackendsReportsFactoryErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	infos := keyring.ListBackends(keyring.WithDescriptors(backends.Descriptor{
		ID:  backend.LinuxKeyctl,
		New: func() (backend.Backend, error) { return nil, boom },
	}))

	require.Len(t, infos, 1)
	assert.ErrorIs(t, infos[0].Err, boom)
	assert.False(t, infos[0].Supported)
}
