package keyring

import (
	"errors"
	"time"

	"github.com/systmms/dskeyring/internal/logging"
	"github.com/systmms/dskeyring/internal/metrics"
	"github.com/systmms/dskeyring/internal/secure"
	"github.com/systmms/dskeyring/pkg/backend"
)

// Keyring forwards credential operations to a single backend.
type Keyring struct {
	backend backend.Backend
	logger  *logging.Logger
	metrics *metrics.Recorder
}

// Create selects the highest-priority supported backend. It only fails if
// no backend at all is usable, which cannot happen with the built-in list
// because UnencryptedMemory is supported everywhere.
func Create(opts ...Option) (*Keyring, error) {
	return create("", opts)
}

// CreateWithBackend uses the backend with the given ID. It returns a
// *backend.BackendNotSupportedError if the ID is unknown or the backend
// cannot be used here; it never falls back to another backend.
func CreateWithBackend(id backend.ID, opts ...Option) (*Keyring, error) {
	if id == "" {
		return nil, backend.NotSupported("", "empty backend id", nil)
	}
	return create(id, opts)
}

// New wraps b.
func New(b backend.Backend, opts ...Option) *Keyring {
	cfg := newConfig(opts)
	return newKeyring(b, cfg)
}

// SupportedBackends returns the IDs of the built-in backends usable on this
// platform, in auto-detection order.
func SupportedBackends(opts ...Option) []backend.ID {
	cfg := newConfig(opts)
	return cfg.registry().Supported()
}

func create(id backend.ID, opts []Option) (*Keyring, error) {
	cfg := newConfig(opts)

	start := time.Now()
	b, err := cfg.registry().Select(id)
	if err != nil {
		cfg.metrics.Observe(id, metrics.OpSelect, start, err)
		return nil, err
	}
	cfg.metrics.Observe(b.ID(), metrics.OpSelect, start, nil)

	return newKeyring(b, cfg), nil
}

func newKeyring(b backend.Backend, cfg config) *Keyring {
	if cfg.keyStorePath != "" {
		b.SetKeyStorePath(cfg.keyStorePath)
	}
	return &Keyring{
		backend: b,
		logger:  cfg.logger.Named(b.ID().String()),
		metrics: cfg.metrics,
	}
}

// GetPassword returns the password stored for (service, account).
func (k *Keyring) GetPassword(service, account string) (string, error) {
	start := time.Now()
	secret, err := k.backend.GetPassword(service, account)
	k.observe(metrics.OpGet, start, service, account, "", err)
	if err != nil {
		return "", err
	}
	defer secure.Wipe(secret)

	return string(secret), nil
}

// SetPassword stores password for (service, account), replacing any
// existing value.
func (k *Keyring) SetPassword(service, account, password string) error {
	secret := []byte(password)
	defer secure.Wipe(secret)

	start := time.Now()
	err := k.backend.SetPassword(service, account, secret)
	k.observe(metrics.OpSet, start, service, account, password, err)
	return err
}

// DeletePassword removes the entry for (service, account).
func (k *Keyring) DeletePassword(service, account string) error {
	start := time.Now()
	err := k.backend.DeletePassword(service, account)
	k.observe(metrics.OpDelete, start, service, account, "", err)
	return err
}

// Describe returns the metadata of the entry for (service, account). It
// returns ErrDescribeUnsupported if the backend keeps no metadata.
func (k *Keyring) Describe(service, account string) (backend.Credential, error) {
	d, ok := k.backend.(backend.Describer)
	if !ok {
		return backend.Credential{}, ErrDescribeUnsupported
	}
	return d.Describe(service, account)
}

// ErrDescribeUnsupported is returned by Describe for backends without
// metadata.
var ErrDescribeUnsupported = errors.New("backend does not expose credential metadata")

// KeyStorePath returns the backend's key store path, or "" if none is set.
func (k *Keyring) KeyStorePath() string {
	return k.backend.KeyStorePath()
}

// SetKeyStorePath sets the backend's key store path. It has no effect on
// backends that do not require one.
func (k *Keyring) SetKeyStorePath(path string) {
	k.backend.SetKeyStorePath(path)
}

// KeyStorePathRequired reports whether the backend needs a key store path.
func (k *Keyring) KeyStorePathRequired() bool {
	return k.backend.KeyStorePathRequired()
}

// BackendID returns the ID of the wrapped backend.
func (k *Keyring) BackendID() backend.ID {
	return k.backend.ID()
}

// Backend returns the wrapped backend.
func (k *Keyring) Backend() backend.Backend {
	return k.backend
}

// observe records the call and logs it at debug level. A non-empty password
// is attached redacted and scrubbed from native error text.
func (k *Keyring) observe(op string, start time.Time, service, account, password string, err error) {
	k.metrics.Observe(k.backend.ID(), op, start, err)
	if !k.logger.DebugEnabled() {
		return
	}

	logger := k.logger
	if password != "" {
		logger = logger.With("password", logging.Secret(password))
	}
	if err != nil {
		logger.Debug("%s %s/%s failed: %s", op, service, account, logging.Redact(err.Error(), []string{password}))
		return
	}
	logger.Debug("%s %s/%s ok", op, service, account)
}
