package keyring

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/systmms/dskeyring/internal/backends"
	"github.com/systmms/dskeyring/internal/logging"
	"github.com/systmms/dskeyring/internal/metrics"
)

// Option configures a Keyring.
type Option func(*config)

type config struct {
	logger       *logging.Logger
	metrics      *metrics.Recorder
	keyStorePath string
	descriptors  []backends.Descriptor
	extra        []backends.Descriptor
	backendOpts  []backends.Option
}

func newConfig(opts []Option) config {
	cfg := config{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c config) registry() *backends.Registry {
	var r *backends.Registry
	if c.descriptors != nil {
		r = backends.NewRegistry(c.logger, c.descriptors)
	} else {
		r = backends.NewDefaultRegistry(c.logger, c.backendOpts...)
	}
	for _, d := range c.extra {
		r.Register(d)
	}
	return r
}

// WithLogger sets the logger used for debug output. Secrets are never
// logged.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithZapLogger routes debug output to an existing zap logger.
func WithZapLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = logging.FromZap(l)
		}
	}
}

// WithMetrics records operation counts and latencies on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.metrics = metrics.NewRecorder(reg)
	}
}

// WithRecorder records operations on an existing recorder.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(c *config) {
		c.metrics = rec
	}
}

// WithKeyStorePath sets the key store path on the backend after creation.
func WithKeyStorePath(path string) Option {
	return func(c *config) {
		c.keyStorePath = path
	}
}

// WithDescriptors replaces the built-in backend list used by Create,
// CreateWithBackend and SupportedBackends.
func WithDescriptors(descriptors ...backends.Descriptor) Option {
	return func(c *config) {
		c.descriptors = append([]backends.Descriptor(nil), descriptors...)
	}
}

// WithPlatform overrides how the built-in backends probe the platform.
func WithPlatform(opts ...backends.Option) Option {
	return func(c *config) {
		c.backendOpts = append(c.backendOpts, opts...)
	}
}

// WithBackends adds custom backends to the selection list. A descriptor with
// a built-in ID replaces that backend in place; new IDs are tried after the
// built-in stores and before UnencryptedMemory.
func WithBackends(descriptors ...backends.Descriptor) Option {
	return func(c *config) {
		c.extra = append(c.extra, descriptors...)
	}
}
