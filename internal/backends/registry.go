package backends

import (
	"github.com/systmms/dskeyring/internal/logging"
	"github.com/systmms/dskeyring/pkg/backend"
)

// Factory creates a backend instance.
type Factory func() (backend.Backend, error)

// Descriptor names a backend and says how to build it.
type Descriptor struct {
	ID          backend.ID
	Description string
	New         Factory
}

// DefaultDescriptors returns the built-in backends in auto-detection order:
// platform stores first, weaker stores after them, and process memory last.
// The options are passed to every backend that probes its platform.
func DefaultDescriptors(opts ...Option) []Descriptor {
	return []Descriptor{
		{
			ID:          backend.OSXKeychain,
			Description: "macOS Keychain",
			New:         func() (backend.Backend, error) { return NewKeychain(opts...), nil },
		},
		{
			ID:          backend.WindowsCredentialStore,
			Description: "Windows Credential Manager",
			New:         func() (backend.Backend, error) { return NewWinCred(opts...), nil },
		},
		{
			ID:          backend.WindowsDPAPI,
			Description: "DPAPI-protected key store file (requires key store path)",
			New:         func() (backend.Backend, error) { return NewDPAPI(opts...), nil },
		},
		{
			ID:          backend.GNOMEKeyring,
			Description: "freedesktop Secret Service over D-Bus",
			New:         func() (backend.Backend, error) { return NewSecretService(opts...), nil },
		},
		{
			ID:          backend.SystemKeyring,
			Description: "host keyring through go-keyring",
			New:         func() (backend.Backend, error) { return NewSystem(opts...), nil },
		},
		{
			ID:          backend.LinuxKeyctl,
			Description: "Linux kernel user keyring (cleared on reboot)",
			New:         func() (backend.Backend, error) { return NewKeyctl(opts...), nil },
		},
		{
			ID:          backend.UnencryptedMemory,
			Description: "process memory (not persistent, not protected)",
			New:         func() (backend.Backend, error) { return NewMemory(), nil },
		},
	}
}

// Registry is an ordered set of backend descriptors with logging.
type Registry struct {
	descriptors []Descriptor
	logger      *logging.Logger
}

// NewRegistry creates a registry over descriptors. A nil logger discards
// output.
func NewRegistry(logger *logging.Logger, descriptors []Descriptor) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	descs := make([]Descriptor, len(descriptors))
	copy(descs, descriptors)
	return &Registry{descriptors: descs, logger: logger}
}

// NewDefaultRegistry creates a registry over DefaultDescriptors.
func NewDefaultRegistry(logger *logging.Logger, opts ...Option) *Registry {
	return NewRegistry(logger, DefaultDescriptors(opts...))
}

// Register adds d, replacing any descriptor with the same ID in place.
// New IDs are inserted before UnencryptedMemory so it stays last.
func (r *Registry) Register(d Descriptor) {
	for i := range r.descriptors {
		if r.descriptors[i].ID == d.ID {
			r.descriptors[i] = d
			return
		}
	}
	for i := range r.descriptors {
		if r.descriptors[i].ID == backend.UnencryptedMemory {
			r.descriptors = append(r.descriptors[:i], append([]Descriptor{d}, r.descriptors[i:]...)...)
			return
		}
	}
	r.descriptors = append(r.descriptors, d)
}

// Descriptors returns a copy of the registered descriptors in order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Select picks a backend from the registered descriptors.
//
// With a requested ID only that descriptor is considered: an unknown ID, a
// factory error or an unsupported backend is a *backend.BackendNotSupportedError
// and no other descriptor is instantiated. With an empty ID the descriptors
// are tried in order; factory errors and unsupported backends are skipped and
// the first supported backend wins.
func (r *Registry) Select(requested backend.ID) (backend.Backend, error) {
	return selectBackend(r.descriptors, requested, r.logger)
}

// Supported returns the IDs of backends that instantiate and report support,
// in priority order.
func (r *Registry) Supported() []backend.ID {
	var ids []backend.ID
	for _, d := range r.descriptors {
		b, err := d.New()
		if err != nil {
			r.logger.Debug("backend %s failed to initialize: %v", d.ID, err)
			continue
		}
		if b.IsSupported() {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

func selectBackend(descriptors []Descriptor, requested backend.ID, logger *logging.Logger) (backend.Backend, error) {
	if requested != "" {
		return selectExplicit(descriptors, requested, logger)
	}

	for _, d := range descriptors {
		b, err := d.New()
		if err != nil {
			logger.Debug("skipping backend %s: %v", d.ID, err)
			continue
		}
		if !b.IsSupported() {
			logger.Debug("skipping backend %s: not supported on this platform", d.ID)
			continue
		}
		logger.Debug("selected backend %s", b.ID())
		return b, nil
	}

	return nil, backend.NotSupported("", "no backend is supported on this platform", nil)
}

func selectExplicit(descriptors []Descriptor, requested backend.ID, logger *logging.Logger) (backend.Backend, error) {
	for _, d := range descriptors {
		if d.ID != requested {
			continue
		}

		b, err := d.New()
		if err != nil {
			return nil, backend.NotSupported(requested, "initialization failed", err)
		}
		if !b.IsSupported() {
			return nil, backend.NotSupported(requested, "not supported on this platform", nil)
		}
		logger.Debug("selected requested backend %s", requested)
		return b, nil
	}

	return nil, backend.NotSupported(requested, "unknown backend", nil)
}
