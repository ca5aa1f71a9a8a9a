package keyring

import (
	"github.com/systmms/dskeyring/pkg/backend"
)

// BackendInfo describes one registered backend as probed on this platform.
type BackendInfo struct {
	ID                   backend.ID
	Description          string
	Supported            bool
	KeyStorePathRequired bool

	// Err is set when the backend could not be instantiated.
	Err error
}

// ListBackends instantiates every registered backend in auto-detection order
// and reports what it supports. Nothing is read from or written to any
// store.
func ListBackends(opts ...Option) []BackendInfo {
	cfg := newConfig(opts)

	descs := cfg.registry().Descriptors()
	infos := make([]BackendInfo, 0, len(descs))
	for _, d := range descs {
		info := BackendInfo{ID: d.ID, Description: d.Description}
		b, err := d.New()
		if err != nil {
			info.Err = err
			infos = append(infos, info)
			continue
		}
		info.Supported = b.IsSupported()
		info.KeyStorePathRequired = b.KeyStorePathRequired()
		infos = append(infos, info)
	}
	return infos
}
