package backends

import (
	"os"
	"runtime"
)

// Option configures how a backend probes its platform.
type Option func(*settings)

type settings struct {
	goos   string
	getenv func(string) string
}

func newSettings(opts []Option) settings {
	s := settings{
		goos:   runtime.GOOS,
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithGOOS overrides the operating system name used by IsSupported.
func WithGOOS(goos string) Option {
	return func(s *settings) {
		s.goos = goos
	}
}

// WithGetenv overrides the environment lookup used by IsSupported.
func WithGetenv(getenv func(string) string) Option {
	return func(s *settings) {
		if getenv != nil {
			s.getenv = getenv
		}
	}
}

// isUnixDesktop reports whether goos is an OS where a Secret Service daemon
// is the native credential store.
func isUnixDesktop(goos string) bool {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return true
	}
	return false
}
