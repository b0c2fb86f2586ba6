package fileserver

import (
	"net/netip"
	"time"
)

type Option func(*Server)

// WithListen sets the listen address. An invalid (zero) address binds every
// interface on the given port.
func WithListen(bind netip.AddrPort) Option {
	return func(server *Server) {
		server.bind = bind
	}
}

// WithRoot sets the served directory. Empty means the directory containing
// the running executable.
func WithRoot(root string) Option {
	return func(server *Server) {
		server.root = root
	}
}

func WithListing(enabled bool) Option {
	return func(server *Server) {
		server.listing = enabled
	}
}

// WithRequestLogger replaces the stdout access log. nil disables request
// logging.
func WithRequestLogger(logger RequestLogger) Option {
	return func(server *Server) {
		server.logger = logger
	}
}

func WithShutdownTimeout(timeout time.Duration) Option {
	return func(server *Server) {
		server.shutdownTimeout = timeout
	}
}
