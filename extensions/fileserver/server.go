package fileserver

import (
	"context"
	"errors"
	"io"
	stdlog "log"
	"net"
	"net/http"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sagernet/sing-devserver/extensions/log"
	"github.com/sagernet/sing/common"
	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPort            = 8000
	DefaultShutdownTimeout = 5 * time.Second
)

var logger = log.NewLogger("fileserver")

type Server struct {
	bind            netip.AddrPort
	root            string
	listing         bool
	logger          RequestLogger
	shutdownTimeout time.Duration
	handler         http.Handler

	access      sync.Mutex
	listener    net.Listener
	httpServer  *http.Server
	errorWriter io.Closer
	closed      bool
}

func NewServer(options ...Option) (*Server, error) {
	s := &Server{
		bind:            netip.AddrPortFrom(netip.Addr{}, DefaultPort),
		listing:         true,
		logger:          NewAccessLogger(log.NewAccessLogger(os.Stdout)),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, option := range options {
		option(s)
	}

	if s.root == "" {
		root, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		s.root = root
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return nil, E.Cause(err, "resolve root ", s.root)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, E.Cause(err, "stat root")
	}
	if !info.IsDir() {
		return nil, E.New("root is not a directory: ", root)
	}
	s.root = root

	var fs http.FileSystem = http.Dir(root)
	if !s.listing {
		fs = noListingFileSystem{fs}
	}
	s.handler = NewHandler(fs, s.logger)
	return s, nil
}

// ExecutableDir returns the directory of the running executable with
// symlinks resolved.
func ExecutableDir() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", E.Cause(err, "locate executable")
	}
	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return "", E.Cause(err, "resolve executable")
	}
	return filepath.Dir(executable), nil
}

func (s *Server) Root() string {
	return s.root
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.access.Lock()
	defer s.access.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.access.Lock()
	defer s.access.Unlock()
	if s.closed {
		return E.New("server closed")
	}
	if s.listener != nil {
		return E.New("server already started")
	}

	address := s.listenAddress()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return E.Cause(err, "listen ", address)
	}
	errorWriter := logger.WriterLevel(logrus.WarnLevel)
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 30 * time.Second,
		ErrorLog:          stdlog.New(errorWriter, "", 0),
	}
	s.listener = listener
	s.httpServer = httpServer
	s.errorWriter = errorWriter

	go func() {
		err := httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !E.IsClosed(err) {
			logger.Error(E.Cause(err, "serve"))
		}
	}()
	return nil
}

// Close stops accepting connections and waits up to the shutdown timeout
// for in-flight responses before dropping them.
func (s *Server) Close() error {
	s.access.Lock()
	if s.closed {
		s.access.Unlock()
		return nil
	}
	s.closed = true
	httpServer, errorWriter := s.httpServer, s.errorWriter
	s.access.Unlock()
	if httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("shutdown timed out, closing remaining connections")
		err = httpServer.Close()
	}
	common.Close(errorWriter)
	return err
}

// listenAddress leaves the host empty when no address is set, so the
// listener accepts on every interface of either family.
func (s *Server) listenAddress() string {
	if !s.bind.Addr().IsValid() {
		return net.JoinHostPort("", strconv.Itoa(int(s.bind.Port())))
	}
	return s.bind.String()
}
