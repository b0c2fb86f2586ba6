package fileserver

import (
	"io"
	"net"
	"net/http"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loopback = netip.AddrPortFrom(netip.AddrFrom4([4]byte{127, 0, 0, 1}), 0)

func startServer(t *testing.T, options ...Option) *Server {
	t.Helper()
	options = append([]Option{WithListen(loopback), WithRequestLogger(nil)}, options...)
	server, err := NewServer(options...)
	require.NoError(t, err)
	require.NoError(t, server.Start())
	t.Cleanup(func() { server.Close() })
	return server
}

func TestNewServerDefaults(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)

	dir, err := ExecutableDir()
	require.NoError(t, err)
	assert.Equal(t, dir, server.Root())
	assert.Equal(t, ":8000", server.listenAddress())
	assert.True(t, server.listing)
	assert.Nil(t, server.Addr())
}

func TestNewServerInvalidRoot(t *testing.T) {
	_, err := NewServer(WithRoot(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewServer(WithRoot(file))
	assert.Error(t, err)
}

func TestServerServes(t *testing.T) {
	server := startServer(t, WithRoot(newTestRoot(t)))
	url := "http://" + server.Addr().String()

	resp, err := http.Get(url + "/hello.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello, world\n", string(body))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(url + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "GET, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestServerIsolatedInstances(t *testing.T) {
	first := startServer(t, WithRoot(newTestRoot(t)))
	otherRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(otherRoot, "hello.txt"), []byte("other\n"), 0o644))
	second := startServer(t, WithRoot(otherRoot))

	assert.NotEqual(t, first.Addr().String(), second.Addr().String())

	resp, err := http.Get("http://" + second.Addr().String() + "/hello.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "other\n", string(body))
}

func TestServerStartTwice(t *testing.T) {
	server := startServer(t, WithRoot(newTestRoot(t)))
	assert.Error(t, server.Start())
}

func TestServerBindFailure(t *testing.T) {
	first := startServer(t, WithRoot(newTestRoot(t)))
	taken, err := netip.ParseAddrPort(first.Addr().String())
	require.NoError(t, err)

	second, err := NewServer(WithRoot(t.TempDir()), WithListen(taken), WithRequestLogger(nil))
	require.NoError(t, err)
	assert.Error(t, second.Start())
}

func TestServerClose(t *testing.T) {
	server, err := NewServer(WithRoot(newTestRoot(t)), WithListen(loopback), WithRequestLogger(nil))
	require.NoError(t, err)
	require.NoError(t, server.Start())
	addr := server.Addr().String()

	done := make(chan error, 1)
	go func() { done <- server.Close() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(DefaultShutdownTimeout):
		t.Fatal("close did not return")
	}

	_, err = net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)

	assert.NoError(t, server.Close())
	assert.Error(t, server.Start())
}

func TestServerCloseBeforeStart(t *testing.T) {
	server, err := NewServer(WithRoot(t.TempDir()), WithRequestLogger(nil))
	require.NoError(t, err)
	assert.NoError(t, server.Close())
}

func TestListenAddress(t *testing.T) {
	server := &Server{bind: netip.AddrPortFrom(netip.Addr{}, 8080)}
	assert.Equal(t, ":8080", server.listenAddress())

	server.bind = netip.MustParseAddrPort("[::1]:8080")
	assert.Equal(t, "[::1]:8080", server.listenAddress())
}

type blockingLogger struct {
	entered chan struct{}
	release chan struct{}
}

func (l *blockingLogger) LogRequest(*http.Request, int, int64) {
	l.entered <- struct{}{}
	<-l.release
}

func TestServerAddrDuringClose(t *testing.T) {
	blocking := &blockingLogger{entered: make(chan struct{}, 1), release: make(chan struct{})}
	server, err := NewServer(WithRoot(newTestRoot(t)), WithListen(loopback), WithRequestLogger(blocking))
	require.NoError(t, err)
	require.NoError(t, server.Start())
	addr := server.Addr().String()

	go func() {
		resp, err := http.Get("http://" + addr + "/hello.txt")
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-blocking.entered

	closed := make(chan error, 1)
	go func() { closed <- server.Close() }()
	time.Sleep(50 * time.Millisecond)

	got := make(chan net.Addr, 1)
	go func() { got <- server.Addr() }()
	select {
	case a := <-got:
		assert.Equal(t, addr, a.String())
	case <-time.After(time.Second):
		t.Fatal("Addr blocked while the server was shutting down")
	}
	select {
	case <-closed:
		t.Fatal("close returned before the in-flight request finished")
	default:
	}

	close(blocking.release)
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(DefaultShutdownTimeout):
		t.Fatal("close did not return")
	}
}
