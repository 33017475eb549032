package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTCP(t *testing.T, s *TCPServer) (addr string, stop func() error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	return ln.Addr().String(), func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
			return nil
		}
	}
}

func TestTCPServer_LineProtocol(t *testing.T) {
	d := &echoDispatcher{}
	addr, stop := startTCP(t, NewTCPServer(d, nil))
	defer stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("walk 2\nstand\n"))
	require.NoError(t, err)

	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "got walk 2\n", line)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "got stand\n", line)

	assert.Equal(t, []string{"walk 2", "stand"}, d.received())
}

func TestTCPServer_Dispatcher(t *testing.T) {
	addr, stop := startTCP(t, NewTCPServer(newDispatcher(t), nil))
	defer stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	r := bufio.NewReader(conn)
	for _, tt := range []struct{ send, want string }{
		{"turn_left 2", "Turning Left 2 times"},
		{"", "ERROR: invalid command format"},
		{"bogus_token", "Command not found!"},
	} {
		_, err := conn.Write([]byte(tt.send + "\n"))
		require.NoError(t, err)
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, tt.want+"\n", line)
	}
}

func TestTCPServer_IdleTimeout(t *testing.T) {
	s := NewTCPServer(&echoDispatcher{}, nil)
	s.IdleTimeout = 50 * time.Millisecond
	addr, stop := startTCP(t, s)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestTCPServer_Shutdown(t *testing.T) {
	addr, stop := startTCP(t, NewTCPServer(&echoDispatcher{}, nil))

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("sit\n"))
	require.NoError(t, err)
	_, err = bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)

	assert.NoError(t, stop())

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)
}

// lateListener hands out one connection only after it has been closed,
// the way a connection accepted during shutdown arrives.
type lateListener struct {
	closed chan struct{}
	conn   net.Conn
	served bool
}

func (l *lateListener) Accept() (net.Conn, error) {
	<-l.closed
	if l.served {
		return nil, net.ErrClosed
	}
	l.served = true
	return l.conn, nil
}

func (l *lateListener) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}

func (l *lateListener) Addr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }

func TestTCPServer_ConnAcceptedDuringShutdown(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	ln := &lateListener{closed: make(chan struct{}), conn: server}

	s := NewTCPServer(&echoDispatcher{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server waited on a connection accepted after shutdown")
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, err := client.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}
