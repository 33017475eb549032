package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gwillem/hexapod/pkg/metric"
)

// DefaultIdleTimeout closes a TCP session that sends nothing for this long.
const DefaultIdleTimeout = 300 * time.Second

// TCPServer speaks the line protocol: one command per line in, one response
// per line out. Sessions run concurrently; the dispatcher serializes them.
type TCPServer struct {
	Dispatcher  Dispatcher
	IdleTimeout time.Duration
	Metrics     *metric.Metrics

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewTCPServer creates a server with the default idle timeout.
func NewTCPServer(d Dispatcher, m *metric.Metrics) *TCPServer {
	return &TCPServer{
		Dispatcher:  d,
		IdleTimeout: DefaultIdleTimeout,
		Metrics:     m,
	}
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *TCPServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts sessions on ln until ctx is done, then closes every open
// session and waits for their handlers to return. A command that is already
// running completes first.
func (s *TCPServer) Serve(ctx context.Context, ln net.Listener) error {
	log.WithField("addr", ln.Addr().String()).Info("tcp server listening")

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		s.closeAll()
	})
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.track(conn)
		if ctx.Err() != nil {
			// Accepted after closeAll ran.
			s.untrack(conn)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handle(ctx, conn)
		}()
	}
}

func (s *TCPServer) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		s.conns = make(map[net.Conn]struct{})
	}
	s.conns[conn] = struct{}{}
}

func (s *TCPServer) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *TCPServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *TCPServer) handle(ctx context.Context, conn net.Conn) {
	logger := log.WithFields(logrus.Fields{
		"session": uuid.NewString(),
		"remote":  conn.RemoteAddr().String(),
	})
	logger.Info("client connected")
	opened(s.Metrics, "tcp")
	defer closed(s.Metrics, "tcp")

	idle := s.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	scanner := bufio.NewScanner(conn)
	for {
		conn.SetReadDeadline(time.Now().Add(idle))
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		logger.WithField("line", line).Debug("received")

		resp := s.Dispatcher.Dispatch(ctx, line)
		if _, err := conn.Write([]byte(resp + "\n")); err != nil {
			logger.WithError(err).Warn("write failed")
			return
		}
	}

	err := scanner.Err()
	var ne net.Error
	switch {
	case err == nil:
		logger.Info("client disconnected")
	case errors.As(err, &ne) && ne.Timeout():
		logger.Info("client idle, closing")
	default:
		logger.WithError(err).Debug("connection closed")
	}
}
