// Package server exposes the command dispatcher over TCP, WebSocket, NATS
// and HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/gwillem/hexapod/pkg/metric"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "server",
})

// Dispatcher answers one command line with one response line.
type Dispatcher interface {
	Dispatch(ctx context.Context, line string) string
}

// NewMux serves the WebSocket endpoint on /ws, metrics on /metrics and a
// liveness probe on /healthz. reg may be nil.
func NewMux(d Dispatcher, reg *metric.Registry) *http.ServeMux {
	var m *metric.Metrics
	if reg != nil {
		m = reg.Metrics
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebSocketHandler(d, m))
	if reg != nil {
		mux.Handle("/metrics", reg.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	return mux
}

func opened(m *metric.Metrics, transport string) {
	if m != nil {
		m.ConnectionOpened(transport)
	}
}

func closed(m *metric.Metrics, transport string) {
	if m != nil {
		m.ConnectionClosed(transport)
	}
}
