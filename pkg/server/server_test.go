package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/hexapod/pkg/command"
	"github.com/gwillem/hexapod/pkg/gait"
	"github.com/gwillem/hexapod/pkg/metric"
	"github.com/gwillem/hexapod/pkg/robot/robottest"
)

type echoDispatcher struct {
	mu    sync.Mutex
	lines []string
}

func (e *echoDispatcher) Dispatch(_ context.Context, line string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = append(e.lines, line)
	return "got " + line
}

func (e *echoDispatcher) received() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.lines...)
}

func newDispatcher(t *testing.T) *command.Dispatcher {
	t.Helper()
	f := robottest.New(t, robottest.ReducedConfig())
	g, err := gait.New(f.Robot, gait.DefaultOptions())
	require.NoError(t, err)
	return command.New(g, gait.NewEngine(f.Robot, gait.WithClock(gait.NewSimClock())))
}

func TestMux_WebSocket(t *testing.T) {
	reg := metric.NewRegistry()
	srv := httptest.NewServer(NewMux(newDispatcher(t), reg))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, tt := range []struct{ send, want string }{
		{"turn_left 2", "Turning Left 2 times"},
		{"bogus_token", "Command not found!"},
		{"walk 1 2", "ERROR: invalid command format"},
	} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.send)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(data))
	}
}

func TestMux_HealthAndMetrics(t *testing.T) {
	reg := metric.NewRegistry()
	reg.Metrics.RecordCommand("stand", metric.StatusOK)
	srv := httptest.NewServer(NewMux(&echoDispatcher{}, reg))
	defer srv.Close()

	get := func(path string) string {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	assert.Equal(t, "ok\n", get("/healthz"))
	assert.Contains(t, get("/metrics"), `hexapod_commands_total{command="stand",status="ok"} 1`)
}

func TestMux_WithoutRegistry(t *testing.T) {
	srv := httptest.NewServer(NewMux(&echoDispatcher{}, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
