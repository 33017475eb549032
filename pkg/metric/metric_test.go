package metric

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.RecordCommand("walk", StatusOK)
	m.RecordCommand("walk", StatusOK)
	m.RecordCommand("bogus", StatusUnknown)
	m.RecordSkips("walk", 0)
	m.RecordSkips("walk", 3)
	m.RecordWrite("left_front_rotate")
	m.ConnectionOpened("tcp")
	m.ConnectionOpened("tcp")
	m.ConnectionClosed("tcp")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("walk", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("bogus", StatusUnknown)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.JointSkips.WithLabelValues("walk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JointWrites.WithLabelValues("left_front_rotate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveConnections.WithLabelValues("tcp")))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.Metrics.RecordCommand("stand", StatusOK)
	r.Metrics.RecordManeuver("stand", 1500*time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `hexapod_commands_total{command="stand",status="ok"} 1`)
	assert.Contains(t, string(body), `hexapod_maneuver_duration_seconds_count{maneuver="stand"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
