package web

import (
	"encoding/json"
	"errors"
	"image"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-suntrack/pkg/camera"
	"github.com/teslashibe/go-suntrack/pkg/tracking"
)

func scenarioResult(seq uint64) tracking.CycleResult {
	return tracking.CycleResult{
		Seq:          seq,
		Width:        100,
		Height:       100,
		Center:       image.Pt(50, 50),
		KernelRadius: 41,
		Naive: tracking.Estimate{
			Label: tracking.LabelNaive, Spot: image.Pt(80, 20), Distance: 42.43, Angle: 18,
			ActuatorErr: errors.New("servo unplugged"),
		},
		Robust:       tracking.Estimate{Label: tracking.LabelRobust, Spot: image.Pt(80, 20), Distance: 42.43, Angle: 18},
		ClassifyPath: tracking.PathRobust,
		Centered:     true,
		Message:      tracking.MessageCentered,
		Duration:     120 * time.Millisecond,
	}
}

func present(t *testing.T, s *Server, seq uint64) {
	t.Helper()
	frame := camera.Render(camera.ScenarioScene())
	defer frame.Close()
	require.NoError(t, s.Present(frame, scenarioResult(seq)))
}

func TestServer_StatusBeforeFirstCycle(t *testing.T) {
	s := NewServer("0")
	defer s.Close()
	s.SetSession("run-1")

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var st Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "run-1", st.Session)
	assert.Zero(t, st.Seq)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/api/frame.jpg", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_Present(t *testing.T) {
	s := NewServer("0")
	defer s.Close()
	s.SetSession("run-2")
	s.OnStats = func() tracking.CycleStats { return tracking.CycleStats{Cycles: 7} }

	present(t, s, 3)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))

	assert.Equal(t, "run-2", st.Session)
	assert.Equal(t, uint64(3), st.Seq)
	assert.Equal(t, 80, st.Naive.X)
	assert.Equal(t, 20, st.Naive.Y)
	assert.Equal(t, 18.0, st.Robust.Angle)
	assert.Equal(t, "servo unplugged", st.Naive.ActuatorError)
	assert.Empty(t, st.Robust.ActuatorError)
	assert.True(t, st.Centered)
	assert.Equal(t, tracking.MessageCentered, st.Message)
	assert.Equal(t, "robust", st.ClassifyPath)
	assert.InDelta(t, 120.0, st.CycleMillis, 1e-9)
	require.NotNil(t, st.Stats)
	assert.Equal(t, uint64(7), st.Stats.Cycles)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/api/frame.jpg", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, body[:2])
}

func TestServer_Stop(t *testing.T) {
	s := NewServer("0")
	defer s.Close()

	assert.False(t, s.QuitRequested())

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/stop", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	assert.True(t, s.QuitRequested())
	assert.True(t, s.Status().StopRequested)
}

func TestServer_WebSocketRequiresUpgrade(t *testing.T) {
	s := NewServer("0")
	defer s.Close()

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/ws/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestServer_StatusWebSocket(t *testing.T) {
	s := NewServer("0")
	defer s.Close()
	s.SetSession("run-ws")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.Serve(ln)

	url := "ws://" + ln.Addr().String() + "/ws/status"
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// Current status on connect.
	var first Status
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "run-ws", first.Session)
	assert.Zero(t, first.Seq)

	// The hub registers the client asynchronously.
	require.Eventually(t, func() bool {
		return s.GetStatusHub().ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	present(t, s, 1)

	var got Status
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(1), got.Seq)
	assert.Equal(t, 80, got.Robust.X)
}

func TestServer_CloseIdempotent(t *testing.T) {
	s := NewServer("0")
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Eventually(t, func() bool {
		return !s.GetStatusHub().IsRunning() && !s.GetCameraHub().IsRunning()
	}, 2*time.Second, 10*time.Millisecond)
}
