// Package web provides a real-time dashboard for the servo loop.
package web

import (
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-suntrack/internal/log"
	"github.com/teslashibe/go-suntrack/pkg/display"
	"github.com/teslashibe/go-suntrack/pkg/hub"
	"github.com/teslashibe/go-suntrack/pkg/tracking"
)

// EstimateView is one estimator path as shown on the dashboard.
type EstimateView struct {
	X             int     `json:"x"`
	Y             int     `json:"y"`
	Distance      float64 `json:"distance"`
	Angle         float64 `json:"angle"`
	ActuatorError string  `json:"actuator_error,omitempty"`
}

// Status represents the current loop state for the dashboard
type Status struct {
	Session       string               `json:"session"`
	Seq           uint64               `json:"seq"`
	Width         int                  `json:"width"`
	Height        int                  `json:"height"`
	CenterX       int                  `json:"center_x"`
	CenterY       int                  `json:"center_y"`
	Naive         EstimateView         `json:"naive"`
	Robust        EstimateView         `json:"robust"`
	ClassifyPath  string               `json:"classify_path"`
	Centered      bool                 `json:"centered"`
	Message       string               `json:"message"`
	CycleMillis   float64              `json:"cycle_ms"`
	Stats         *tracking.CycleStats `json:"stats,omitempty"`
	StopRequested bool                 `json:"stop_requested"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func newEstimateView(e tracking.Estimate) EstimateView {
	v := EstimateView{X: e.Spot.X, Y: e.Spot.Y, Distance: e.Distance, Angle: e.Angle}
	if e.ActuatorErr != nil {
		v.ActuatorError = e.ActuatorErr.Error()
	}
	return v
}

// Server is the web dashboard server. It is also a tracking.Presenter:
// every cycle updates the status, the latest annotated frame and the
// websocket feeds, and POST /api/stop asks the loop to quit.
type Server struct {
	app    *fiber.App
	port   string
	style  display.Style
	logger *slog.Logger

	// State
	status   Status
	frame    []byte
	stateMu  sync.RWMutex
	stopping atomic.Bool

	// Hubs for websocket broadcast (thread-safe!)
	statusHub *hub.Hub
	cameraHub *hub.Hub

	closeOnce sync.Once

	// OnStats supplies cycle statistics for the status payload
	OnStats func() tracking.CycleStats
}

var _ tracking.Presenter = (*Server)(nil)

// NewServer creates a new web dashboard server
func NewServer(port string) *Server {
	s := &Server{
		port:      port,
		style:     display.DefaultStyle(),
		logger:    log.Component("web"),
		statusHub: hub.New("status"),
		cameraHub: hub.NewWithBuffer("camera", 2),
	}

	app := fiber.New(fiber.Config{
		AppName:               "suntrack dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/frame.jpg", s.handleFrame)
	api.Post("/stop", s.handleStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	go s.statusHub.Run()
	go s.cameraHub.Run()

	s.app = app
	return s
}

// SetSession tags the status payload with the loop's run id.
func (s *Server) SetSession(id string) {
	s.stateMu.Lock()
	s.status.Session = id
	s.stateMu.Unlock()
}

// Start starts the web server
func (s *Server) Start() error {
	s.logger.Info("web dashboard", "url", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Warn("web server error", "error", err)
		}
	}()
}

// Present records the cycle and pushes it to websocket clients.
func (s *Server) Present(frame gocv.Mat, res tracking.CycleResult) error {
	var jpeg []byte
	img, err := display.AnnotateRobust(frame, res, s.style)
	if err == nil {
		jpeg, err = display.EncodeJPEG(img)
		img.Close()
	}

	s.stateMu.Lock()
	s.status = s.snapshot(res)
	if jpeg != nil {
		s.frame = jpeg
	}
	status := s.status // Copy for broadcast
	s.stateMu.Unlock()

	// Broadcast via hub (thread-safe!)
	s.statusHub.BroadcastJSON(status)
	if jpeg != nil && s.cameraHub.ClientCount() > 0 {
		s.cameraHub.BroadcastBinary(jpeg)
	}
	return err
}

// snapshot builds the status for res. Caller holds stateMu.
func (s *Server) snapshot(res tracking.CycleResult) Status {
	st := Status{
		Session:       s.status.Session,
		Seq:           res.Seq,
		Width:         res.Width,
		Height:        res.Height,
		CenterX:       res.Center.X,
		CenterY:       res.Center.Y,
		Naive:         newEstimateView(res.Naive),
		Robust:        newEstimateView(res.Robust),
		ClassifyPath:  string(res.ClassifyPath),
		Centered:      res.Centered,
		Message:       res.Message,
		CycleMillis:   float64(res.Duration) / float64(time.Millisecond),
		StopRequested: s.stopping.Load(),
		UpdatedAt:     time.Now(),
	}
	if s.OnStats != nil {
		stats := s.OnStats()
		st.Stats = &stats
	}
	return st
}

// QuitRequested reports whether a client asked the loop to stop.
func (s *Server) QuitRequested() bool {
	return s.stopping.Load()
}

// RequestStop asks the loop to stop at the end of the current cycle.
func (s *Server) RequestStop() {
	if !s.stopping.Swap(true) {
		s.logger.Info("stop requested from dashboard")
	}
	s.stateMu.Lock()
	s.status.StopRequested = true
	status := s.status
	s.stateMu.Unlock()
	s.statusHub.BroadcastJSON(status)
}

// Status returns a copy of the current status.
func (s *Server) Status() Status {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.status
}

// Frame returns the latest annotated JPEG, or nil before the first cycle.
func (s *Server) Frame() []byte {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.frame
}

// GetStatusHub returns the status hub for external use
func (s *Server) GetStatusHub() *hub.Hub {
	return s.statusHub
}

// GetCameraHub returns the camera hub for external use
func (s *Server) GetCameraHub() *hub.Hub {
	return s.cameraHub
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Close stops the hubs and the server. Safe to call more than once.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.statusHub.Stop()
		s.cameraHub.Stop()
		err = s.app.ShutdownWithTimeout(2 * time.Second)
	})
	return err
}
