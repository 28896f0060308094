package suntrack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-suntrack/internal/log"
	"github.com/teslashibe/go-suntrack/pkg/camera"
	"github.com/teslashibe/go-suntrack/pkg/display"
	"github.com/teslashibe/go-suntrack/pkg/robot"
	"github.com/teslashibe/go-suntrack/pkg/tracking"
	"github.com/teslashibe/go-suntrack/pkg/web"
)

// App is the running servo tracker.
type App struct {
	config Config
	logger *slog.Logger

	source camera.Source
	servo  robot.Servo
	loop   *tracking.Loop

	windows   *display.Windows
	webServer *web.Server

	// extra presenters, set by tests
	presenters []tracking.Presenter
}

// New validates cfg and creates an application. Nothing is opened yet.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &App{
		config: cfg,
		logger: log.Component("suntrack"),
	}, nil
}

// Init opens the frame source and the servo, creates the presenters and
// builds the loop. Call this after New() and before Run(). Windows are
// created here, so Init and Run must share a goroutine when not headless.
func (a *App) Init(ctx context.Context) error {
	srcCfg, err := a.config.SourceConfig()
	if err != nil {
		return err
	}
	a.source, err = srcCfg.Open()
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	a.logger.Info("camera ready", "kind", srcCfg.Kind, "endpoint", srcCfg.Endpoint)

	a.servo, err = a.openServo(ctx)
	if err != nil {
		a.source.Close()
		return fmt.Errorf("servo: %w", err)
	}
	a.logger.Info("servo ready", "kind", a.config.ActuatorKind(), "actuator", a.config.Actuator, "pin", a.config.Pin)

	opts := []tracking.Option{tracking.WithStatsWindow(a.config.StatsWindow)}
	if !a.config.Headless {
		a.windows = display.NewWindows(display.DefaultStyle())
		opts = append(opts, tracking.WithPresenter(a.windows))
	}
	if a.config.WebPort != "" {
		a.webServer = web.NewServer(a.config.WebPort)
		opts = append(opts, tracking.WithPresenter(a.webServer))
	}
	for _, p := range a.presenters {
		opts = append(opts, tracking.WithPresenter(p))
	}

	tc := a.config.Tracking
	tc.CameraEndpoint = srcCfg.Endpoint
	tc.ActuatorPort = a.config.Actuator

	a.loop, err = tracking.New(tc, a.source, a.servo, opts...)
	if err != nil {
		a.closeOpened()
		return err
	}

	if a.webServer != nil {
		a.webServer.SetSession(a.loop.Session())
		a.webServer.OnStats = a.loop.Stats
	}
	return nil
}

func (a *App) openServo(ctx context.Context) (robot.Servo, error) {
	switch a.config.ActuatorKind() {
	case ActuatorNone:
		return robot.NewNopServo(log.Component("servo")), nil
	case "http":
		return robot.NewHTTPServo(a.config.Actuator, a.config.Pin, robot.DefaultHTTPTimeout), nil
	default:
		servo, err := robot.OpenFirmataServo(ctx, a.config.FirmataConfig())
		if err != nil {
			return nil, err
		}
		a.logger.Info("firmata connected", "port", a.config.Actuator, "firmware", servo.Firmware())
		return servo, nil
	}
}

// Loop returns the control loop, or nil before Init.
func (a *App) Loop() *tracking.Loop {
	return a.loop
}

// Run starts the dashboard and runs the loop until quit, stop, ctx
// cancellation or a fatal error. Returns only fatal errors.
func (a *App) Run(ctx context.Context) error {
	if a.loop == nil {
		return errors.New("suntrack: Run before Init")
	}
	if a.webServer != nil {
		a.webServer.StartAsync()
	}
	return a.loop.Run(ctx)
}

// Shutdown releases everything. Safe after a failed Init and after Run.
func (a *App) Shutdown() {
	if a.loop != nil {
		if err := a.loop.Close(); err != nil {
			a.logger.Warn("shutdown", "error", err)
		}
		return
	}
	a.closeOpened()
}

// closeOpened releases what Init opened before the loop took ownership.
func (a *App) closeOpened() {
	if a.source != nil {
		a.source.Close()
	}
	if a.servo != nil {
		a.servo.Close()
	}
	if a.windows != nil {
		a.windows.Close()
	}
	if a.webServer != nil {
		a.webServer.Close()
	}
}
