// suntrack - point a servo at the brightest spot in a camera's view
//
// Fetches snapshots from a network camera, finds the brightest spot with and
// without Gaussian smoothing, and drives a Firmata servo toward it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-suntrack/internal/config"
	"github.com/teslashibe/go-suntrack/internal/log"
	"github.com/teslashibe/go-suntrack/pkg/camera"
	"github.com/teslashibe/go-suntrack/pkg/suntrack"
	"github.com/teslashibe/go-suntrack/pkg/tracking"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "suntrack: %v\n", err)
		os.Exit(2)
	}
	log.Init(cfg.LogLevel)

	app, err := suntrack.New(cfg)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Init(ctx); err != nil {
		log.Error("initialization failed", "error", err)
		app.Shutdown()
		os.Exit(1)
	}

	runErr := app.Run(ctx)
	app.Shutdown()
	if runErr != nil {
		log.Error("runtime error", "error", runErr)
		os.Exit(1)
	}
}

// parseFlags parses command line flags and returns configuration.
// Environment variables apply only where the matching flag was not given.
func parseFlags(fs *flag.FlagSet, args []string) (suntrack.Config, error) {
	cfg := suntrack.DefaultConfig()
	tc := &cfg.Tracking

	source := fs.String("source", cfg.Source, "Camera snapshot URL, file:<path> or synthetic:<"+presetList()+">")
	actuator := fs.String("actuator", cfg.Actuator, "Serial port of the Firmata board, servo HTTP URL, or none")
	pin := fs.Int("pin", cfg.Pin, "Servo pin on the board")
	baud := fs.Int("baud", cfg.BaudRate, "Serial baud rate")
	handshake := fs.Duration("handshake-timeout", cfg.HandshakeTimeout, "Wait this long for the Firmata board to answer after opening the port")
	headless := fs.Bool("headless", false, "Do not open the Naive/Robust windows")
	dashboard := fs.Bool("dashboard", false, "Serve the dashboard on the -web port")
	webPort := fs.String("web", config.DefaultWebPort, "Dashboard port; giving it enables the dashboard")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	statsWindow := fs.Int("stats-window", cfg.StatsWindow, "Cycles covered by the period statistics")

	radius := fs.Int("radius", tc.KernelRadius, "Gaussian kernel size in pixels (odd)")
	threshold := fs.Float64("threshold", tc.CenteredThresholdPixels, "Distance in pixels under which the spot is centered")
	classify := fs.String("classify", string(tc.ClassifyPath), "Path that drives classification: naive or robust")
	maxAngle := fs.Float64("max-angle", tc.MaxAngleDegrees, "Servo angle for the bottom row")
	settle := fs.Duration("settle", tc.CycleSettleDelay, "Wait after every servo command")
	timeout := fs.Duration("timeout", tc.Acquisition.Timeout, "Frame fetch timeout")
	retries := fs.Int("retries", tc.Acquisition.MaxRetries, "Frame fetch retries before stopping (0 = stop on first failure)")
	backoff := fs.Duration("backoff", tc.Acquisition.Backoff, "Delay before the first fetch retry, doubled each time")
	maxBackoff := fs.Duration("max-backoff", tc.Acquisition.MaxBackoff, "Upper bound on a single fetch retry delay")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg.Source, cfg.Actuator, cfg.Pin = *source, *actuator, *pin
	cfg.BaudRate, cfg.HandshakeTimeout = *baud, *handshake
	cfg.Headless, cfg.LogLevel = *headless, *logLevel
	cfg.StatsWindow = *statsWindow
	if *dashboard || set["web"] {
		cfg.WebPort = *webPort
	}

	tc.KernelRadius = *radius
	tc.CenteredThresholdPixels = *threshold
	tc.MaxAngleDegrees = *maxAngle
	tc.CycleSettleDelay = *settle
	tc.Acquisition.Timeout = *timeout
	tc.Acquisition.MaxRetries = *retries
	tc.Acquisition.Backoff = *backoff
	tc.Acquisition.MaxBackoff = *maxBackoff

	path, err := tracking.ParsePath(*classify)
	if err != nil {
		return cfg, err
	}
	tc.ClassifyPath = path

	// Environment variables
	env := cfg
	env.LoadEnvConfig()
	if !set["source"] {
		cfg.Source = env.Source
	}
	if !set["actuator"] {
		cfg.Actuator = env.Actuator
	}
	if !set["pin"] {
		cfg.Pin = env.Pin
	}
	if !set["settle"] {
		tc.CycleSettleDelay = env.Tracking.CycleSettleDelay
	}
	if !set["log-level"] {
		cfg.LogLevel = env.LogLevel
	}
	return cfg, nil
}

func presetList() string {
	return strings.Join(camera.PresetNames(), "|")
}
