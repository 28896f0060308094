package camera

import (
	"fmt"
	"strings"
	"time"
)

// Source kinds
const (
	KindHTTP      = "http"
	KindFile      = "file"
	KindSynthetic = "synthetic"
)

// Config selects and parameterizes a frame source.
type Config struct {
	// Kind is one of "http", "file" or "synthetic".
	Kind string `json:"kind"`

	// Endpoint is the snapshot URL (http), the image path (file) or a
	// preset name (synthetic).
	Endpoint string `json:"endpoint"`

	// Timeout bounds each HTTP fetch.
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns the reference ESP32-CAM snapshot source.
func DefaultConfig() Config {
	return Config{
		Kind:     KindHTTP,
		Endpoint: "http://192.168.1.15/cam-hi.jpg",
		Timeout:  10 * time.Second,
	}
}

// ParseSpec builds a Config from a "kind:endpoint" string such as
// "synthetic:scenario" or "file:frame.jpg". A bare http(s) URL selects the
// HTTP source.
func ParseSpec(spec string, timeout time.Duration) (Config, error) {
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "http://") || strings.HasPrefix(spec, "https://") {
		return Config{Kind: KindHTTP, Endpoint: spec, Timeout: timeout}, nil
	}
	kind, endpoint, ok := strings.Cut(spec, ":")
	if !ok {
		return Config{}, fmt.Errorf("source %q: expected kind:endpoint or URL", spec)
	}
	cfg := Config{Kind: strings.ToLower(kind), Endpoint: endpoint, Timeout: timeout}
	if errs := cfg.Validate(); len(errs) > 0 {
		return Config{}, fmt.Errorf("source %q: %s", spec, strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Validate checks if the config values are usable.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	switch c.Kind {
	case KindHTTP:
		if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
			errors = append(errors, "http endpoint must be an http(s) URL")
		}
		if c.Timeout <= 0 {
			errors = append(errors, "timeout must be > 0")
		}
	case KindFile:
		if c.Endpoint == "" {
			errors = append(errors, "file endpoint must be a path")
		}
	case KindSynthetic:
		if GetPreset(c.Endpoint) == nil {
			errors = append(errors, fmt.Sprintf("unknown synthetic preset %q (have %s)",
				c.Endpoint, strings.Join(PresetNames(), ", ")))
		}
	default:
		errors = append(errors, "kind must be http, file, or synthetic")
	}

	return errors
}

// Open creates the configured source.
func (c Config) Open() (Source, error) {
	if errs := c.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %v", errs)
	}
	switch c.Kind {
	case KindHTTP:
		return NewHTTPSource(c.Endpoint, c.Timeout), nil
	case KindFile:
		return NewFileSource(c.Endpoint)
	default:
		return NewSyntheticSource(*GetPreset(c.Endpoint)), nil
	}
}
