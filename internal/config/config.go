package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultEARThreshold       = 0.21
	DefaultConsecutiveFrames  = 2
	DefaultMaxFrameSkip       = 0
	DefaultFrameInterval      = 33 * time.Millisecond
	DefaultMaxFaces           = 1
	DefaultMinConfidence      = 0.5
	DefaultMinBlinksPerMinute = 15
	DefaultCheckInterval      = 60 * time.Second
	DefaultCooldown           = 5 * time.Minute
	DefaultHTTPPort           = 8080
	DefaultWSInterval         = 1 * time.Second
	DefaultStatsInterval      = 1 * time.Second
)

// defaultLeftEye and defaultRightEye are the MediaPipe face-mesh indices of
// the six eyelid landmarks per eye, in the order the EAR math expects.
var (
	defaultLeftEye  = []int{33, 160, 158, 133, 153, 144}
	defaultRightEye = []int{362, 385, 387, 263, 373, 380}
)

// Config is the top-level daemon configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Tracking TrackingConfig `yaml:"tracking"`
	Provider ProviderConfig `yaml:"provider"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`
	Session  SessionConfig  `yaml:"session"`
	Stats    StatsConfig    `yaml:"stats"`
}

// TrackingConfig holds the blink-detection pipeline tuning. The threshold,
// consecutive-frames and frame-skip fields may be hot-reloaded at runtime.
type TrackingConfig struct {
	// EARThreshold is the eye-aspect-ratio below which the eyes count as
	// closed. Must be within [0, 1].
	EARThreshold float64 `yaml:"ear_threshold"`

	// ConsecutiveFrames is the minimum closed-eye run length, in processed
	// frames, for a run to count as one blink.
	ConsecutiveFrames int `yaml:"consecutive_frames"`

	// MaxFrameSkip runs landmark detection on only every Nth frame.
	// 0 means every frame is processed.
	MaxFrameSkip int `yaml:"max_frame_skip"`

	// FrameInterval is the nominal tick period of the pipeline loop.
	FrameInterval time.Duration `yaml:"frame_interval"`

	// MaxFaces is passed through to the landmark provider. Only the first
	// detected face is tracked, so this is fixed at 1.
	MaxFaces int `yaml:"max_faces"`

	// MinDetectionConfidence and MinTrackingConfidence are provider knobs,
	// each within [0, 1].
	MinDetectionConfidence float64 `yaml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `yaml:"min_tracking_confidence"`

	// LeftEyeIndices and RightEyeIndices select the six eyelid landmarks
	// out of the provider's full face mesh. Order-significant.
	LeftEyeIndices  []int `yaml:"left_eye_indices"`
	RightEyeIndices []int `yaml:"right_eye_indices"`
}

// ProviderConfig selects and configures the landmark provider.
type ProviderConfig struct {
	// Mode is one of: sim | remote.
	Mode string `yaml:"mode"`

	// Endpoint is the detection URL of the remote landmark service.
	// Used when Mode == "remote".
	Endpoint string `yaml:"endpoint"`

	// FrameURL is a still-image endpoint polled once per processed tick for
	// the current camera frame (e.g. an IP camera snapshot URL).
	// Used when Mode == "remote".
	FrameURL string `yaml:"frame_url"`

	// TokenEnv names the environment variable holding the bearer token sent
	// to the remote service. Empty means unauthenticated.
	TokenEnv string `yaml:"token_env"`
}

// Token returns the provider bearer token resolved from the environment.
func (p ProviderConfig) Token() string {
	if p.TokenEnv == "" {
		return ""
	}
	return os.Getenv(p.TokenEnv)
}

// AlertsConfig holds the blink-rate health alerting settings.
type AlertsConfig struct {
	// MinBlinksPerMinute is the rate below which a health alert fires.
	MinBlinksPerMinute float64 `yaml:"min_blinks_per_minute"`

	// CheckInterval is the length of one rate-evaluation window.
	CheckInterval time.Duration `yaml:"check_interval"`

	// Cooldown suppresses a new alert for this duration after one fires,
	// regardless of how far below threshold the rate falls.
	Cooldown time.Duration `yaml:"cooldown"`

	// Desktop enables native desktop notifications.
	Desktop bool `yaml:"desktop"`

	// Webhooks lists external delivery targets for fired alerts.
	Webhooks []WebhookTarget `yaml:"webhooks"`
}

// WebhookTarget defines one webhook delivery target.
type WebhookTarget struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv names the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookTarget) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// ServerConfig holds the HTTP surface settings (JSON API, WebSocket stream,
// Prometheus metrics — all on one port).
type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`

	// WSInterval is how often the WebSocket hub broadcasts the current
	// tracking snapshot to connected dashboard clients.
	WSInterval time.Duration `yaml:"ws_interval"`
}

// SessionConfig configures end-of-session reporting to the external backend.
type SessionConfig struct {
	// BackendURL is the base URL of the session backend. Empty disables
	// session reporting.
	BackendURL string `yaml:"backend_url"`

	// TokenEnv names the environment variable holding the bearer token.
	TokenEnv string `yaml:"token_env"`
}

// Token returns the session backend bearer token resolved from the environment.
func (s SessionConfig) Token() string {
	if s.TokenEnv == "" {
		return ""
	}
	return os.Getenv(s.TokenEnv)
}

// StatsConfig controls the background system-stats poller.
type StatsConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation; any out-of-range value is rejected with
// an error naming the offending field and its valid range.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a Config pre-populated with default values.
func Defaults() *Config {
	return &Config{
		Tracking: TrackingConfig{
			EARThreshold:           DefaultEARThreshold,
			ConsecutiveFrames:      DefaultConsecutiveFrames,
			MaxFrameSkip:           DefaultMaxFrameSkip,
			FrameInterval:          DefaultFrameInterval,
			MaxFaces:               DefaultMaxFaces,
			MinDetectionConfidence: DefaultMinConfidence,
			MinTrackingConfidence:  DefaultMinConfidence,
			LeftEyeIndices:         append([]int(nil), defaultLeftEye...),
			RightEyeIndices:        append([]int(nil), defaultRightEye...),
		},
		Provider: ProviderConfig{
			Mode: "sim",
		},
		Alerts: AlertsConfig{
			MinBlinksPerMinute: DefaultMinBlinksPerMinute,
			CheckInterval:      DefaultCheckInterval,
			Cooldown:           DefaultCooldown,
			Desktop:            true,
		},
		Server: ServerConfig{
			HTTPPort:   DefaultHTTPPort,
			WSInterval: DefaultWSInterval,
		},
		Stats: StatsConfig{
			PollInterval: DefaultStatsInterval,
		},
	}
}

// Validate checks structural constraints on the parsed configuration.
func Validate(cfg *Config) error {
	t := cfg.Tracking
	if t.EARThreshold < 0 || t.EARThreshold > 1 {
		return fmt.Errorf("tracking.ear_threshold %v is out of range [0, 1]", t.EARThreshold)
	}
	if t.ConsecutiveFrames < 0 {
		return fmt.Errorf("tracking.consecutive_frames %d must be >= 0", t.ConsecutiveFrames)
	}
	if t.MaxFrameSkip < 0 {
		return fmt.Errorf("tracking.max_frame_skip %d must be >= 0", t.MaxFrameSkip)
	}
	if t.FrameInterval <= 0 {
		return fmt.Errorf("tracking.frame_interval %v must be > 0", t.FrameInterval)
	}
	if t.MaxFaces != 1 {
		return fmt.Errorf("tracking.max_faces %d is unsupported: only 1 is allowed", t.MaxFaces)
	}
	if t.MinDetectionConfidence < 0 || t.MinDetectionConfidence > 1 {
		return fmt.Errorf("tracking.min_detection_confidence %v is out of range [0, 1]", t.MinDetectionConfidence)
	}
	if t.MinTrackingConfidence < 0 || t.MinTrackingConfidence > 1 {
		return fmt.Errorf("tracking.min_tracking_confidence %v is out of range [0, 1]", t.MinTrackingConfidence)
	}
	if len(t.LeftEyeIndices) != 6 {
		return fmt.Errorf("tracking.left_eye_indices has %d entries, want exactly 6", len(t.LeftEyeIndices))
	}
	if len(t.RightEyeIndices) != 6 {
		return fmt.Errorf("tracking.right_eye_indices has %d entries, want exactly 6", len(t.RightEyeIndices))
	}
	for _, idx := range append(append([]int(nil), t.LeftEyeIndices...), t.RightEyeIndices...) {
		if idx < 0 {
			return fmt.Errorf("eye landmark index %d must be >= 0", idx)
		}
	}

	switch cfg.Provider.Mode {
	case "sim":
	case "remote":
		if cfg.Provider.Endpoint == "" {
			return fmt.Errorf("provider.endpoint is required when provider.mode is %q", cfg.Provider.Mode)
		}
		if cfg.Provider.FrameURL == "" {
			return fmt.Errorf("provider.frame_url is required when provider.mode is %q", cfg.Provider.Mode)
		}
	default:
		return fmt.Errorf("provider.mode %q unknown: want sim|remote", cfg.Provider.Mode)
	}

	a := cfg.Alerts
	if a.MinBlinksPerMinute < 0 {
		return fmt.Errorf("alerts.min_blinks_per_minute %v must be >= 0", a.MinBlinksPerMinute)
	}
	if a.CheckInterval <= 0 {
		return fmt.Errorf("alerts.check_interval %v must be > 0", a.CheckInterval)
	}
	if a.Cooldown <= 0 {
		return fmt.Errorf("alerts.cooldown %v must be > 0", a.Cooldown)
	}
	for _, wh := range a.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("alerts.webhooks type %q unknown: want slack|teams|http", wh.Type)
		}
	}

	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.WSInterval <= 0 {
		return fmt.Errorf("server.ws_interval %v must be > 0", cfg.Server.WSInterval)
	}
	if cfg.Stats.PollInterval <= 0 {
		return fmt.Errorf("stats.poll_interval %v must be > 0", cfg.Stats.PollInterval)
	}
	return nil
}
