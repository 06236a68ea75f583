package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"

	defaultSocketPath    = "/tmp/data_socket"
	defaultFrameInterval = 100 * time.Millisecond
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

// Duration wraps time.Duration for YAML fields written as "10ms" or "1s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration '%s': %w", s, err)
	}

	*d = Duration(v)
	return nil
}

// Config represents the main application configuration
type Config struct {
	Settings  Settings        `yaml:"settings"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Scene     SceneConfig     `yaml:"scene"`
	Output    OutputConfig    `yaml:"output"`
	Storage   StorageConfig   `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// SlogLevel parses the configured log level, defaulting to info.
func (s Settings) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// TelemetryConfig describes the producer connection and polling behavior.
type TelemetryConfig struct {
	SocketPath      string   `yaml:"socketPath"`
	ConnectAttempts int      `yaml:"connectAttempts"`
	RetryInterval   Duration `yaml:"retryInterval"`
	PollTimeout     Duration `yaml:"pollTimeout"`
	Defaults        []int    `yaml:"defaults"`
}

// SceneConfig describes the rendered viewport.
type SceneConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	CenterX         float64 `yaml:"centerX"`
	CenterY         float64 `yaml:"centerY"`
	BodyRadius      int     `yaml:"bodyRadius"`
	SatelliteRadius int     `yaml:"satelliteRadius"`
	AltitudeScale   float64 `yaml:"altitudeScale"`
	OrbitRing       bool    `yaml:"orbitRing"`
	FontPath        string  `yaml:"fontPath"`
}

// OutputConfig describes where and how rendered frames are written.
type OutputConfig struct {
	Directory     string   `yaml:"directory"`
	Format        string   `yaml:"format"`
	FrameInterval Duration `yaml:"frameInterval"`
	FrameLimit    int      `yaml:"frameLimit"`
}

// StorageConfig represents storage settings. An empty data directory
// disables session recording.
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// LoadConfig reads and validates a YAML configuration file, filling in
// defaults for unset values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if config.Telemetry.SocketPath == "" {
		config.Telemetry.SocketPath = defaultSocketPath
	}
	if config.Telemetry.ConnectAttempts <= 0 {
		config.Telemetry.ConnectAttempts = 3
	}
	if config.Telemetry.RetryInterval <= 0 {
		config.Telemetry.RetryInterval = Duration(time.Second)
	}
	if config.Telemetry.PollTimeout <= 0 {
		config.Telemetry.PollTimeout = Duration(10 * time.Millisecond)
	}
	if config.Output.Directory == "" {
		config.Output.Directory = "frames"
	}
	if config.Output.Format == "" {
		config.Output.Format = string(ImagePNG)
	}
	if config.Output.FrameInterval <= 0 {
		config.Output.FrameInterval = Duration(defaultFrameInterval)
	}

	if _, ok := validImageFormats[ImageFormat(config.Output.Format)]; !ok {
		return nil, fmt.Errorf("invalid image format: %s", config.Output.Format)
	}

	if n := len(config.Telemetry.Defaults); n != 0 && n < 2 {
		return nil, fmt.Errorf("default telemetry needs at least 2 values, got %d", n)
	}

	return &config, nil
}
