package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSSIDPrefix    = "TELLO"
	defaultMaxBatchSize  = 50
	defaultFlushInterval = 5 // seconds
)

// Config represents the flight recorder configuration.
type Config struct {
	Settings  Settings        `yaml:"settings"`
	Network   NetworkConfig   `yaml:"network"`
	Recording RecordingConfig `yaml:"recording"`
	Storage   StorageConfig   `yaml:"storage"`
}

// Settings represents global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel"`

	// LogFile, when set, routes logs to a rotating file instead of stdout.
	LogFile       string `yaml:"logFile"`
	LogMaxSizeMB  int    `yaml:"logMaxSizeMb"`
	LogMaxBackups int    `yaml:"logMaxBackups"`
}

// NetworkConfig selects the drone network and endpoints.
type NetworkConfig struct {
	// SSIDPrefix of the drone's own WiFi network, waited for before
	// connecting. AssumeJoined skips the wait.
	SSIDPrefix   string `yaml:"ssidPrefix"`
	AssumeJoined bool   `yaml:"assumeJoined"`

	// Endpoint overrides; zero values keep the SDK defaults.
	DroneHost   string `yaml:"droneHost"`
	ControlPort int    `yaml:"controlPort"`
	StatePort   int    `yaml:"statePort"`
	VideoPort   int    `yaml:"videoPort"`
}

// RecordingConfig controls what gets recorded and how often batches are
// flushed to the database.
type RecordingConfig struct {
	// Video additionally starts the video stream and tallies received
	// frames; frame payloads are not stored.
	Video bool `yaml:"video"`

	// FlushInterval is in seconds.
	FlushInterval float64 `yaml:"flushInterval"`
}

// FlushEvery returns the flush interval as a duration.
func (c RecordingConfig) FlushEvery() time.Duration {
	return time.Duration(c.FlushInterval * float64(time.Second))
}

// StorageConfig represents storage settings.
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// LoadConfig reads and validates a YAML configuration file, filling in
// defaults for omitted fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	config := Config{
		Network: NetworkConfig{SSIDPrefix: defaultSSIDPrefix},
		Recording: RecordingConfig{
			FlushInterval: defaultFlushInterval,
		},
		Storage: StorageConfig{MaxBatchSize: defaultMaxBatchSize},
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if config.Storage.MaxBatchSize <= 0 {
		return nil, fmt.Errorf("maxBatchSize must be positive, got %d", config.Storage.MaxBatchSize)
	}
	if config.Recording.FlushInterval <= 0 {
		return nil, fmt.Errorf("flushInterval must be positive, got %g", config.Recording.FlushInterval)
	}

	return &config, nil
}
