package droidlink

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults match the droid firmware's comfortable operating envelope:
// 20-byte chunks fit a default BLE ATT payload, and the peer's receive
// buffer overruns when writes arrive faster than roughly 120 ms apart,
// so the same safe interval paces both chunks and whole commands.
const (
	DefaultChunkSize       = 20
	DefaultChunkInterval   = 120 * time.Millisecond
	DefaultCommandInterval = 120 * time.Millisecond
	DefaultTimeout         = 10 * time.Second
)

// Config tunes one connection's pacing and framing.
type Config struct {
	// ChunkSize caps each transport write, in bytes.
	ChunkSize int

	// ChunkInterval is the pause between chunks of one frame.
	ChunkInterval time.Duration

	// CommandInterval is the minimum spacing between outbound frames.
	CommandInterval time.Duration

	// Timeout bounds SendAndWait when the caller's context carries no
	// deadline of its own.
	Timeout time.Duration
}

type fileConfig struct {
	ChunkSize         int `toml:"chunk_size"`
	ChunkIntervalMS   int `toml:"chunk_interval_ms"`
	CommandIntervalMS int `toml:"command_interval_ms"`
	TimeoutMS         int `toml:"timeout_ms"`
}

// DefaultConfig returns the firmware-safe defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:       DefaultChunkSize,
		ChunkInterval:   DefaultChunkInterval,
		CommandInterval: DefaultCommandInterval,
		Timeout:         DefaultTimeout,
	}
}

// LoadConfig reads a TOML config file. Missing fields keep their
// defaults; zero means "use the default", so pacing cannot be disabled
// from a file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	cfg := DefaultConfig()
	if fc.ChunkSize != 0 {
		cfg.ChunkSize = fc.ChunkSize
	}
	if fc.ChunkIntervalMS != 0 {
		cfg.ChunkInterval = time.Duration(fc.ChunkIntervalMS) * time.Millisecond
	}
	if fc.CommandIntervalMS != 0 {
		cfg.CommandInterval = time.Duration(fc.CommandIntervalMS) * time.Millisecond
	}
	if fc.TimeoutMS != 0 {
		cfg.Timeout = time.Duration(fc.TimeoutMS) * time.Millisecond
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidateConfig rejects values the writer cannot operate with.
func ValidateConfig(cfg Config) error {
	if cfg.ChunkSize < 1 {
		return fmt.Errorf("config chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkInterval < 0 {
		return fmt.Errorf("config chunk interval must not be negative")
	}
	if cfg.CommandInterval < 0 {
		return fmt.Errorf("config command interval must not be negative")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("config timeout must be positive")
	}
	return nil
}
