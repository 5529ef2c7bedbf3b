package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"note-trainer/notes"
)

// TrainerConfig stores game preferences. The game itself is never saved.
type TrainerConfig struct {
	Clef            notes.Clef        `json:"clef"`
	DisplayMode     notes.DisplayMode `json:"displayMode"`
	FeedbackDelayMs int               `json:"feedbackDelayMs,omitempty"`
}

// MIDIConfig controls which inputs are attached
type MIDIConfig struct {
	InputFilter []string `json:"inputFilter,omitempty"` // substrings; empty = any port
	Launchpad   bool     `json:"launchpad"`             // use Launchpads as letter pads
	PollMs      int      `json:"pollMs,omitempty"`
}

// ServerConfig stores settings for `serve`
type ServerConfig struct {
	Addr           string   `json:"addr,omitempty"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

type LogConfig struct {
	Level string `json:"level,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Trainer TrainerConfig `json:"trainer"`
	MIDI    MIDIConfig    `json:"midi"`
	Server  ServerConfig  `json:"server,omitempty"`
	Log     LogConfig     `json:"log,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Trainer: TrainerConfig{
			Clef:            notes.Treble,
			DisplayMode:     notes.ModeSolfege,
			FeedbackDelayMs: 250,
		},
		MIDI: MIDIConfig{
			Launchpad: true,
			PollMs:    1000,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "note-trainer"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Missing fields keep their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks enumerated values
func (c *Config) Validate() error {
	if _, err := notes.ParseClef(string(c.Trainer.Clef)); err != nil {
		return err
	}
	if _, err := notes.ParseDisplayMode(string(c.Trainer.DisplayMode)); err != nil {
		return err
	}
	if c.Trainer.FeedbackDelayMs < 0 {
		return fmt.Errorf("feedbackDelayMs must not be negative")
	}
	return nil
}

// FeedbackDelay returns the configured feedback delay, or 0 for the default
func (c *Config) FeedbackDelay() time.Duration {
	return time.Duration(c.Trainer.FeedbackDelayMs) * time.Millisecond
}

// PollRate returns the MIDI hot-plug poll interval
func (c *Config) PollRate() time.Duration {
	if c.MIDI.PollMs <= 0 {
		return time.Second
	}
	return time.Duration(c.MIDI.PollMs) * time.Millisecond
}
