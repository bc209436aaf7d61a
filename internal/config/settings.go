package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultBaseURL         = "https://api.copilot.local"
	defaultRequestTimeout  = 30
	defaultSimulatorBudget = 10
	defaultActionExpiryHrs = 24
	defaultHistoryPageSize = 100
)

type Config struct {
	Assistant AssistantConfig `toml:"assistant"`
	Actions   ActionsConfig   `toml:"actions"`
	Logging   LoggingConfig   `toml:"logging"`
	UI        UIConfig        `toml:"ui"`
}

type AssistantConfig struct {
	BaseURL               string `toml:"base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	SimulatorBudgetSecs   int    `toml:"simulator_budget_seconds"`
	HistoryPageSize       int    `toml:"history_page_size"`
}

type ActionsConfig struct {
	ExpiryHours int `toml:"expiry_hours"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type UIConfig struct {
	Markdown  bool `toml:"markdown"`
	AltScreen bool `toml:"alt_screen"`
}

func DefaultConfig() Config {
	return Config{
		Assistant: AssistantConfig{
			BaseURL:               defaultBaseURL,
			RequestTimeoutSeconds: defaultRequestTimeout,
			SimulatorBudgetSecs:   defaultSimulatorBudget,
			HistoryPageSize:       defaultHistoryPageSize,
		},
		Actions: ActionsConfig{
			ExpiryHours: defaultActionExpiryHrs,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Markdown:  true,
			AltScreen: true,
		},
	}
}

// Load reads ~/.copilot/config.toml on top of the defaults. A missing file is
// not an error.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return toml.Unmarshal(data, out)
}

func (c Config) BaseURL() string {
	url := strings.TrimRight(strings.TrimSpace(c.Assistant.BaseURL), "/")
	if url == "" {
		return defaultBaseURL
	}
	return url
}

func (c Config) RequestTimeout() time.Duration {
	secs := c.Assistant.RequestTimeoutSeconds
	if secs <= 0 {
		secs = defaultRequestTimeout
	}
	return time.Duration(secs) * time.Second
}

func (c Config) SimulatorBudget() time.Duration {
	secs := c.Assistant.SimulatorBudgetSecs
	if secs <= 0 {
		secs = defaultSimulatorBudget
	}
	return time.Duration(secs) * time.Second
}

func (c Config) HistoryPageSize() int {
	if c.Assistant.HistoryPageSize <= 0 {
		return defaultHistoryPageSize
	}
	return c.Assistant.HistoryPageSize
}

func (c Config) ActionExpiry() time.Duration {
	hours := c.Actions.ExpiryHours
	if hours <= 0 {
		hours = defaultActionExpiryHrs
	}
	return time.Duration(hours) * time.Hour
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}
