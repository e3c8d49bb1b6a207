package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"colortap/internal/game"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the full service configuration.
type Config struct {
	Port     string `yaml:"port"`
	BaseURL  string `yaml:"base_url"`
	LogLevel string `yaml:"log_level"`

	Game    GameConfig    `yaml:"game"`
	Capture CaptureConfig `yaml:"capture"`
	NATS    NATSConfig    `yaml:"nats"`
	CORS    CORSConfig    `yaml:"cors"`
}

// GameConfig holds the clock lengths in seconds and the color palette.
type GameConfig struct {
	SessionSeconds   int      `yaml:"session_seconds"`
	DecisionSeconds  int      `yaml:"decision_seconds"`
	CountdownSeconds int      `yaml:"countdown_seconds"`
	Palette          []string `yaml:"palette"`
}

// CaptureConfig drives the simulated recorder.
type CaptureConfig struct {
	PermissionGranted bool `yaml:"permission_granted"`
	Persist           bool `yaml:"persist"`
	QueueSize         int  `yaml:"queue_size"`
}

// NATSConfig enables lifecycle event publishing when URL is set.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	MaxReconnects int    `yaml:"max_reconnects"`
}

// CORSConfig lists the origins allowed to call the JSON and websocket endpoints.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the stock configuration.
func Default() Config {
	palette := make([]string, 0, len(game.DefaultPalette))
	for _, c := range game.DefaultPalette {
		palette = append(palette, c.String())
	}
	return Config{
		Port:     "8080",
		LogLevel: "info",
		Game: GameConfig{
			SessionSeconds:   game.SessionDuration,
			DecisionSeconds:  game.DecisionDuration,
			CountdownSeconds: game.CountdownDuration,
			Palette:          palette,
		},
		Capture: CaptureConfig{
			PermissionGranted: true,
			Persist:           false,
			QueueSize:         8,
		},
		NATS: NATSConfig{
			SubjectPrefix: "colortap.sessions",
			MaxReconnects: -1,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// and the environment. A .env file in the working directory is loaded first if present.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Game.SessionSeconds = getEnvAsInt("SESSION_SECONDS", c.Game.SessionSeconds)
	c.Game.DecisionSeconds = getEnvAsInt("DECISION_SECONDS", c.Game.DecisionSeconds)
	c.Game.CountdownSeconds = getEnvAsInt("COUNTDOWN_SECONDS", c.Game.CountdownSeconds)
	c.Game.Palette = getEnvAsList("PALETTE", c.Game.Palette)

	c.Capture.PermissionGranted = getEnvAsBool("CAPTURE_PERMISSION", c.Capture.PermissionGranted)
	c.Capture.Persist = getEnvAsBool("CAPTURE_PERSIST", c.Capture.Persist)
	c.Capture.QueueSize = getEnvAsInt("CAPTURE_QUEUE_SIZE", c.Capture.QueueSize)

	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)

	c.CORS.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)
}

// Validate rejects clocks that cannot tick and palettes too small to build a round.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("%w: empty port", ErrInvalidConfig)
	}
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(c.Game.Palette) <= game.OptionsPerRound {
		return fmt.Errorf("%w: palette needs more than %d colors, got %d", ErrInvalidConfig, game.OptionsPerRound, len(c.Game.Palette))
	}
	if c.Capture.QueueSize <= 0 {
		return fmt.Errorf("%w: capture queue size %d", ErrInvalidConfig, c.Capture.QueueSize)
	}
	return nil
}

// Settings returns the game clock lengths.
func (c Config) Settings() game.Settings {
	return game.Settings{
		SessionSeconds:   c.Game.SessionSeconds,
		DecisionSeconds:  c.Game.DecisionSeconds,
		CountdownSeconds: c.Game.CountdownSeconds,
	}
}

// Palette returns the configured colors.
func (c Config) Palette() []game.Color {
	out := make([]game.Color, 0, len(c.Game.Palette))
	for _, name := range c.Game.Palette {
		out = append(out, game.Color(name))
	}
	return out
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
