package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"memory-match/game"
)

// Config holds all configurable parameters of the game and its hosts.
type Config struct {
	PairCount       int      `json:"pair_count"`
	Symbols         []string `json:"symbols"`
	RevealDelayMS   int      `json:"reveal_delay_ms"`
	GameOverDelayMS int      `json:"game_over_delay_ms"`
	// MaxNameLength caps names in runes; zero means unlimited.
	MaxNameLength int `json:"max_name_length"`

	WSPort int `json:"ws_port"`

	// DatabaseURL enables round history and remembered names in Postgres. Empty disables persistence.
	DatabaseURL string `json:"database_url"`
	// AuthBaseURL is the issuer whose JWKS is used to verify host tokens. Empty disables auth.
	AuthBaseURL string `json:"auth_base_url"`

	LogLevel string `json:"log_level"`
}

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Defaults returns a Config with the standard ten-pair fruit deck.
func Defaults() *Config {
	return &Config{
		PairCount:       game.DefaultPairCount,
		Symbols:         append([]string(nil), game.DefaultSymbols...),
		RevealDelayMS:   1000,
		GameOverDelayMS: 1000,
		WSPort:          8080,
		LogLevel:        "info",
	}
}

// Load reads configuration from an optional JSON file at path (config.json
// when path is empty), then applies environment variable overrides. Fields not
// set in either source retain their default values.
func Load(path string) *Config {
	cfg := Defaults()
	if path == "" {
		path = "config.json"
	}

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config file", "tag", "config", "path", path, "err", err)
		}
	}

	overrideInt(&cfg.PairCount, "PAIR_COUNT")
	overrideStrings(&cfg.Symbols, "SYMBOLS")
	overrideInt(&cfg.RevealDelayMS, "REVEAL_DELAY_MS")
	overrideInt(&cfg.GameOverDelayMS, "GAME_OVER_DELAY_MS")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")

	return cfg
}

// Validate reports the first setting that would stop a board from being dealt
// or the server from starting.
func (c *Config) Validate() error {
	if err := c.SessionOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.RevealDelayMS < 0 {
		return fmt.Errorf("%w: reveal_delay_ms must not be negative", ErrInvalid)
	}
	if c.GameOverDelayMS < 0 {
		return fmt.Errorf("%w: game_over_delay_ms must not be negative", ErrInvalid)
	}
	if c.MaxNameLength < 0 {
		return fmt.Errorf("%w: max_name_length must not be negative", ErrInvalid)
	}
	if c.WSPort < 1 || c.WSPort > 65535 {
		return fmt.Errorf("%w: ws_port %d out of range", ErrInvalid, c.WSPort)
	}
	return nil
}

// SessionOptions converts the game settings into game.Options.
func (c *Config) SessionOptions() game.Options {
	return game.Options{
		PairCount:     c.PairCount,
		Symbols:       c.Symbols,
		RevealDelay:   time.Duration(c.RevealDelayMS) * time.Millisecond,
		GameOverDelay: time.Duration(c.GameOverDelayMS) * time.Millisecond,
		MaxNameLength: c.MaxNameLength,
	}
}

// SlogLevel parses LogLevel, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid env value", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// overrideStrings splits a comma separated value, dropping blanks.
func overrideStrings(field *[]string, envKey string) {
	val := os.Getenv(envKey)
	if val == "" {
		return
	}
	var out []string
	for _, s := range strings.Split(val, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		*field = out
	}
}
