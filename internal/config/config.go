// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	Store StoreConfig

	// QuestionsPath points at a bank file; empty uses the built-in bank.
	QuestionsPath string

	DailyFreeSessions int
	MiniTestSize      int
	FullTestSize      int
	StaleWindow       time.Duration
	WeakThreshold     float64
	Location          *time.Location

	// PremiumUsers are granted full access regardless of their profile.
	PremiumUsers []int64

	// FreeTopics and FreeLanguages are open to non-premium users.
	FreeTopics    []string
	FreeLanguages []string
	Languages     []string

	HTTPAddr        string
	JWTSecret       string
	ShutdownTimeout time.Duration

	SES SESConfig

	// CoachTimeout bounds the optional study-tip request.
	CoachTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// StoreConfig selects the profile backend.
type StoreConfig struct {
	// Driver is one of sqlite, postgres, mysql, file, memory.
	Driver string
	DSN    string
	Dir    string
}

// SESConfig configures operator email via Amazon SES.
type SESConfig struct {
	Region string
	From   string
	To     string
}

// Enabled reports whether operator email is configured.
func (c SESConfig) Enabled() bool {
	return c.From != "" && c.To != ""
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Store:             StoreConfig{Driver: "sqlite"},
		DailyFreeSessions: 1,
		MiniTestSize:      5,
		FullTestSize:      15,
		StaleWindow:       5 * time.Minute,
		WeakThreshold:     0.5,
		Location:          time.UTC,
		FreeTopics:        []string{"mixed"},
		FreeLanguages:     []string{"en"},
		Languages:         []string{"en", "kn", "ur"},
		HTTPAddr:          ":8080",
		ShutdownTimeout:   10 * time.Second,
		SES:               SESConfig{Region: "us-east-1"},
		CoachTimeout:      8 * time.Second,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load reads envFile (when non-empty) or a .env in the working directory
// if one exists, then overlays QUIZMENTOR_* variables on the defaults.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv overlays QUIZMENTOR_* variables on the defaults.
func FromEnv() (*Config, error) {
	c := Default()
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	c.Store.Driver = getenvDefault("QUIZMENTOR_STORE", c.Store.Driver)
	c.Store.DSN = os.Getenv("QUIZMENTOR_DATABASE_URL")
	c.Store.Dir = os.Getenv("QUIZMENTOR_PROFILE_DIR")
	c.QuestionsPath = os.Getenv("QUIZMENTOR_QUESTIONS")

	var err error
	c.DailyFreeSessions, err = getenvInt("QUIZMENTOR_DAILY_FREE_SESSIONS", c.DailyFreeSessions)
	collect(err)
	c.MiniTestSize, err = getenvInt("QUIZMENTOR_MINI_TEST_SIZE", c.MiniTestSize)
	collect(err)
	c.FullTestSize, err = getenvInt("QUIZMENTOR_FULL_TEST_SIZE", c.FullTestSize)
	collect(err)
	c.StaleWindow, err = getenvDuration("QUIZMENTOR_STALE_WINDOW", c.StaleWindow)
	collect(err)
	c.WeakThreshold, err = getenvFloat("QUIZMENTOR_WEAK_THRESHOLD", c.WeakThreshold)
	collect(err)
	c.ShutdownTimeout, err = getenvDuration("QUIZMENTOR_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	collect(err)
	c.CoachTimeout, err = getenvDuration("QUIZMENTOR_COACH_TIMEOUT", c.CoachTimeout)
	collect(err)

	if tz := os.Getenv("QUIZMENTOR_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			collect(fmt.Errorf("QUIZMENTOR_TIMEZONE: %w", err))
		} else {
			c.Location = loc
		}
	}

	c.PremiumUsers, err = getenvInt64List("QUIZMENTOR_PREMIUM_USERS")
	collect(err)
	c.FreeTopics = getenvList("QUIZMENTOR_FREE_TOPICS", c.FreeTopics)
	c.FreeLanguages = getenvList("QUIZMENTOR_FREE_LANGUAGES", c.FreeLanguages)
	c.Languages = getenvList("QUIZMENTOR_LANGUAGES", c.Languages)

	c.HTTPAddr = getenvDefault("QUIZMENTOR_HTTP_ADDR", c.HTTPAddr)
	c.JWTSecret = os.Getenv("QUIZMENTOR_JWT_SECRET")

	c.SES.Region = getenvDefault("QUIZMENTOR_SES_REGION", c.SES.Region)
	c.SES.From = os.Getenv("QUIZMENTOR_SES_FROM")
	c.SES.To = os.Getenv("QUIZMENTOR_OPERATOR_EMAIL")

	c.LogLevel = getenvDefault("QUIZMENTOR_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenvDefault("QUIZMENTOR_LOG_FORMAT", c.LogFormat)

	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case "sqlite", "file", "memory":
	case "postgres", "postgresql", "mysql":
		if c.Store.DSN == "" {
			return fmt.Errorf("config: QUIZMENTOR_DATABASE_URL is required for the %s store", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store.Driver)
	}
	if c.MiniTestSize <= 0 || c.FullTestSize <= 0 {
		return fmt.Errorf("config: test sizes must be positive")
	}
	if c.DailyFreeSessions <= 0 {
		return fmt.Errorf("config: daily free sessions must be positive")
	}
	if c.WeakThreshold < 0 || c.WeakThreshold > 1 {
		return fmt.Errorf("config: weak threshold %.2f outside [0,1]", c.WeakThreshold)
	}
	return nil
}

// IsPremiumUser reports whether id is on the configured premium list.
func (c *Config) IsPremiumUser(id int64) bool {
	for _, p := range c.PremiumUsers {
		if p == id {
			return true
		}
	}
	return false
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getenvInt(k string, fallback int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s=%q is not an integer", k, v)
	}
	return n, nil
}

func getenvFloat(k string, fallback float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s=%q is not a number", k, v)
	}
	return f, nil
}

func getenvDuration(k string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s=%q is not a valid duration", k, v)
	}
	return d, nil
}

func getenvList(k string, fallback []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvInt64List(k string) ([]int64, error) {
	var out []int64
	for _, s := range getenvList(k, nil) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a user id", k, s)
		}
		out = append(out, n)
	}
	return out, nil
}
