// Package config loads the client's static settings from .env, the
// environment and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ngmaloney/weather-terminal/internal/database"
	"github.com/ngmaloney/weather-terminal/internal/models"
)

// Config holds everything fixed at startup
type Config struct {
	BaseURL         string        `validate:"required,url"`
	RefreshInterval time.Duration `validate:"min=1s"`
	Debounce        time.Duration `validate:"min=0s"`
	MinQueryLength  int           `validate:"min=1"`
	RequestTimeout  time.Duration `validate:"min=1ms"`
	HealthTimeout   time.Duration `validate:"min=1ms"`
	SlowThreshold   time.Duration `validate:"min=0s"`

	DefaultRegion string `validate:"required,alpha,max=3"`
	Location      string `validate:"required"`
	Units         string `validate:"oneof=metric imperial standard"`

	DBPath  string `validate:"required"`
	LogFile string
}

var validate = validator.New()

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		BaseURL:         "http://localhost:5000/api",
		RefreshInterval: 10 * time.Minute,
		Debounce:        300 * time.Millisecond,
		MinQueryLength:  2,
		RequestTimeout:  10 * time.Second,
		HealthTimeout:   5 * time.Second,
		SlowThreshold:   2 * time.Second,
		DefaultRegion:   "UK",
		Location:        "London, UK",
		Units:           string(models.Metric),
		DBPath:          database.DBPath(),
	}
}

// Load reads .env from the working directory if present, then the
// environment, and validates the result.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit .env path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	cfg := Defaults()
	cfg.BaseURL = getenvDefault("WEATHER_BASE_URL", cfg.BaseURL)
	cfg.Location = getenvDefault("WEATHER_LOCATION", cfg.Location)
	cfg.Units = getenvDefault("WEATHER_UNITS", cfg.Units)
	cfg.DefaultRegion = getenvDefault("WEATHER_DEFAULT_REGION", cfg.DefaultRegion)
	cfg.DBPath = getenvDefault("WEATHER_DB", cfg.DBPath)
	cfg.LogFile = getenvDefault("WEATHER_LOG_FILE", cfg.LogFile)
	cfg.MinQueryLength = getenvInt("WEATHER_MIN_QUERY_LENGTH", cfg.MinQueryLength)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"WEATHER_REFRESH_INTERVAL", &cfg.RefreshInterval},
		{"WEATHER_DEBOUNCE", &cfg.Debounce},
		{"WEATHER_REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"WEATHER_HEALTH_TIMEOUT", &cfg.HealthTimeout},
		{"WEATHER_SLOW_THRESHOLD", &cfg.SlowThreshold},
	}
	for _, d := range durations {
		v, err := getenvDuration(d.key, *d.dst)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config %s: %q fails %s", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// UnitSystem returns Units as a models.UnitSystem
func (c *Config) UnitSystem() models.UnitSystem {
	u, err := models.ParseUnitSystem(c.Units)
	if err != nil {
		return models.Metric
	}
	return u
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
