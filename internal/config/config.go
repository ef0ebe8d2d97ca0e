// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kkyr/fig"
)

const (
	configEnv = "SKYCAST"
	appName   = "skycast"

	DefaultCity          = "London"
	DefaultLocationLabel = "Your Location"
	DefaultForecastDays  = 7
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultAPIKeyEnv     = "GEMINI_API_KEY"
)

// Config represents the application's configuration structure.
type Config struct {
	// Allowed values: metric, imperial
	Units string `fig:"units" default:"metric"`
	// Allowed values: dark, light
	Theme    string     `fig:"theme" default:"dark"`
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Search struct {
		DefaultCity   string `fig:"default_city" default:"London"`
		LocationLabel string `fig:"location_label" default:"Your Location"`
	} `fig:"search"`

	Geocoder struct {
		// Allowed values: open-meteo, osm-nominatim, opencage, geocode-earth
		Provider string `fig:"provider" default:"open-meteo"`
		Language string `fig:"language" default:"en"`
		APIKey   string `fig:"apikey"`
	} `fig:"geocoder"`

	Weather struct {
		// Allowed values: 5 to 16
		ForecastDays uint `fig:"forecast_days" default:"7"`
	} `fig:"weather"`

	Advisory struct {
		// Allowed values: gemini, ollama, none
		Backend string `fig:"backend" default:"gemini"`
		Model   string `fig:"model"`
		// Allowed values: env, keystore
		KeySource string        `fig:"key_source" default:"env"`
		KeyEnv    string        `fig:"key_env" default:"GEMINI_API_KEY"`
		KeyFile   string        `fig:"key_file"`
		OllamaURL string        `fig:"ollama_url" default:"http://localhost:11434"`
		Timeout   time.Duration `fig:"timeout" default:"20s"`
	} `fig:"advisory"`

	GeoLocation struct {
		Disabled               bool          `fig:"disabled"`
		File                   string        `fig:"file"`
		Timeout                time.Duration `fig:"timeout" default:"10s"`
		DisableGeolocationFile bool          `fig:"disable_geolocation_file"`
		DisableGPSD            bool          `fig:"disable_gpsd"`
		DisableICHNAEA         bool          `fig:"disable_ichnaea"`
		DisableGeoIP           bool          `fig:"disable_geoip"`
		DisableGeoAPI          bool          `fig:"disable_geoapi"`
	} `fig:"geolocation"`

	Intervals struct {
		WeatherUpdate time.Duration `fig:"weather_update" default:"15m"`
	} `fig:"intervals"`

	Templates struct {
		Dashboard string `fig:"dashboard"`
		Table     string `fig:"table"`
	} `fig:"templates"`

	Preferences struct {
		File string `fig:"file"`
	} `fig:"preferences"`

	Server struct {
		Addr           string   `fig:"addr" default:"127.0.0.1:8080"`
		AllowedOrigins []string `fig:"allowed_origins" default:"[*]"`
	} `fig:"server"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = loadDotEnv(); err != nil {
		return conf, err
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := loadDotEnv(); err != nil {
		return conf, err
	}
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	c.Units = strings.ToLower(c.Units)
	if c.Units != "metric" && c.Units != "imperial" {
		return fmt.Errorf("invalid units: %s", c.Units)
	}
	c.Theme = strings.ToLower(c.Theme)
	if c.Theme != "dark" && c.Theme != "light" {
		return fmt.Errorf("invalid theme: %s", c.Theme)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}

	if strings.TrimSpace(c.Search.DefaultCity) == "" {
		c.Search.DefaultCity = DefaultCity
	}
	if c.Search.LocationLabel == "" {
		c.Search.LocationLabel = DefaultLocationLabel
	}

	switch c.Geocoder.Provider {
	case "open-meteo", "osm-nominatim":
	case "opencage", "geocode-earth":
		if c.Geocoder.APIKey == "" {
			return fmt.Errorf("geocoder %s requires an API key", c.Geocoder.Provider)
		}
	default:
		return fmt.Errorf("invalid geocoder provider: %s", c.Geocoder.Provider)
	}
	if c.Geocoder.Language == "" {
		c.Geocoder.Language = "en"
	}

	if c.Weather.ForecastDays < 5 || c.Weather.ForecastDays > 16 {
		return fmt.Errorf("invalid forecast days: %d", c.Weather.ForecastDays)
	}

	switch c.Advisory.Backend {
	case "gemini":
		if c.Advisory.Model == "" {
			c.Advisory.Model = DefaultGeminiModel
		}
	case "ollama":
		if c.Advisory.Model == "" {
			return errors.New("advisory backend ollama requires a model")
		}
		if c.Advisory.OllamaURL == "" {
			return errors.New("advisory backend ollama requires a URL")
		}
	case "none":
	default:
		return fmt.Errorf("invalid advisory backend: %s", c.Advisory.Backend)
	}
	switch c.Advisory.KeySource {
	case "env":
		if c.Advisory.KeyEnv == "" {
			c.Advisory.KeyEnv = DefaultAPIKeyEnv
		}
	case "keystore":
	default:
		return fmt.Errorf("invalid advisory key source: %s", c.Advisory.KeySource)
	}
	if c.Advisory.Timeout <= 0 {
		return fmt.Errorf("invalid advisory timeout: %s", c.Advisory.Timeout)
	}

	if c.Intervals.WeatherUpdate < time.Minute {
		return fmt.Errorf("invalid weather update interval: %s", c.Intervals.WeatherUpdate)
	}

	home, _ := os.UserHomeDir()
	if c.Advisory.KeyFile == "" {
		c.Advisory.KeyFile = filepath.Join(home, ".config", appName, "apikey")
	}
	if c.GeoLocation.File == "" {
		c.GeoLocation.File = filepath.Join(home, ".config", appName, "geolocation")
	}
	if c.Preferences.File == "" {
		c.Preferences.File = filepath.Join(home, ".config", appName, "preferences.toml")
	}

	return nil
}

// loadDotEnv loads a .env file from the working directory into the process environment.
// A missing file is not an error. Variables already set take precedence.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env file: %w", err)
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
