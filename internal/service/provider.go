// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/wneessen/skycast/internal/advisory"
	"github.com/wneessen/skycast/internal/config"
	"github.com/wneessen/skycast/internal/geocode"
	geocodeearth "github.com/wneessen/skycast/internal/geocode/provider/geocode-earth"
	geocodeom "github.com/wneessen/skycast/internal/geocode/provider/open-meteo"
	"github.com/wneessen/skycast/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/skycast/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/skycast/internal/geolocation"
	"github.com/wneessen/skycast/internal/geolocation/provider/geoapi"
	"github.com/wneessen/skycast/internal/geolocation/provider/geoip"
	"github.com/wneessen/skycast/internal/geolocation/provider/geolocation_file"
	"github.com/wneessen/skycast/internal/geolocation/provider/gpsd"
	"github.com/wneessen/skycast/internal/geolocation/provider/ichnaea"
	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/preferences"
	"github.com/wneessen/skycast/internal/weather"
	weatherom "github.com/wneessen/skycast/internal/weather/provider/open-meteo"
)

// selectLocator builds the geolocation chain in priority order. Local sources come first so
// that network lookups are only made if they cannot answer.
func (s *Service) selectLocator() (*geolocation.Locator, error) {
	conf := s.config.GeoLocation
	var providers []geolocation.Provider

	if !conf.DisableGeolocationFile {
		providers = append(providers, geolocation_file.NewGeolocationFileProvider(conf.File))
	}

	if !conf.DisableGPSD {
		providers = append(providers, gpsd.NewGeolocationGPSDProvider())
	}

	if !conf.DisableICHNAEA {
		mls, err := ichnaea.NewGeolocationICHNAEAProvider(s.http)
		if err != nil {
			s.logger.Error("failed to create ICHNAEA provider", logger.Err(err))
		} else {
			providers = append(providers, mls)
		}
	}

	if !conf.DisableGeoIP {
		gip, err := geoip.NewGeolocationGeoIPProvider(s.http)
		if err != nil {
			return nil, fmt.Errorf("failed to create GeoIP provider: %w", err)
		}
		providers = append(providers, gip)
	}

	if !conf.DisableGeoAPI {
		gap, err := geoapi.NewGeolocationGeoAPIProvider(s.http)
		if err != nil {
			return nil, fmt.Errorf("failed to create GeoAPI provider: %w", err)
		}
		providers = append(providers, gap)
	}

	return geolocation.New(s.logger, conf.Disabled, conf.Timeout, providers...), nil
}

func (s *Service) selectGeocodeProvider(lang language.Tag) (geocode.Resolver, error) {
	conf := s.config.Geocoder
	switch strings.ToLower(conf.Provider) {
	case "open-meteo":
		return geocodeom.New(s.http, lang), nil
	case "osm-nominatim":
		return nominatim.New(s.http, lang), nil
	case "opencage":
		if conf.APIKey == "" {
			return nil, fmt.Errorf("opencage geocoder requires an API key")
		}
		return opencage.New(s.http, lang, conf.APIKey), nil
	case "geocode-earth":
		if conf.APIKey == "" {
			return nil, fmt.Errorf("geocode-earth geocoder requires an API key")
		}
		return geocodeearth.New(s.http, lang, conf.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.Provider)
	}
}

func (s *Service) selectWeatherProvider() (weather.Provider, error) {
	provider, err := weatherom.New(s.http, s.logger, int(s.config.Weather.ForecastDays))
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo weather provider: %w", err)
	}
	return provider, nil
}

// selectAdvisor returns the advisory generator for the configured backend. The "none" backend
// yields a generator that always answers with the default advice.
func (s *Service) selectAdvisor() (*advisory.Generator, error) {
	conf := s.config.Advisory
	var backend advisory.Backend

	switch strings.ToLower(conf.Backend) {
	case "gemini":
		creds, err := s.selectCredentials()
		if err != nil {
			return nil, err
		}
		gemini, err := advisory.NewGemini(s.http, creds, conf.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini backend: %w", err)
		}
		backend = gemini
	case "ollama":
		ollama, err := advisory.NewOllama(s.http, conf.OllamaURL, conf.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama backend: %w", err)
		}
		backend = ollama
	case "none":
	default:
		return nil, fmt.Errorf("unsupported advisory backend: %s", conf.Backend)
	}

	return advisory.New(backend, s.logger, conf.Timeout), nil
}

func (s *Service) selectCredentials() (advisory.CredentialProvider, error) {
	conf := s.config.Advisory
	switch strings.ToLower(conf.KeySource) {
	case "env":
		return advisory.NewEnvCredentials(conf.KeyEnv), nil
	case "keystore":
		return advisory.NewKeyStoreCredentials(conf.KeyFile), nil
	default:
		return nil, fmt.Errorf("unsupported advisory key source: %s", conf.KeySource)
	}
}

// defaultPreferences derives the unit and theme used until the user has saved a choice.
func defaultPreferences(conf *config.Config) preferences.Preferences {
	prefs := preferences.Preferences{Unit: weather.Celsius, Theme: preferences.ThemeDark}
	if unit, err := weather.ParseUnit(conf.Units); err == nil {
		prefs.Unit = unit
	}
	if theme, err := preferences.ParseTheme(conf.Theme); err == nil {
		prefs.Theme = theme
	}
	return prefs
}
