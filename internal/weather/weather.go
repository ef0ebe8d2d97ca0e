// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package weather holds the domain model shared by the geocoding resolvers, the forecast
// providers and the dashboard.
package weather

import (
	"context"
	"errors"
	"time"
)

// ForecastDays is the number of daily entries a Report always carries. Index 0 is today.
const ForecastDays = 5

// DescriptionCurrent is the description attached to every CurrentWeather.
const DescriptionCurrent = "Current Conditions"

var (
	// ErrEmptyInput is returned when a search is attempted with blank input. No network call
	// is made in that case.
	ErrEmptyInput = errors.New("search input is empty")

	// ErrCityNotFound is returned when the geocoding lookup yields no result.
	ErrCityNotFound = errors.New("city not found")

	// ErrWeatherFetchFailed is returned when the forecast request fails or the response is
	// malformed.
	ErrWeatherFetchFailed = errors.New("failed to fetch weather data")
)

// Provider is implemented by each weather API backend.
type Provider interface {
	Name() string
	FetchWeather(ctx context.Context, lat, lon float64, displayName string) (*Report, error)
}

// GeoLocation is a resolved place with its display name.
type GeoLocation struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentWeather is the current conditions snapshot. Values are stored as reported by
// upstream in °C, % and km/h.
type CurrentWeather struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	Condition   Condition `json:"condition"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	Description string    `json:"description"`
	IconCode    int       `json:"iconCode"`
}

// ForecastDay is a single day of the daily forecast.
type ForecastDay struct {
	Date      string    `json:"date"`
	MaxTemp   float64   `json:"maxTemp"`
	MinTemp   float64   `json:"minTemp"`
	Condition Condition `json:"condition"`
	IconCode  int       `json:"iconCode"`
}

// Report is the normalized result of a single forecast request.
type Report struct {
	Location  GeoLocation    `json:"location"`
	Current   CurrentWeather `json:"current"`
	Forecast  []ForecastDay  `json:"forecast"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// Time parses the ISO-8601 date of the forecast day. A zero time is returned if the date
// cannot be parsed.
func (d ForecastDay) Time() time.Time {
	t, err := time.Parse(time.DateOnly, d.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
