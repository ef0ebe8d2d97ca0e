// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoapi

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wneessen/skycast/internal/geolocation"
	"github.com/wneessen/skycast/internal/http"
)

const (
	apiEndpoint   = "https://geoapi.info/api/geo"
	lookupTimeout = time.Second * 5
	name          = "geoapi"
)

type GeolocationGeoAPIProvider struct {
	name string
	http *http.Client
}

type APIResult struct {
	IP       string `json:"ip"`
	Location struct {
		CountryCode string `json:"country,omitempty"`
		Country     string `json:"countryName,omitempty"`
		Region      string `json:"region,omitempty"`
		City        string `json:"city,omitempty"`
		ZipCode     string `json:"postalCode,omitempty"`
		TimeZone    string `json:"timezone"`
		Coordinates struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"coordinates"`
	} `json:"location"`
}

func NewGeolocationGeoAPIProvider(http *http.Client) (*GeolocationGeoAPIProvider, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	return &GeolocationGeoAPIProvider{
		name: name,
		http: http,
	}, nil
}

func (p *GeolocationGeoAPIProvider) Name() string {
	return p.name
}

// Locate looks up the public IP address of the host via geoapi.info.
func (p *GeolocationGeoAPIProvider) Locate(ctx context.Context) (geolocation.Coordinate, error) {
	result := new(APIResult)
	code, err := p.http.GetWithTimeout(ctx, apiEndpoint, result, nil, nil, lookupTimeout)
	if err != nil {
		return geolocation.Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if code != 200 {
		return geolocation.Coordinate{}, fmt.Errorf("geolocation API returned non-positive response code: %d", code)
	}

	acc := float64(geolocation.AccuracyUnknown)
	if result.Location.CountryCode != "" {
		acc = geolocation.AccuracyCountry
	}
	if result.Location.Region != "" {
		acc = geolocation.AccuracyRegion
	}
	if result.Location.City != "" {
		acc = geolocation.AccuracyCity
	}
	if result.Location.ZipCode != "" {
		acc = geolocation.AccuracyZip
	}

	lat, err := strconv.ParseFloat(result.Location.Coordinates.Latitude, 64)
	if err != nil {
		return geolocation.Coordinate{}, fmt.Errorf("failed to parse latitude from API response: %w", err)
	}
	lon, err := strconv.ParseFloat(result.Location.Coordinates.Longitude, 64)
	if err != nil {
		return geolocation.Coordinate{}, fmt.Errorf("failed to parse longitude from API response: %w", err)
	}

	return geolocation.Coordinate{
		Lat: geolocation.Truncate(lat, geolocation.TruncPrecision),
		Lon: geolocation.Truncate(lon, geolocation.TruncPrecision),
		Acc: acc,
	}, nil
}
