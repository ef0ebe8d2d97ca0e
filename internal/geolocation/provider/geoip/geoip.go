// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/skycast/internal/geolocation"
	"github.com/wneessen/skycast/internal/http"
)

const (
	APIEndpoint   = "https://reallyfreegeoip.org/json/"
	LookupTimeout = time.Second * 5
	name          = "geoip"
)

type GeolocationGeoIPProvider struct {
	name string
	http *http.Client
}

type APIResult struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country_name"`
	RegionCode  string  `json:"region_code,omitempty"`
	Region      string  `json:"region_name,omitempty"`
	City        string  `json:"city,omitempty"`
	ZipCode     string  `json:"zip_code,omitempty"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	MetroCode   int     `json:"metro_code"`
}

func NewGeolocationGeoIPProvider(http *http.Client) (*GeolocationGeoIPProvider, error) {
	if http == nil {
		return nil, errors.New("http client is required")
	}
	return &GeolocationGeoIPProvider{
		name: name,
		http: http,
	}, nil
}

func (p *GeolocationGeoIPProvider) Name() string {
	return p.name
}

// Locate looks up the public IP address of the host. The accuracy reflects the most specific
// address part the API returned.
func (p *GeolocationGeoIPProvider) Locate(ctx context.Context) (geolocation.Coordinate, error) {
	result := new(APIResult)
	code, err := p.http.GetWithTimeout(ctx, APIEndpoint, result, nil, nil, LookupTimeout)
	if err != nil {
		return geolocation.Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if code != 200 {
		return geolocation.Coordinate{}, fmt.Errorf("geolocation API returned non-positive response code: %d", code)
	}
	if result.CountryCode == "" && result.Latitude == 0 && result.Longitude == 0 {
		return geolocation.Coordinate{}, errors.New("geolocation API returned no location")
	}

	acc := float64(geolocation.AccuracyUnknown)
	switch {
	case result.ZipCode != "":
		acc = geolocation.AccuracyZip
	case result.City != "":
		acc = geolocation.AccuracyCity
	case result.RegionCode != "":
		acc = geolocation.AccuracyRegion
	case result.CountryCode != "":
		acc = geolocation.AccuracyCountry
	}

	return geolocation.Coordinate{
		Lat: geolocation.Truncate(result.Latitude, geolocation.TruncPrecision),
		Lon: geolocation.Truncate(result.Longitude, geolocation.TruncPrecision),
		Acc: acc,
	}, nil
}
