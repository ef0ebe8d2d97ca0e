// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/skycast/internal/http"
	"github.com/wneessen/skycast/internal/weather"
)

const (
	APIEndpoint = "https://api.geocode.earth/v1/search"
	APITimeout  = time.Second * 10
	name        = "geocode-earth"
)

type GeocodeEarth struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Features []Feature `json:"features"`
	Type     string    `json:"type"`
}

type Feature struct {
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
	Type       string     `json:"type"`
}

// Geometry is a GeoJSON point. Coordinates are ordered longitude, latitude.
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
	Type        string    `json:"type"`
}

type Properties struct {
	Name        string `json:"name"`
	DisplayName string `json:"label"`
	City        string `json:"locality"`
	Country     string `json:"country"`
	Layer       string `json:"layer"`
}

func New(client *http.Client, lang language.Tag, apikey string) *GeocodeEarth {
	return &GeocodeEarth{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (g *GeocodeEarth) Name() string {
	return name
}

// Resolve performs a forward search for the city name, restricted to the best match.
func (g *GeocodeEarth) Resolve(ctx context.Context, city string) (weather.GeoLocation, error) {
	var response Response

	query := url.Values{}
	query.Set("api_key", g.apikey)
	query.Set("text", city)
	query.Set("size", "1")
	query.Set("lang", g.lang.String())

	code, err := g.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, APITimeout)
	if err != nil {
		return weather.GeoLocation{}, fmt.Errorf("failed to retrieve location from geocode.earth API: %w", err)
	}
	if code != 200 {
		return weather.GeoLocation{}, fmt.Errorf("received non-positive response code from geocode.earth API: %d", code)
	}
	if len(response.Features) < 1 {
		return weather.GeoLocation{}, fmt.Errorf("%w: %q", weather.ErrCityNotFound, city)
	}

	feature := response.Features[0]
	if len(feature.Geometry.Coordinates) < 2 {
		return weather.GeoLocation{}, fmt.Errorf("geocode.earth API returned invalid geometry for %q", city)
	}
	location := weather.GeoLocation{
		Name:      feature.Properties.Name,
		Latitude:  feature.Geometry.Coordinates[1],
		Longitude: feature.Geometry.Coordinates[0],
	}
	if location.Name == "" {
		location.Name = feature.Properties.DisplayName
	}

	return location, nil
}
