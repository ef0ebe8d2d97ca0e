// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

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
	APIEndpoint = "https://geocoding-api.open-meteo.com/v1/search"
	APITimeout  = time.Second * 10
	name        = "open-meteo"
)

type OpenMeteo struct {
	http *http.Client
	lang language.Tag
}

type Response struct {
	Results []Result `json:"results"`
	Error   bool     `json:"error"`
	Reason  string   `json:"reason"`
}

type Result struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1"`
	Timezone    string  `json:"timezone"`
}

func New(client *http.Client, lang language.Tag) *OpenMeteo {
	return &OpenMeteo{
		lang: lang,
		http: client,
	}
}

func (o *OpenMeteo) Name() string {
	return name
}

// Resolve looks up the best match for the given city name. Only the first result is considered.
func (o *OpenMeteo) Resolve(ctx context.Context, city string) (weather.GeoLocation, error) {
	var response Response

	base, _ := o.lang.Base()
	query := url.Values{}
	query.Set("name", city)
	query.Set("count", "1")
	query.Set("language", base.String())
	query.Set("format", "json")

	code, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, APITimeout)
	if err != nil {
		return weather.GeoLocation{}, fmt.Errorf("failed to retrieve location from Open-Meteo geocoding API: %w", err)
	}
	if code != 200 {
		return weather.GeoLocation{}, fmt.Errorf("received non-positive response code from Open-Meteo geocoding API: %d (%s)",
			code, response.Reason)
	}
	if len(response.Results) < 1 {
		return weather.GeoLocation{}, fmt.Errorf("%w: %q", weather.ErrCityNotFound, city)
	}

	result := response.Results[0]
	return weather.GeoLocation{
		Name:      result.Name,
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
	}, nil
}
