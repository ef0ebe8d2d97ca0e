// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

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
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"
)

type OpenCage struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
	Status       Status   `json:"status"`
}

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	Components  Components `json:"components"`
	DisplayName string     `json:"formatted"`
	Geometry    Geometry   `json:"geometry"`
}

type Components struct {
	NomalizedCity string `json:"_normalized_city"`
	City          string `json:"city"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
	Town          string `json:"town"`
	Village       string `json:"village"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func New(client *http.Client, lang language.Tag, apikey string) *OpenCage {
	return &OpenCage{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (o *OpenCage) Name() string {
	return name
}

// Resolve performs a forward lookup of the city name. The place name is taken from the
// normalized city component and falls back to the formatted address.
func (o *OpenCage) Resolve(ctx context.Context, city string) (weather.GeoLocation, error) {
	var response Response

	query := url.Values{}
	query.Set("key", o.apikey)
	query.Set("q", city)
	query.Set("limit", "1")
	query.Set("no_annotations", "1")
	query.Set("no_record", "1")
	query.Set("language", o.lang.String())

	code, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, APITimeout)
	if err != nil {
		return weather.GeoLocation{}, fmt.Errorf("failed to retrieve location from OpenCage API: %w", err)
	}
	if code != 200 {
		return weather.GeoLocation{}, fmt.Errorf("received non-positive response code from OpenCage API: %d (%s)",
			code, response.Status.Message)
	}
	if len(response.Results) < 1 {
		return weather.GeoLocation{}, fmt.Errorf("%w: %q", weather.ErrCityNotFound, city)
	}

	result := response.Results[0]
	location := weather.GeoLocation{
		Name:      result.Components.NomalizedCity,
		Latitude:  result.Geometry.Lat,
		Longitude: result.Geometry.Lon,
	}
	switch {
	case location.Name != "":
	case result.Components.City != "":
		location.Name = result.Components.City
	case result.Components.Town != "":
		location.Name = result.Components.Town
	case result.Components.Village != "":
		location.Name = result.Components.Village
	default:
		location.Name = result.DisplayName
	}

	return location, nil
}
