// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/skycast/internal/http"
	"github.com/wneessen/skycast/internal/weather"
)

const (
	APISearchEndpoint = "https://nominatim.openstreetmap.org/search"
	APITimeout        = time.Second * 10
	name              = "osm-nominatim"
)

type Nominatim struct {
	http *http.Client
	lang language.Tag
}

type SearchResult struct {
	APILat      string `json:"lat"`
	APILon      string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Addresstype string `json:"addresstype"`
}

func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang: lang,
		http: client,
	}
}

func (n *Nominatim) Name() string {
	return name
}

// Resolve searches Nominatim for the given city and returns the top ranked place.
func (n *Nominatim) Resolve(ctx context.Context, city string) (weather.GeoLocation, error) {
	var result []SearchResult

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("q", city)
	query.Set("limit", "1")
	query.Set("accept-language", n.lang.String())

	code, err := n.http.GetWithTimeout(ctx, APISearchEndpoint, &result, query, nil, APITimeout)
	if err != nil {
		return weather.GeoLocation{}, fmt.Errorf("failed to fetch location details from Nominatim API: %w", err)
	}
	if code != 200 {
		return weather.GeoLocation{}, fmt.Errorf("received non-positive response code from Nominatim API: %d", code)
	}
	if len(result) < 1 {
		return weather.GeoLocation{}, fmt.Errorf("%w: %q", weather.ErrCityNotFound, city)
	}

	location := weather.GeoLocation{Name: result[0].Name}
	if location.Name == "" {
		location.Name = result[0].DisplayName
	}
	location.Latitude, err = strconv.ParseFloat(result[0].APILat, 64)
	if err != nil {
		return weather.GeoLocation{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	location.Longitude, err = strconv.ParseFloat(result[0].APILon, 64)
	if err != nil {
		return weather.GeoLocation{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return location, nil
}
