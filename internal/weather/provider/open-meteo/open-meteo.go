// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/skycast/internal/http"
	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/weather"
)

const (
	name        = "open-meteo"
	apiEndpoint = "https://api.open-meteo.com/v1/forecast"
	apiTimeout  = time.Second * 10

	// DefaultForecastDays is the forward window requested from the API. The result is capped
	// to weather.ForecastDays regardless.
	DefaultForecastDays = 7
)

var (
	currentFields = []string{"temperature_2m", "relative_humidity_2m", "weather_code", "wind_speed_10m"}
	dailyFields   = []string{"weather_code", "temperature_2m_max", "temperature_2m_min"}
)

type OpenMeteo struct {
	days int
	log  *logger.Logger
	http *http.Client
}

// response mirrors the parts of the forecast API response we consume. Pointers are used so
// that missing fields can be told apart from zero values.
type response struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Error     bool    `json:"error"`
	Reason    string  `json:"reason"`
	Current   *struct {
		Time             string   `json:"time"`
		Temperature      *float64 `json:"temperature_2m"`
		RelativeHumidity *float64 `json:"relative_humidity_2m"`
		WeatherCode      *int     `json:"weather_code"`
		WindSpeed        *float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily *struct {
		Time           []string   `json:"time"`
		WeatherCode    []*int     `json:"weather_code"`
		TemperatureMax []*float64 `json:"temperature_2m_max"`
		TemperatureMin []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func New(http *http.Client, log *logger.Logger, forecastDays int) (*OpenMeteo, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if forecastDays == 0 {
		forecastDays = DefaultForecastDays
	}
	if forecastDays < weather.ForecastDays || forecastDays > 16 {
		return nil, fmt.Errorf("forecast days must be between %d and 16, got %d", weather.ForecastDays,
			forecastDays)
	}

	return &OpenMeteo{days: forecastDays, http: http, log: log}, nil
}

func (o *OpenMeteo) Name() string {
	return name
}

// FetchWeather retrieves current conditions and the daily forecast for the given coordinates.
// displayName is used verbatim as the city of the current weather.
func (o *OpenMeteo) FetchWeather(ctx context.Context, lat, lon float64, displayName string) (*weather.Report, error) {
	res := new(response)

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("current", strings.Join(currentFields, ","))
	query.Set("daily", strings.Join(dailyFields, ","))
	query.Set("timezone", "auto")
	query.Set("forecast_days", strconv.Itoa(o.days))

	code, err := o.http.GetWithTimeout(ctx, apiEndpoint, res, query, nil, apiTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve weather data from Open-Meteo API: %w",
			weather.ErrWeatherFetchFailed, err)
	}
	if code != 200 {
		return nil, fmt.Errorf("%w: Open-Meteo API returned non-positive response code: %d (%s)",
			weather.ErrWeatherFetchFailed, code, res.Reason)
	}

	current, err := parseCurrent(res, displayName)
	if err != nil {
		return nil, err
	}
	forecast, err := parseDaily(res)
	if err != nil {
		return nil, err
	}
	o.log.Debug("weather data retrieved", slog.String("provider", name), slog.String("city", displayName),
		slog.String("timezone", res.Timezone), slog.Int("days", len(res.Daily.Time)))

	return &weather.Report{
		Location: weather.GeoLocation{
			Name:      displayName,
			Latitude:  lat,
			Longitude: lon,
		},
		Current:   current,
		Forecast:  forecast,
		FetchedAt: time.Now(),
	}, nil
}

func parseCurrent(res *response, displayName string) (weather.CurrentWeather, error) {
	cur := res.Current
	if cur == nil {
		return weather.CurrentWeather{}, fmt.Errorf("%w: response is missing current data", weather.ErrWeatherFetchFailed)
	}
	if cur.Temperature == nil || cur.RelativeHumidity == nil || cur.WeatherCode == nil || cur.WindSpeed == nil {
		return weather.CurrentWeather{}, fmt.Errorf("%w: response is missing current fields",
			weather.ErrWeatherFetchFailed)
	}

	return weather.CurrentWeather{
		City:        displayName,
		Temperature: *cur.Temperature,
		Condition:   weather.Classify(*cur.WeatherCode),
		Humidity:    int(math.Round(*cur.RelativeHumidity)),
		WindSpeed:   *cur.WindSpeed,
		Description: weather.DescriptionCurrent,
		IconCode:    *cur.WeatherCode,
	}, nil
}

// parseDaily converts the index-aligned daily arrays into exactly weather.ForecastDays entries.
func parseDaily(res *response) ([]weather.ForecastDay, error) {
	daily := res.Daily
	if daily == nil {
		return nil, fmt.Errorf("%w: response is missing daily data", weather.ErrWeatherFetchFailed)
	}
	if len(daily.Time) < weather.ForecastDays {
		return nil, fmt.Errorf("%w: response contains %d daily entries, need %d", weather.ErrWeatherFetchFailed,
			len(daily.Time), weather.ForecastDays)
	}
	if len(daily.WeatherCode) < weather.ForecastDays || len(daily.TemperatureMax) < weather.ForecastDays ||
		len(daily.TemperatureMin) < weather.ForecastDays {
		return nil, fmt.Errorf("%w: daily series are not aligned", weather.ErrWeatherFetchFailed)
	}

	days := make([]weather.ForecastDay, 0, weather.ForecastDays)
	for i := range weather.ForecastDays {
		wcode, maxTemp, minTemp := daily.WeatherCode[i], daily.TemperatureMax[i], daily.TemperatureMin[i]
		if wcode == nil || maxTemp == nil || minTemp == nil {
			return nil, fmt.Errorf("%w: daily entry %d is incomplete", weather.ErrWeatherFetchFailed, i)
		}
		days = append(days, weather.ForecastDay{
			Date:      daily.Time[i],
			MaxTemp:   *maxTemp,
			MinTemp:   *minTemp,
			Condition: weather.Classify(*wcode),
			IconCode:  *wcode,
		})
	}
	return days, nil
}
