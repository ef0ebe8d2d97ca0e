// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"time"

	"github.com/vorlif/spreak/localize"

	"github.com/wneessen/skycast/internal/weather"
)

// MoonPhaseIcon is a map where moon phase names are keys and their corresponding emoji representations are values.
var MoonPhaseIcon = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

// ConditionIcons maps each condition to a day and night emoji.
var ConditionIcons = map[weather.Condition]map[bool]string{
	weather.Clear:        {true: "☀️", false: "🌙"},
	weather.Cloudy:       {true: "⛅", false: "☁️"},
	weather.Rainy:        {true: "🌧️", false: "🌧️"},
	weather.Snowy:        {true: "🌨️", false: "🌨️"},
	weather.Thunderstorm: {true: "⛈️", false: "⛈️"},
	weather.Unknown:      {true: "❔", false: "❔"},
}

// WMOWeatherCodes maps WMO weather code integers to their descriptions
var WMOWeatherCodes = map[int]localize.MsgID{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

var weekdays = map[time.Weekday]localize.MsgID{
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
	time.Sunday:    "Sun",
}

var i18nVars = map[string]localize.MsgID{
	"temp":            "Temperature",
	"humidity":        "Humidity",
	"wind":            "Wind",
	"feelslike":       "Feels like",
	"condition":       "Condition",
	"city":            "City",
	"forecast":        "5-Day Forecast",
	"today":           "Today",
	"loading":         "Loading...",
	"globalforecasts": "Global Forecasts",
	"citiestracked":   "Cities Tracked",
	"page":            "Page",
	"unavailable":     "unavailable",
	"sunrise":         "Sunrise",
	"sunset":          "Sunset",
	"moonphase":       "Moonphase",
	"new moon":        "New moon",
	"waxing crescent": "Waxing crescent",
	"first quarter":   "First quarter",
	"waxing gibbous":  "Waxing gibbous",
	"full moon":       "Full moon",
	"waning gibbous":  "Waning gibbous",
	"third quarter":   "Third quarter",
	"waning crescent": "Waning crescent",
}

// themeColors holds the ANSI sequences for each named color of a theme.
var themeColors = map[string]map[string]string{
	"dark": {
		"accent": "\033[1;36m",
		"muted":  "\033[90m",
		"error":  "\033[1;31m",
		"warm":   "\033[33m",
	},
	"light": {
		"accent": "\033[1;34m",
		"muted":  "\033[37m",
		"error":  "\033[31m",
		"warm":   "\033[35m",
	},
}

const colorReset = "\033[0m"
