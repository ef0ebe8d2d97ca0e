// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"

	"github.com/wneessen/skycast/internal/preferences"
	"github.com/wneessen/skycast/internal/weather"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"temp":          temp,
		"feelsLike":     feelsLike,
		"weekday":       p.weekday,
		"icon":          icon,
		"describe":      p.describe,
		"loc":           p.loc,
		"pad":           pad,
		"date":          p.date,
		"localizedTime": p.localizedTime,
		"floatFormat":   floatFormat,
		"color":         p.color,
		"lc":            strings.ToLower,
		"uc":            strings.ToUpper,
	}
}

// temp converts a Celsius value into unit and formats it with its symbol.
func temp(celsius float64, unit weather.Unit) string {
	return fmt.Sprintf("%d%s", unit.Convert(celsius), unit.Symbol())
}

// feelsLike approximates the apparent temperature as one degree below the measured value.
func feelsLike(celsius float64, unit weather.Unit) string {
	return temp(celsius-1, unit)
}

func (p *Presenter) weekday(index int, date string) string {
	if index == 0 {
		return p.localizer.Get(i18nVars["today"])
	}
	day := weather.ForecastDay{Date: date}.Time()
	if day.IsZero() {
		return date
	}
	return p.localizer.Get(weekdays[day.Weekday()])
}

func icon(cond weather.Condition, isDay ...bool) string {
	day := true
	if len(isDay) > 0 {
		day = isDay[0]
	}
	icons, ok := ConditionIcons[cond]
	if !ok {
		icons = ConditionIcons[weather.Unknown]
	}
	return icons[day]
}

// describe returns the localized WMO description of a weather code.
func (p *Presenter) describe(code int) string {
	if raw, ok := WMOWeatherCodes[code]; ok {
		return p.localizer.Get(raw)
	}
	return p.loc(weather.Classify(code).String())
}

func (p *Presenter) loc(val string) string {
	if raw, ok := i18nVars[strings.ToLower(val)]; ok {
		return p.localizer.Get(raw)
	}
	return p.localizer.Get(val)
}

// pad fills val with spaces up to the given display width. Wide runes such as emoji count
// with their terminal width.
func pad(val string, width int) string {
	return runewidth.FillRight(val, width)
}

func (p *Presenter) date(val string) string {
	day := weather.ForecastDay{Date: val}.Time()
	if day.IsZero() {
		return val
	}
	return p.humanizer.FormatTime(day, humanize.DateFormat)
}

func (p *Presenter) localizedTime(val time.Time) string {
	return p.humanizer.FormatTime(val, humanize.TimeFormat)
}

func floatFormat(val float64, precision int) string {
	pow := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Trunc(val*pow)/pow)
}

// color wraps val in the ANSI sequence of the named color of theme.
func (p *Presenter) color(theme preferences.Theme, name, val string) string {
	if !p.colors {
		return val
	}
	code, ok := themeColors[string(theme)][name]
	if !ok {
		return val
	}
	return code + val + colorReset
}
