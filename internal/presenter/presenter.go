// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter renders the dashboard state for the terminal.
package presenter

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"
	"github.com/wneessen/go-moonphase"

	"github.com/wneessen/skycast/internal/config"
	"github.com/wneessen/skycast/internal/dashboard"
	"github.com/wneessen/skycast/internal/preferences"
	"github.com/wneessen/skycast/internal/weather"
)

const DefaultDashboardTemplate = `
{{- if .Error }}{{ color .Theme "error" (loc .Error) }}
{{ end -}}
{{- if .Loading }}{{ color .Theme "muted" (loc "loading") }}
{{ end -}}
{{- with .Current }}{{ color $.Theme "accent" .City }} · {{ loc .Description }}
{{ icon .Condition $.Almanac.IsDay }} {{ temp .Temperature $.Unit }}  {{ loc .Condition.String }} ({{ describe .IconCode }})
{{ loc "feelslike" }}: {{ feelsLike .Temperature $.Unit }} · {{ loc "humidity" }}: {{ .Humidity }}% · {{ loc "wind" }}: {{ floatFormat .WindSpeed 1 }} km/h
{{- end }}
{{- if .Almanac.Valid }}
🌅 {{ localizedTime .Almanac.Sunrise }} • 🌇 {{ localizedTime .Almanac.Sunset }} • {{ .Almanac.MoonIcon }} {{ loc .Almanac.MoonPhase }}
{{- end }}
{{- if .Forecast }}

{{ color .Theme "accent" (loc "forecast") }}
{{- range $i, $day := .Forecast }}
{{ pad (weekday $i $day.Date) 6 }} {{ pad (date $day.Date) 18 }} {{ pad (icon $day.Condition) 3 }} {{ pad (temp $day.MaxTemp $.Unit) 6 }} {{ color $.Theme "muted" (temp $day.MinTemp $.Unit) }}
{{- end }}
{{- end }}

💡 {{ color .Theme "warm" (loc .Advice) }}
`

const DefaultTableTemplate = `{{ color .Theme "accent" (loc "globalforecasts") }} · {{ .Cities }} {{ loc "citiestracked" }}
{{ pad (loc "city") 14 }} {{ pad (loc "temp") 12 }} {{ pad (loc "condition") 14 }} {{ pad (loc "humidity") 17 }} {{ loc "wind" }}
{{- range .Page.Rows }}
{{ pad .Name 14 }} {{ if .Available }}{{ pad (temp .Temperature $.Unit) 12 }} {{ pad (loc .Condition.String) 14 }} {{ pad (printf "%d%%" .Humidity) 17 }} {{ floatFormat .WindSpeed 1 }} km/h{{ else }}{{ color $.Theme "muted" (loc "unavailable") }}{{ end }}
{{- end }}
{{ loc "page" }} {{ .Page.Number }} / {{ .Page.TotalPages }}
`

// Almanac holds sun and moon data for the displayed location.
type Almanac struct {
	Sunrise   time.Time
	Sunset    time.Time
	IsDay     bool
	MoonPhase string
	MoonIcon  string
}

// Valid reports whether sunrise and sunset are known. Both are zero during polar day or night.
func (a Almanac) Valid() bool {
	return !a.Sunrise.IsZero() && !a.Sunset.IsZero()
}

// TemplateContext is the data passed to the dashboard template.
type TemplateContext struct {
	dashboard.State
	Almanac Almanac
}

// TableContext is the data passed to the table template.
type TableContext struct {
	Page   dashboard.TablePage
	Cities int
	Unit   weather.Unit
	Theme  preferences.Theme
}

type Presenter struct {
	DashboardTemplate *template.Template
	TableTemplate     *template.Template

	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
	colors    bool
}

// New parses the configured templates, falling back to the defaults for empty ones. Colors are
// disabled if NO_COLOR is set.
func New(conf *config.Config, loc *spreak.Localizer) (*Presenter, error) {
	collection, err := humanize.New(humanize.WithLocale(de.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create humanizer: %w", err)
	}
	pres := &Presenter{
		localizer: loc,
		humanizer: collection.CreateHumanizer(loc.Language()),
		colors:    os.Getenv("NO_COLOR") == "",
	}

	dashTpl := conf.Templates.Dashboard
	if dashTpl == "" {
		dashTpl = DefaultDashboardTemplate
	}
	pres.DashboardTemplate, err = template.New("dashboard").Funcs(pres.templateFuncMap()).Parse(dashTpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	tableTpl := conf.Templates.Table
	if tableTpl == "" {
		tableTpl = DefaultTableTemplate
	}
	pres.TableTemplate, err = template.New("table").Funcs(pres.templateFuncMap()).Parse(tableTpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse table template: %w", err)
	}

	return pres, nil
}

// BuildContext derives the template data from the state. The almanac is computed for the
// displayed location at the given time.
func (p *Presenter) BuildContext(state dashboard.State, now time.Time) TemplateContext {
	tplCtx := TemplateContext{State: state, Almanac: Almanac{IsDay: true}}
	if state.Location == nil {
		return tplCtx
	}

	rise, set := sunrise.SunriseSunset(state.Location.Latitude, state.Location.Longitude, now.Year(),
		now.Month(), now.Day())
	moon := moonphase.New(now)
	tplCtx.Almanac = Almanac{
		Sunrise:   rise,
		Sunset:    set,
		IsDay:     true,
		MoonPhase: moon.PhaseName(),
		MoonIcon:  MoonPhaseIcon[moon.PhaseName()],
	}
	if tplCtx.Almanac.Valid() {
		tplCtx.Almanac.IsDay = now.After(rise) && now.Before(set)
	}
	return tplCtx
}

// Render executes the dashboard template.
func (p *Presenter) Render(tplCtx TemplateContext) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := p.DashboardTemplate.Execute(buf, tplCtx); err != nil {
		return "", fmt.Errorf("failed to render dashboard template: %w", err)
	}
	return buf.String(), nil
}

// RenderTable executes the table template for the given page.
func (p *Presenter) RenderTable(page dashboard.TablePage, cities int, unit weather.Unit,
	theme preferences.Theme,
) (string, error) {
	buf := bytes.NewBuffer(nil)
	tplCtx := TableContext{Page: page, Cities: cities, Unit: unit, Theme: theme}
	if err := p.TableTemplate.Execute(buf, tplCtx); err != nil {
		return "", fmt.Errorf("failed to render table template: %w", err)
	}
	return buf.String(), nil
}
