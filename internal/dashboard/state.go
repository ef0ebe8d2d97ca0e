// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package dashboard

import (
	"slices"
	"time"

	"github.com/wneessen/skycast/internal/advisory"
	"github.com/wneessen/skycast/internal/preferences"
	"github.com/wneessen/skycast/internal/weather"
)

// State is the complete dashboard state. All transitions return a new State and leave the
// receiver untouched. Transitions carrying a request ID only apply when the ID matches the
// most recently issued request.
type State struct {
	RequestID       uint64                  `json:"requestId"`
	ReportID        uint64                  `json:"reportId"`
	Loading         bool                    `json:"loading"`
	Error           string                  `json:"error,omitempty"`
	Current         *weather.CurrentWeather `json:"current,omitempty"`
	Forecast        []weather.ForecastDay   `json:"forecast,omitempty"`
	Location        *weather.GeoLocation    `json:"location,omitempty"`
	Advice          string                  `json:"advice"`
	AdviceGenerated bool                    `json:"adviceGenerated"`
	Unit            weather.Unit            `json:"unit"`
	Theme           preferences.Theme       `json:"theme"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// NewState returns the initial state for the given preferences.
func NewState(prefs preferences.Preferences) State {
	return State{
		Advice: advisory.DefaultAdvice,
		Unit:   prefs.Unit,
		Theme:  prefs.Theme,
	}
}

// Begin marks the start of request id. Errors of a previous request are cleared, the
// displayed weather is kept until the new result arrives.
func (s State) Begin(id uint64) State {
	s = s.Clone()
	s.RequestID = id
	s.Loading = true
	s.Error = ""
	return s
}

// Succeed applies the report of request id.
func (s State) Succeed(id uint64, report *weather.Report) (State, bool) {
	if id != s.RequestID || report == nil {
		return s, false
	}
	s = s.Clone()
	current := report.Current
	location := report.Location
	s.Current = &current
	s.Location = &location
	s.Forecast = slices.Clone(report.Forecast)
	s.ReportID = id
	s.Loading = false
	s.Error = ""
	s.UpdatedAt = report.FetchedAt
	return s, true
}

// Fail records the failure of request id. Previously displayed weather is retained.
func (s State) Fail(id uint64, msg string) (State, bool) {
	if id != s.RequestID {
		return s, false
	}
	s = s.Clone()
	s.Loading = false
	s.Error = msg
	return s, true
}

// Advise applies the advice generated for the weather of request id. It is discarded once
// another report is displayed, failed or pending requests do not affect it.
func (s State) Advise(id uint64, advice advisory.Advice) (State, bool) {
	if id == 0 || id != s.ReportID || advice.Text == "" {
		return s, false
	}
	s = s.Clone()
	s.Advice = advice.Text
	s.AdviceGenerated = advice.Generated
	return s, true
}

func (s State) ToggleUnit() State {
	s = s.Clone()
	s.Unit = s.Unit.Toggle()
	return s
}

func (s State) ToggleTheme() State {
	s = s.Clone()
	s.Theme = s.Theme.Toggle()
	return s
}

// Preferences returns the persisted part of the state.
func (s State) Preferences() preferences.Preferences {
	return preferences.Preferences{Unit: s.Unit, Theme: s.Theme}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	if s.Current != nil {
		current := *s.Current
		s.Current = &current
	}
	if s.Location != nil {
		location := *s.Location
		s.Location = &location
	}
	s.Forecast = slices.Clone(s.Forecast)
	return s
}
