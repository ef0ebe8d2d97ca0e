// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package dashboard orchestrates geocoding, forecast retrieval and advisory generation and
// holds the resulting application state.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/wneessen/skycast/internal/advisory"
	"github.com/wneessen/skycast/internal/geocode"
	"github.com/wneessen/skycast/internal/geolocation"
	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/metrics"
	"github.com/wneessen/skycast/internal/preferences"
	"github.com/wneessen/skycast/internal/weather"
)

const (
	MessageCityNotFound = "City not found. Please check spelling or try a larger nearby city."
	MessageFetchFailed  = "Could not fetch weather for this location."
)

// Locator determines the device position.
type Locator interface {
	Locate(ctx context.Context) (geolocation.Coordinate, error)
}

// Advisor produces a weather tip for the current conditions. Implementations must not fail.
type Advisor interface {
	Advise(ctx context.Context, current weather.CurrentWeather) advisory.Advice
}

// PreferenceSaver persists unit and theme changes.
type PreferenceSaver interface {
	Save(prefs preferences.Preferences) error
}

// Config holds the dashboard collaborators. Locator, Advisor and Preferences are optional.
type Config struct {
	Resolver      geocode.Resolver
	Provider      weather.Provider
	Locator       Locator
	Advisor       Advisor
	Preferences   PreferenceSaver
	DefaultCity   string
	LocationLabel string
}

// Dashboard is safe for concurrent use. Every search is assigned a new request ID and only
// the result of the most recent request is applied.
type Dashboard struct {
	mu    sync.RWMutex
	state State
	reqID atomic.Uint64

	resolver      geocode.Resolver
	provider      weather.Provider
	locator       Locator
	advisor       Advisor
	prefs         PreferenceSaver
	logger        *logger.Logger
	defaultCity   string
	locationLabel string

	// lastQuery belongs to the last applied result, attempted to the most recent request.
	// An empty query stands for the device position.
	lastQuery string
	hasQuery  bool
	attempted string
	toggling  sync.Mutex
	advising  sync.WaitGroup
	updates   chan struct{}
}

func New(conf Config, initial preferences.Preferences, log *logger.Logger) (*Dashboard, error) {
	if conf.Resolver == nil {
		return nil, errors.New("geocoding resolver is required")
	}
	if conf.Provider == nil {
		return nil, errors.New("weather provider is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if conf.DefaultCity == "" {
		return nil, errors.New("default city is required")
	}
	if conf.LocationLabel == "" {
		return nil, errors.New("location label is required")
	}

	return &Dashboard{
		state:         NewState(initial),
		resolver:      conf.Resolver,
		provider:      conf.Provider,
		locator:       conf.Locator,
		advisor:       conf.Advisor,
		prefs:         conf.Preferences,
		logger:        log,
		defaultCity:   conf.DefaultCity,
		locationLabel: conf.LocationLabel,
		updates:       make(chan struct{}, 1),
	}, nil
}

// State returns a copy of the current state.
func (d *Dashboard) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state.Clone()
}

// Updates returns a channel that receives a value whenever the state has changed. Changes
// are coalesced, so a receiver should read the State afterwards.
func (d *Dashboard) Updates() <-chan struct{} {
	return d.updates
}

// Lookup resolves the city and fetches its weather without touching the dashboard state.
// The resolved name is used as display name, falling back to the input.
func (d *Dashboard) Lookup(ctx context.Context, city string) (*weather.Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, weather.ErrEmptyInput
	}
	location, err := d.resolver.Resolve(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q via %s: %w", city, d.resolver.Name(), err)
	}
	name := location.Name
	if name == "" {
		name = city
	}
	return d.provider.FetchWeather(ctx, location.Latitude, location.Longitude, name)
}

// LookupCoordinates fetches the weather for the given position using label as display name.
func (d *Dashboard) LookupCoordinates(ctx context.Context, lat, lon float64, label string) (*weather.Report, error) {
	if label == "" {
		label = d.locationLabel
	}
	return d.provider.FetchWeather(ctx, lat, lon, label)
}

// Search looks up the weather for city and applies it to the state. Blank input is rejected
// with weather.ErrEmptyInput before any request is made and leaves the state unchanged.
func (d *Dashboard) Search(ctx context.Context, city string) (State, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return d.State(), weather.ErrEmptyInput
	}

	id := d.begin(city)
	report, err := d.Lookup(ctx, city)
	return d.finish(ctx, id, city, report, err)
}

// DetectLocation looks up the weather for the device position. If the position cannot be
// determined, or the weather for it cannot be fetched, the default city is searched instead.
func (d *Dashboard) DetectLocation(ctx context.Context) (State, error) {
	if d.locator == nil {
		d.logger.Debug("no geolocation configured, falling back to default city",
			slog.String("city", d.defaultCity))
		return d.Search(ctx, d.defaultCity)
	}

	coord, err := d.locator.Locate(ctx)
	if err != nil {
		d.logger.Info("geolocation failed, falling back to default city", logger.Err(err),
			slog.String("city", d.defaultCity))
		return d.Search(ctx, d.defaultCity)
	}

	id := d.begin("")
	report, err := d.LookupCoordinates(ctx, coord.Lat, coord.Lon, d.locationLabel)
	if err != nil {
		d.logger.Warn("failed to fetch weather for detected location, falling back to default city",
			logger.Err(err), slog.String("source", coord.Source), slog.String("city", d.defaultCity))
		return d.Search(ctx, d.defaultCity)
	}
	return d.finish(ctx, id, "", report, nil)
}

// Refresh repeats the query of the displayed weather. Failed searches are not repeated once a
// lookup has succeeded. If the query used the device position, the position is detected again.
func (d *Dashboard) Refresh(ctx context.Context) (State, error) {
	d.mu.RLock()
	query := d.attempted
	if d.hasQuery {
		query = d.lastQuery
	}
	d.mu.RUnlock()

	if query == "" {
		return d.DetectLocation(ctx)
	}
	return d.Search(ctx, query)
}

// Wait blocks until all running advisory generations have finished.
func (d *Dashboard) Wait() {
	d.advising.Wait()
}

// ToggleUnit switches between Celsius and Fahrenheit and persists the choice.
func (d *Dashboard) ToggleUnit() State {
	return d.toggle(State.ToggleUnit)
}

// ToggleTheme switches between the dark and light theme and persists the choice.
func (d *Dashboard) ToggleTheme() State {
	return d.toggle(State.ToggleTheme)
}

// toggle applies fn and persists the result. Toggles are serialized so the saved preferences
// always match the latest state.
func (d *Dashboard) toggle(fn func(State) State) State {
	d.toggling.Lock()
	defer d.toggling.Unlock()

	d.mu.Lock()
	d.state = fn(d.state)
	state := d.state.Clone()
	d.mu.Unlock()
	d.notify()

	if d.prefs != nil {
		if err := d.prefs.Save(state.Preferences()); err != nil {
			d.logger.Error("failed to save preferences", logger.Err(err))
		}
	}
	return state
}

// begin issues a new request ID and marks the state as loading. An empty query marks a
// lookup by device position.
func (d *Dashboard) begin(query string) uint64 {
	id := d.reqID.Add(1)
	d.mu.Lock()
	d.state = d.state.Begin(id)
	d.attempted = query
	d.mu.Unlock()
	d.notify()
	return id
}

// finish applies the outcome of request id for query. Outcomes of superseded requests are
// discarded. Only applied results become the query repeated by Refresh.
func (d *Dashboard) finish(ctx context.Context, id uint64, query string, report *weather.Report, err error) (State, error) {
	if err != nil {
		msg, outcome := MessageFetchFailed, "fetch_failed"
		if errors.Is(err, weather.ErrCityNotFound) {
			msg, outcome = MessageCityNotFound, "not_found"
		}
		if !d.apply(func(s State) (State, bool) { return s.Fail(id, msg) }) {
			d.logger.Debug("discarding stale weather lookup failure", logger.Err(err),
				slog.Uint64("request", id))
			metrics.ObserveSearch("stale")
			return d.State(), err
		}
		d.logger.Error("weather lookup failed", logger.Err(err), slog.Uint64("request", id))
		metrics.ObserveSearch(outcome)
		return d.State(), err
	}

	applied := d.apply(func(s State) (State, bool) {
		next, ok := s.Succeed(id, report)
		if ok {
			d.lastQuery, d.hasQuery = query, true
		}
		return next, ok
	})
	if !applied {
		d.logger.Debug("discarding stale weather result", slog.Uint64("request", id),
			slog.String("city", report.Current.City))
		metrics.ObserveSearch("stale")
		return d.State(), nil
	}
	metrics.ObserveSearch("ok")
	d.logger.Debug("weather updated", slog.Uint64("request", id), slog.String("city", report.Current.City),
		slog.String("condition", report.Current.Condition.String()))

	d.startAdvice(ctx, id, report.Current)
	return d.State(), nil
}

// startAdvice generates advice in the background. Its result only applies while the weather of
// request id is displayed.
func (d *Dashboard) startAdvice(ctx context.Context, id uint64, current weather.CurrentWeather) {
	if d.advisor == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	d.advising.Add(1)
	go func() {
		defer d.advising.Done()
		advice := d.advisor.Advise(ctx, current)
		if !d.apply(func(s State) (State, bool) { return s.Advise(id, advice) }) {
			d.logger.Debug("discarding stale advice", slog.Uint64("request", id))
		}
	}()
}

func (d *Dashboard) apply(fn func(State) (State, bool)) bool {
	d.mu.Lock()
	state, ok := fn(d.state)
	if ok {
		d.state = state
	}
	d.mu.Unlock()
	if ok {
		d.notify()
	}
	return ok
}

func (d *Dashboard) notify() {
	select {
	case d.updates <- struct{}{}:
	default:
	}
}
