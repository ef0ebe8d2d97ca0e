// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geolocation resolves the device position from a prioritized list of providers.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/wneessen/skycast/internal/logger"
)

const (
	AccuracyCountry = 300000
	AccuracyRegion  = 100000
	AccuracyCity    = 15000
	AccuracyZip     = 3000
	AccuracyUnknown = 1000000
	TruncPrecision  = 4

	DefaultTimeout = time.Second * 10
)

var (
	// ErrPermissionDenied is returned when device geolocation has been disabled by the user.
	ErrPermissionDenied = errors.New("geolocation permission denied")

	// ErrUnavailable is returned when no provider was able to determine a position.
	ErrUnavailable = errors.New("geolocation unavailable")
)

// Coordinate represents a geographic coordinate with its horizontal accuracy in meters.
type Coordinate struct {
	Lat    float64
	Lon    float64
	Acc    float64
	Source string
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Provider defines an interface for geolocation service providers. Locate performs a single
// lookup and returns the current position.
type Provider interface {
	Name() string
	Locate(ctx context.Context) (Coordinate, error)
}

// Locator asks its providers in order and returns the first valid position.
type Locator struct {
	logger    *logger.Logger
	disabled  bool
	timeout   time.Duration
	providers []Provider
}

// New returns a Locator for the given providers. A disabled Locator denies every request.
func New(log *logger.Logger, disabled bool, timeout time.Duration, providers ...Provider) *Locator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locator{
		logger:    log,
		disabled:  disabled,
		timeout:   timeout,
		providers: providers,
	}
}

// Locate returns the first valid coordinate reported by the providers.
func (l *Locator) Locate(ctx context.Context) (Coordinate, error) {
	if l.disabled {
		return Coordinate{}, ErrPermissionDenied
	}

	var errs []error
	for _, provider := range l.providers {
		coord, err := l.safeLocate(ctx, provider)
		if err != nil {
			l.logger.Debug("geolocation provider failed", slog.String("provider", provider.Name()),
				logger.Err(err))
			errs = append(errs, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}
		if !coord.Valid() {
			errs = append(errs, fmt.Errorf("%s: invalid coordinates %f,%f", provider.Name(), coord.Lat, coord.Lon))
			continue
		}
		coord.Source = provider.Name()
		l.logger.Debug("geolocation found", slog.String("provider", coord.Source),
			slog.Float64("lat", coord.Lat), slog.Float64("lon", coord.Lon), slog.Float64("accuracy", coord.Acc))
		return coord, nil
	}

	if len(errs) == 0 {
		return Coordinate{}, fmt.Errorf("%w: no provider enabled", ErrUnavailable)
	}
	return Coordinate{}, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

// safeLocate invokes the provider with a bounded context and recovers from provider panics.
func (l *Locator) safeLocate(ctx context.Context, provider Provider) (coord Coordinate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return provider.Locate(ctx)
}

func Truncate(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Trunc(x*p) / p
}
