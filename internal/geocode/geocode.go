// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode defines the forward geocoding interface implemented by the providers in
// the provider subpackages.
package geocode

import (
	"context"

	"github.com/wneessen/skycast/internal/weather"
)

// Resolver turns a free-form city name into coordinates and a display name. An empty result
// set is reported as weather.ErrCityNotFound. Every other failure is a wrapped error that
// does not match it.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, city string) (weather.GeoLocation, error)
}
