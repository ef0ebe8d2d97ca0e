// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/skycast/internal/geolocation"
)

const (
	host = "localhost"
	port = "2947"
	name = "gpsd"

	fallbackAccuracy3DFix = 10  // ~10 m typical consumer GPS in open sky
	fallbackAccuracy2DFix = 25  // worse than 3D, but still accurate enough
	fallbackAccuracyNoFix = 1e6 // effectively unusable
)

var ErrNoFix = errors.New("gpsd reported no 2D fix")

// Fix is a single position report from gpsd.
type Fix struct {
	Lat  float64
	Lon  float64
	Acc  float64
	Mode gpsd.Mode
}

type GeolocationGPSDProvider struct {
	name  string
	addr  string
	fixFn func(ctx context.Context) (Fix, error)
}

func NewGeolocationGPSDProvider() *GeolocationGPSDProvider {
	provider := &GeolocationGPSDProvider{
		name: name,
		addr: net.JoinHostPort(host, port),
	}
	provider.fixFn = provider.watch
	return provider
}

func (p *GeolocationGPSDProvider) Name() string {
	return p.name
}

// Locate waits for the first TPV report with at least a 2D fix.
func (p *GeolocationGPSDProvider) Locate(ctx context.Context) (geolocation.Coordinate, error) {
	fix, err := p.fixFn(ctx)
	if err != nil {
		return geolocation.Coordinate{}, err
	}
	if fix.Mode < gpsd.Mode2D {
		return geolocation.Coordinate{}, ErrNoFix
	}
	return geolocation.Coordinate{
		Lat: geolocation.Truncate(fix.Lat, geolocation.TruncPrecision),
		Lon: geolocation.Truncate(fix.Lon, geolocation.TruncPrecision),
		Acc: geolocation.Truncate(fix.Acc, geolocation.TruncPrecision),
	}, nil
}

// watch connects to gpsd and returns the first usable TPV report. The session is closed on
// return.
func (p *GeolocationGPSDProvider) watch(ctx context.Context) (Fix, error) {
	session, err := gpsd.Dial(p.addr)
	if err != nil {
		return Fix{}, fmt.Errorf("failed to connect to gpsd at %q: %w", p.addr, err)
	}
	defer func() {
		_ = session.Close()
	}()

	fixes := make(chan Fix, 1)
	session.AddFilter("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok || tpv.Mode < gpsd.Mode2D {
			return
		}
		select {
		case fixes <- Fix{Lat: tpv.Lat, Lon: tpv.Lon, Acc: horizontalAccuracy(tpv), Mode: tpv.Mode}:
		default:
		}
	})
	done := session.Watch()

	var fix Fix
	select {
	case <-done:
		return Fix{}, errors.New("gpsd connection closed before a fix was received")
	case <-ctx.Done():
		err = ctx.Err()
	case fix = <-fixes:
	}
	drain(done)
	return fix, err
}

// drain receives the stop signal of the go-gpsd reader, which blocks on it after the session
// is closed.
func drain(done <-chan bool) {
	go func() {
		<-done
	}()
}

func horizontalAccuracy(tpv *gpsd.TPVReport) float64 {
	switch {
	case tpv.Epx > 0 && tpv.Epy > 0:
		return math.Hypot(tpv.Epx, tpv.Epy)
	case tpv.Mode == gpsd.Mode3D:
		return fallbackAccuracy3DFix
	case tpv.Mode == gpsd.Mode2D:
		return fallbackAccuracy2DFix
	default:
		return fallbackAccuracyNoFix
	}
}
