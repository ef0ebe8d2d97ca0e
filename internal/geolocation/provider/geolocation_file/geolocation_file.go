// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geolocation_file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wneessen/skycast/internal/geolocation"
)

const (
	name = "geolocation_file"

	// Accuracy is the accuracy we assign to user-maintained coordinates. We consider the
	// geolocation file as the most accurate source available.
	Accuracy = 5
)

var ErrNoCoordinates = errors.New("no valid coordinates found in geolocation file")

// GeolocationFileProvider reads a fixed position from a user-maintained file. The file holds
// "lat,lon" lines, lines starting with # are ignored and the first valid line wins.
type GeolocationFileProvider struct {
	name string
	path string
}

func NewGeolocationFileProvider(path string) *GeolocationFileProvider {
	return &GeolocationFileProvider{
		name: name,
		path: path,
	}
}

// Name returns the name of the GeolocationFileProvider instance.
func (p *GeolocationFileProvider) Name() string {
	return p.name
}

// Locate reads the configured file and returns its first coordinate.
func (p *GeolocationFileProvider) Locate(ctx context.Context) (geolocation.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geolocation.Coordinate{}, err
	}
	lat, lon, err := p.readFile()
	if err != nil {
		return geolocation.Coordinate{}, err
	}
	return geolocation.Coordinate{Lat: lat, Lon: lon, Acc: Accuracy}, nil
}

func (p *GeolocationFileProvider) readFile() (lat, lon float64, err error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read geolocation file %q: %w", p.path, err)
	}
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		coords := strings.Split(line, ",")
		if len(coords) != 2 {
			continue
		}
		lat, err = strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			continue
		}
		lon, err = strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			continue
		}
		return lat, lon, nil
	}
	return 0, 0, ErrNoCoordinates
}
