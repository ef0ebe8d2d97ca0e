// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"fmt"
	"math"
	"strings"
)

// Unit is the temperature unit used for display. Stored values are always Celsius.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// ParseUnit accepts "C"/"F" as well as the config names "metric"/"imperial".
func ParseUnit(val string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "c", "celsius", "metric":
		return Celsius, nil
	case "f", "fahrenheit", "imperial":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("invalid unit: %q", val)
	}
}

// Toggle returns the other unit.
func (u Unit) Toggle() Unit {
	if u == Fahrenheit {
		return Celsius
	}
	return Fahrenheit
}

// Convert converts a Celsius value into the unit and rounds it to the nearest integer.
func (u Unit) Convert(celsius float64) int {
	if u == Fahrenheit {
		return int(math.Round(celsius*9/5 + 32))
	}
	return int(math.Round(celsius))
}

// Symbol returns the degree symbol for the unit.
func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}
