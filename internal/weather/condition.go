// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"encoding/json"
	"fmt"
)

// Condition is the coarse classification of a WMO weather code.
type Condition int

const (
	Unknown Condition = iota
	Clear
	Cloudy
	Rainy
	Snowy
	Thunderstorm
)

var conditionNames = map[Condition]string{
	Unknown:      "Unknown",
	Clear:        "Clear",
	Cloudy:       "Cloudy",
	Rainy:        "Rainy",
	Snowy:        "Snowy",
	Thunderstorm: "Thunderstorm",
}

// Classify maps a WMO weather code to a Condition. Rules are evaluated in order and the
// first match wins.
func Classify(code int) Condition {
	switch {
	case code == 0:
		return Clear
	case code >= 1 && code <= 3:
		return Cloudy
	case code >= 45 && code <= 67:
		return Rainy
	case code >= 71 && code <= 77:
		return Snowy
	case code >= 80 && code <= 99:
		return Thunderstorm
	default:
		return Unknown
	}
}

// String returns the English name of the condition.
func (c Condition) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return conditionNames[Unknown]
}

// MarshalJSON encodes the condition by name.
func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a condition from its name.
func (c *Condition) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("failed to decode condition: %w", err)
	}
	for cond, n := range conditionNames {
		if n == name {
			*c = cond
			return nil
		}
	}
	return fmt.Errorf("unknown condition: %q", name)
}
