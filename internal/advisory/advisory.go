// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package advisory generates short weather tips through a generative text backend.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/metrics"
	"github.com/wneessen/skycast/internal/weather"
)

const (
	// DefaultAdvice is shown before any advice has been generated.
	DefaultAdvice = "Stay updated with SkyCast Pro. Check back regularly for high-precision real-time " +
		"satellite data."

	// PlaceholderMissingCredential is shown when no API key is configured.
	PlaceholderMissingCredential = "Connect your API key for personalized meteorological insights."

	// PlaceholderFailure is shown when generation fails or returns no text.
	PlaceholderFailure = "Meteorologist Tip: Dress in breathable layers for maximum comfort today."

	SystemInstruction = "You are a professional meteorologist giving concise, actionable weather advice."

	DefaultTimeout = time.Second * 20
)

var (
	// ErrCredentialMissing is returned by credential providers when no API key is available.
	ErrCredentialMissing = errors.New("advisory API key is not configured")

	// ErrAdvisoryUnavailable is returned by backends when the service failed or produced no text.
	ErrAdvisoryUnavailable = errors.New("advisory service unavailable")
)

// Backend is implemented by each generative text service.
type Backend interface {
	Name() string
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Advice is the outcome of a single generation. Generated is false when Text is a placeholder.
type Advice struct {
	Text      string `json:"text"`
	Generated bool   `json:"generated"`
}

// Generator turns current conditions into a weather tip. It never fails: errors are logged and
// replaced by a placeholder.
type Generator struct {
	backend Backend
	logger  *logger.Logger
	timeout time.Duration
}

// New returns a Generator for the given backend. A nil backend disables generation and every
// call yields DefaultAdvice.
func New(backend Backend, log *logger.Logger, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		backend: backend,
		logger:  log,
		timeout: timeout,
	}
}

// Prompt builds the user prompt for the given conditions. Values are inserted as reported by
// upstream, in °C, % and km/h.
func Prompt(current weather.CurrentWeather) string {
	return fmt.Sprintf("Give a short, professional, and helpful weather tip for someone in %s where the "+
		"current weather is %s, %s°C, %d%% humidity, and %skm/h wind speed. Max 20 words.",
		current.City, current.Condition, formatFloat(current.Temperature), current.Humidity,
		formatFloat(current.WindSpeed))
}

// Advise generates a tip for the given conditions. It makes a single attempt.
func (g *Generator) Advise(ctx context.Context, current weather.CurrentWeather) (advice Advice) {
	if g.backend == nil {
		return Advice{Text: DefaultAdvice}
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("advisory backend panicked", slog.String("backend", g.backend.Name()),
				slog.Any("panic", r))
			metrics.ObserveAdvisory("failed")
			advice = Advice{Text: PlaceholderFailure}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.backend.Generate(ctx, SystemInstruction, Prompt(current))
	switch {
	case errors.Is(err, ErrCredentialMissing):
		g.logger.Warn("advisory API key missing", slog.String("backend", g.backend.Name()))
		metrics.ObserveAdvisory("missing_credential")
		return Advice{Text: PlaceholderMissingCredential}
	case err != nil:
		g.logger.Error("failed to generate weather advice", slog.String("backend", g.backend.Name()),
			logger.Err(err))
		metrics.ObserveAdvisory("failed")
		return Advice{Text: PlaceholderFailure}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.logger.Warn("advisory backend returned no text", slog.String("backend", g.backend.Name()))
		metrics.ObserveAdvisory("empty")
		return Advice{Text: PlaceholderFailure}
	}
	metrics.ObserveAdvisory("ok")
	return Advice{Text: text, Generated: true}
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
