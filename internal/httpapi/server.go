// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package httpapi exposes the weather lookups, the advisory generator and the city table as a
// JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wneessen/skycast/internal/advisory"
	"github.com/wneessen/skycast/internal/dashboard"
	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/metrics"
	"github.com/wneessen/skycast/internal/weather"
)

const maxBodySize = 1 << 16

// WeatherLookup performs stateless weather lookups.
type WeatherLookup interface {
	Lookup(ctx context.Context, city string) (*weather.Report, error)
	LookupCoordinates(ctx context.Context, lat, lon float64, label string) (*weather.Report, error)
}

// Advisor produces a weather tip for the given conditions.
type Advisor interface {
	Advise(ctx context.Context, current weather.CurrentWeather) advisory.Advice
}

// CityTable returns a page of the sample city table.
type CityTable interface {
	Page(ctx context.Context, page int) (dashboard.TablePage, error)
}

type Server struct {
	weather WeatherLookup
	table   CityTable
	advisor Advisor
	logger  *logger.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(lookup WeatherLookup, table CityTable, advisor Advisor, log *logger.Logger) *Server {
	return &Server{weather: lookup, table: table, advisor: advisor, logger: log}
}

// Router returns the complete handler including health and metrics endpoints. Cross-origin
// requests are accepted from the given origins.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())
	r.Route("/api", s.RegisterRoutes)

	return r
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/weather", s.handleWeather)
	r.Post("/advice", s.handleAdvice)
	r.Get("/cities", s.handleCities)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleWeather answers with the weather report for either a city or a lat/lon pair. The
// optional label names a coordinate lookup.
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	city := strings.TrimSpace(query.Get("city"))
	latStr, lonStr := query.Get("lat"), query.Get("lon")

	var report *weather.Report
	var err error
	switch {
	case latStr != "" || lonStr != "":
		lat, latErr := strconv.ParseFloat(latStr, 64)
		if latErr != nil || lat < -90 || lat > 90 {
			writeError(w, http.StatusBadRequest, "invalid lat parameter")
			return
		}
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if lonErr != nil || lon < -180 || lon > 180 {
			writeError(w, http.StatusBadRequest, "invalid lon parameter")
			return
		}
		report, err = s.weather.LookupCoordinates(r.Context(), lat, lon, strings.TrimSpace(query.Get("label")))
	case city != "":
		report, err = s.weather.Lookup(r.Context(), city)
	default:
		writeError(w, http.StatusBadRequest, "location is required (provide city or lat/lon)")
		return
	}

	if err != nil {
		s.logger.Error("weather lookup failed", slog.String("city", city), logger.Err(err))
		switch {
		case errors.Is(err, weather.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, weather.ErrEmptyInput.Error())
		case errors.Is(err, weather.ErrCityNotFound):
			writeError(w, http.StatusNotFound, dashboard.MessageCityNotFound)
		default:
			writeError(w, http.StatusBadGateway, dashboard.MessageFetchFailed)
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleAdvice generates advice for the posted current weather. Advice generation never fails,
// so any well-formed request is answered with 200.
func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var current weather.CurrentWeather
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := decoder.Decode(&current); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(current.City) == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	writeJSON(w, http.StatusOK, s.advisor.Advise(r.Context(), current))
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	page := 1
	if val := r.URL.Query().Get("page"); val != "" {
		num, err := strconv.Atoi(val)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page parameter")
			return
		}
		page = num
	}

	tablePage, err := s.table.Page(r.Context(), page)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	writeJSON(w, http.StatusOK, tablePage)
}

// requestLogger logs every request with the structured logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request served", slog.String("method", r.Method),
			slog.String("path", r.URL.Path), slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)))
	})
}
