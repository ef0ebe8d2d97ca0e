// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the configured providers into a dashboard and drives it for the
// command line: as a one-shot render, as a periodically refreshed watch loop or as an HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
	"syscall"
	"time"

	"github.com/vorlif/spreak"

	"github.com/wneessen/skycast/internal/advisory"
	"github.com/wneessen/skycast/internal/config"
	"github.com/wneessen/skycast/internal/dashboard"
	"github.com/wneessen/skycast/internal/http"
	"github.com/wneessen/skycast/internal/httpapi"
	"github.com/wneessen/skycast/internal/i18n"
	"github.com/wneessen/skycast/internal/job"
	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/preferences"
	"github.com/wneessen/skycast/internal/presenter"
)

const shutdownTimeout = time.Second * 5

type Service struct {
	SignalSrc signalSource

	config    *config.Config
	logger    *logger.Logger
	output    io.Writer
	http      *http.Client
	dash      *dashboard.Dashboard
	table     *dashboard.CityTable
	advisor   *advisory.Generator
	presenter *presenter.Presenter
	refresh   *job.Job

	// monitorSleep is replaced in tests to keep the service off the system bus.
	monitorSleep func(context.Context)
}

func New(conf *config.Config, log *logger.Logger, loc *spreak.Localizer) (*Service, error) {
	if conf == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if loc == nil {
		return nil, errors.New("localizer is required")
	}

	pres, err := presenter.New(conf, loc)
	if err != nil {
		return nil, err
	}
	service := &Service{
		SignalSrc: stdLibSignalSource{},
		config:    conf,
		logger:    log,
		output:    os.Stdout,
		http:      http.New(log),
		presenter: pres,
	}
	service.monitorSleep = service.monitorSleepResume

	resolver, err := service.selectGeocodeProvider(i18n.Tag(conf.Geocoder.Language))
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode provider: %w", err)
	}
	provider, err := service.selectWeatherProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create weather provider: %w", err)
	}
	locator, err := service.selectLocator()
	if err != nil {
		return nil, fmt.Errorf("failed to create geolocation provider: %w", err)
	}
	service.advisor, err = service.selectAdvisor()
	if err != nil {
		return nil, fmt.Errorf("failed to create advisory backend: %w", err)
	}

	store := preferences.NewStore(conf.Preferences.File, defaultPreferences(conf))
	prefs, err := store.Load()
	if err != nil {
		log.Warn("failed to load preferences, using defaults", slog.String("file", store.Path()),
			logger.Err(err))
	}

	service.dash, err = dashboard.New(dashboard.Config{
		Resolver:      resolver,
		Provider:      provider,
		Locator:       locator,
		Advisor:       service.advisor,
		Preferences:   store,
		DefaultCity:   conf.Search.DefaultCity,
		LocationLabel: conf.Search.LocationLabel,
	}, prefs, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}
	service.table = dashboard.NewCityTable(service.dash, log)
	service.refresh = job.New(conf.Intervals.WeatherUpdate, service.refreshWeather)

	return service, nil
}

// Dashboard returns the dashboard driven by the service.
func (s *Service) Dashboard() *dashboard.Dashboard {
	return s.dash
}

// Once loads the weather for city, or for the device position if city is empty, waits for
// the advice and prints the dashboard. A page greater than zero also prints that page of the
// city table. The lookup error is returned after the dashboard has been printed.
func (s *Service) Once(ctx context.Context, city string, page int) error {
	_, lookupErr := s.load(ctx, city)
	s.dash.Wait()
	if err := s.printDashboard(); err != nil {
		return err
	}
	if page > 0 {
		if err := s.printTable(ctx, page); err != nil {
			return err
		}
	}
	return lookupErr
}

// Run loads the weather for city, or for the device position if city is empty, and keeps the
// dashboard up to date until ctx is cancelled. Every state change is printed. SIGUSR1 toggles
// the unit and SIGUSR2 the theme. Resuming from system sleep triggers an immediate refresh.
func (s *Service) Run(ctx context.Context, city string) error {
	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	defer s.SignalSrc.Stop(sigChan)

	go s.HandleSignals(ctx, sigChan)
	go s.printUpdates(ctx)
	go s.refresh.Start(ctx)
	if s.monitorSleep != nil {
		go s.monitorSleep(ctx)
	}

	if _, err := s.load(ctx, city); err != nil {
		s.logger.Warn("initial weather lookup failed", logger.Err(err))
	}

	<-ctx.Done()
	s.dash.Wait()
	return nil
}

// Serve exposes the dashboard operations as a JSON API on the configured address until ctx
// is cancelled.
func (s *Service) Serve(ctx context.Context) error {
	api := httpapi.New(s.dash, s.table, s.advisor, s.logger)
	srv := &stdhttp.Server{
		Addr:         s.config.Server.Addr,
		Handler:      api.Router(s.config.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API started", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("failed to serve HTTP API: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down HTTP API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP API: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, city string) (dashboard.State, error) {
	if city == "" {
		return s.dash.DetectLocation(ctx)
	}
	return s.dash.Search(ctx, city)
}

func (s *Service) refreshWeather(ctx context.Context) {
	s.logger.Debug("refreshing weather data")
	_, _ = s.dash.Refresh(ctx)
}

func (s *Service) printUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dash.Updates():
			if err := s.printDashboard(); err != nil {
				s.logger.Error("failed to print dashboard", logger.Err(err))
			}
		}
	}
}

// printDashboard renders the current dashboard state to the output.
func (s *Service) printDashboard() error {
	tplCtx := s.presenter.BuildContext(s.dash.State(), time.Now())
	out, err := s.presenter.Render(tplCtx)
	if err != nil {
		return err
	}
	if _, err = io.WriteString(s.output, out); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	return nil
}

// printTable renders the given page of the city table in the current unit and theme.
func (s *Service) printTable(ctx context.Context, page int) error {
	tablePage, err := s.table.Page(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to fetch city table: %w", err)
	}
	state := s.dash.State()
	out, err := s.presenter.RenderTable(tablePage, s.table.Len(), state.Unit, state.Theme)
	if err != nil {
		return err
	}
	if _, err = io.WriteString(s.output, out); err != nil {
		return fmt.Errorf("failed to write city table: %w", err)
	}
	return nil
}
