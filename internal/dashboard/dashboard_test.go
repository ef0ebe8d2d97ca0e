// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package dashboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/text/language"

	"github.com/wneessen/skycast/internal/advisory"
	geocodeom "github.com/wneessen/skycast/internal/geocode/provider/open-meteo"
	"github.com/wneessen/skycast/internal/geolocation"
	"github.com/wneessen/skycast/internal/http"
	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/preferences"
	"github.com/wneessen/skycast/internal/testhelper"
	"github.com/wneessen/skycast/internal/weather"
	weatherom "github.com/wneessen/skycast/internal/weather/provider/open-meteo"
)

var testPrefs = preferences.Preferences{Unit: weather.Celsius, Theme: preferences.ThemeDark}

type mockResolver struct {
	mu      sync.Mutex
	cities  []string
	results map[string]weather.GeoLocation
	err     error
	missing string
	hook    func(city string)
}

func (m *mockResolver) Name() string { return "mock" }

func (m *mockResolver) Resolve(_ context.Context, city string) (weather.GeoLocation, error) {
	m.mu.Lock()
	m.cities = append(m.cities, city)
	m.mu.Unlock()
	if m.hook != nil {
		m.hook(city)
	}
	if m.err != nil {
		return weather.GeoLocation{}, m.err
	}
	if city == m.missing {
		return weather.GeoLocation{}, weather.ErrCityNotFound
	}
	if loc, ok := m.results[city]; ok {
		return loc, nil
	}
	return weather.GeoLocation{Name: city, Latitude: 10, Longitude: 20}, nil
}

func (m *mockResolver) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cities...)
}

type mockProvider struct {
	calls atomic.Int32
	fail  func(displayName string) bool
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) FetchWeather(_ context.Context, lat, lon float64, name string) (*weather.Report, error) {
	m.calls.Add(1)
	if m.fail != nil && m.fail(name) {
		return nil, weather.ErrWeatherFetchFailed
	}
	report := testReport(name, 12.5)
	report.Location.Latitude, report.Location.Longitude = lat, lon
	return report, nil
}

type mockLocator struct {
	coord geolocation.Coordinate
	err   error
}

func (m mockLocator) Locate(context.Context) (geolocation.Coordinate, error) {
	return m.coord, m.err
}

type mockAdvisor struct {
	text string
}

func (m mockAdvisor) Advise(_ context.Context, current weather.CurrentWeather) advisory.Advice {
	return advisory.Advice{Text: m.text + " " + current.City, Generated: true}
}

// gatedAdvisor blocks until release is closed.
type gatedAdvisor struct {
	release chan struct{}
}

func (m gatedAdvisor) Advise(_ context.Context, current weather.CurrentWeather) advisory.Advice {
	<-m.release
	return advisory.Advice{Text: "Bring a jacket in " + current.City, Generated: true}
}

type mockSaver struct {
	mu    sync.Mutex
	saved []preferences.Preferences
	err   error
}

func (m *mockSaver) Save(prefs preferences.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, prefs)
	return m.err
}

func TestNew(t *testing.T) {
	log := logger.New(slog.LevelError)
	valid := Config{
		Resolver:      &mockResolver{},
		Provider:      &mockProvider{},
		DefaultCity:   "London",
		LocationLabel: "Your Location",
	}
	if _, err := New(valid, testPrefs, log); err != nil {
		t.Fatalf("failed to create dashboard: %s", err)
	}
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"missing resolver", func(c *Config) { c.Resolver = nil }},
		{"missing provider", func(c *Config) { c.Provider = nil }},
		{"missing default city", func(c *Config) { c.DefaultCity = "" }},
		{"missing location label", func(c *Config) { c.LocationLabel = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conf := valid
			tc.modify(&conf)
			if _, err := New(conf, testPrefs, log); err == nil {
				t.Error("expected creation to fail")
			}
		})
	}
	if _, err := New(valid, testPrefs, nil); err == nil {
		t.Error("expected creation without logger to fail")
	}
}

func TestDashboard_Search(t *testing.T) {
	t.Run("searching Tokyo end to end", func(t *testing.T) {
		client := http.New(logger.New(slog.LevelError))
		client.Transport = testhelper.MockRoundTripper{Fn: func(req *stdhttp.Request) (*stdhttp.Response, error) {
			switch req.URL.Host {
			case "geocoding-api.open-meteo.com":
				if req.URL.Query().Get("name") != "Tokyo" {
					t.Errorf("unexpected geocoding query: %s", req.URL.RawQuery)
				}
				return testhelper.FileResponder(t, "testdata/geocode_tokyo.json", 200)(req)
			case "api.open-meteo.com":
				return testhelper.FileResponder(t, "testdata/forecast_tokyo.json", 200)(req)
			default:
				t.Errorf("unexpected request to %s", req.URL.Host)
				return testhelper.StringResponder("{}", 500)(req)
			}
		}}
		provider, err := weatherom.New(client, logger.New(slog.LevelError), 0)
		if err != nil {
			t.Fatalf("failed to create weather provider: %s", err)
		}
		dash := testDashboard(t, Config{
			Resolver: geocodeom.New(client, language.English),
			Provider: provider,
			Advisor:  mockAdvisor{text: "Enjoy"},
		})

		state, err := dash.Search(t.Context(), "  Tokyo ")
		if err != nil {
			t.Fatalf("search failed: %s", err)
		}
		if state.Current == nil {
			t.Fatal("expected current weather to be set")
		}
		if state.Current.City != "Tokyo" {
			t.Errorf("expected city to be Tokyo, got %q", state.Current.City)
		}
		if state.Current.Condition != weather.Cloudy || state.Current.Condition.String() != "Cloudy" {
			t.Errorf("expected condition to be Cloudy, got %s", state.Current.Condition)
		}
		if state.Current.Temperature != 18.0 || state.Current.Humidity != 55 || state.Current.WindSpeed != 10 {
			t.Errorf("unexpected current weather: %+v", state.Current)
		}
		if len(state.Forecast) != weather.ForecastDays {
			t.Errorf("expected %d forecast days, got %d", weather.ForecastDays, len(state.Forecast))
		}
		if state.Loading || state.Error != "" {
			t.Errorf("unexpected state flags: loading=%t error=%q", state.Loading, state.Error)
		}

		dash.Wait()
		if got := dash.State().Advice; got != "Enjoy Tokyo" {
			t.Errorf("expected generated advice, got %q", got)
		}
	})
	t.Run("empty input makes no request and keeps the state", func(t *testing.T) {
		resolver, provider := &mockResolver{}, &mockProvider{}
		dash := testDashboard(t, Config{Resolver: resolver, Provider: provider})
		before := dash.State()
		for _, input := range []string{"", "   ", "\t\n"} {
			state, err := dash.Search(t.Context(), input)
			if !errors.Is(err, weather.ErrEmptyInput) {
				t.Errorf("expected error to be %s, got %v", weather.ErrEmptyInput, err)
			}
			if state.RequestID != before.RequestID || state.Loading || state.Current != nil {
				t.Errorf("expected state to be unchanged, got %+v", state)
			}
		}
		if len(resolver.calls()) != 0 || provider.calls.Load() != 0 {
			t.Error("expected no lookups for empty input")
		}
	})
	t.Run("unknown city sets the not found message", func(t *testing.T) {
		resolver := &mockResolver{err: weather.ErrCityNotFound}
		provider := &mockProvider{}
		dash := testDashboard(t, Config{Resolver: resolver, Provider: provider})
		state, err := dash.Search(t.Context(), "Atlantis")
		if !errors.Is(err, weather.ErrCityNotFound) {
			t.Errorf("expected error to be %s, got %v", weather.ErrCityNotFound, err)
		}
		if state.Error != MessageCityNotFound {
			t.Errorf("expected not found message, got %q", state.Error)
		}
		if provider.calls.Load() != 0 {
			t.Error("expected forecast not to be fetched")
		}
	})
	t.Run("fetch failure retains the previous weather", func(t *testing.T) {
		provider := &mockProvider{fail: func(name string) bool { return name == "Paris" }}
		dash := testDashboard(t, Config{Resolver: &mockResolver{}, Provider: provider})
		if _, err := dash.Search(t.Context(), "Berlin"); err != nil {
			t.Fatalf("search failed: %s", err)
		}
		state, err := dash.Search(t.Context(), "Paris")
		if !errors.Is(err, weather.ErrWeatherFetchFailed) {
			t.Errorf("expected error to be %s, got %v", weather.ErrWeatherFetchFailed, err)
		}
		if state.Error != MessageFetchFailed || state.Loading {
			t.Errorf("unexpected state: %+v", state)
		}
		if state.Current == nil || state.Current.City != "Berlin" {
			t.Errorf("expected Berlin to remain displayed, got %+v", state.Current)
		}
	})
	t.Run("resolved name replaces the input", func(t *testing.T) {
		resolver := &mockResolver{results: map[string]weather.GeoLocation{
			"münchen": {Name: "Munich", Latitude: 48.13, Longitude: 11.57},
		}}
		dash := testDashboard(t, Config{Resolver: resolver, Provider: &mockProvider{}})
		state, err := dash.Search(t.Context(), "münchen")
		if err != nil {
			t.Fatalf("search failed: %s", err)
		}
		if state.Current.City != "Munich" || state.Location.Latitude != 48.13 {
			t.Errorf("unexpected result: %+v / %+v", state.Current, state.Location)
		}
	})
	t.Run("stale results are discarded", func(t *testing.T) {
		release := make(chan struct{})
		blocked := make(chan struct{})
		resolver := &mockResolver{hook: func(city string) {
			if city == "Slow" {
				close(blocked)
				<-release
			}
		}}
		dash := testDashboard(t, Config{Resolver: resolver, Provider: &mockProvider{}})

		done := make(chan State)
		go func() {
			state, _ := dash.Search(context.Background(), "Slow")
			done <- state
		}()
		<-blocked
		if _, err := dash.Search(t.Context(), "Fast"); err != nil {
			t.Fatalf("search failed: %s", err)
		}
		close(release)
		<-done

		state := dash.State()
		if state.Current == nil || state.Current.City != "Fast" {
			t.Errorf("expected the newest result to win, got %+v", state.Current)
		}
		if state.RequestID != 2 {
			t.Errorf("expected request ID 2, got %d", state.RequestID)
		}
	})
}

func TestDashboard_finish(t *testing.T) {
	t.Run("stale failures are not logged as errors", func(t *testing.T) {
		release := make(chan struct{})
		blocked := make(chan struct{})
		resolver := &mockResolver{missing: "Slow", hook: func(city string) {
			if city == "Slow" {
				close(blocked)
				<-release
			}
		}}
		buf := bytes.NewBuffer(nil)
		dash, err := New(Config{
			Resolver:      resolver,
			Provider:      &mockProvider{},
			DefaultCity:   "London",
			LocationLabel: "Your Location",
		}, testPrefs, logger.NewLogger(slog.LevelError, buf))
		if err != nil {
			t.Fatalf("failed to create dashboard: %s", err)
		}

		done := make(chan error)
		go func() {
			_, err := dash.Search(context.Background(), "Slow")
			done <- err
		}()
		<-blocked
		if _, err = dash.Search(t.Context(), "Fast"); err != nil {
			t.Fatalf("search failed: %s", err)
		}
		close(release)
		if err = <-done; !errors.Is(err, weather.ErrCityNotFound) {
			t.Errorf("expected error to be %s, got %v", weather.ErrCityNotFound, err)
		}

		if buf.Len() != 0 {
			t.Errorf("expected no error logs, got %q", buf.String())
		}
		if state := dash.State(); state.Error != "" || state.Current.City != "Fast" {
			t.Errorf("expected Fast to be displayed without error, got %+v", state)
		}
	})
}

func TestDashboard_DetectLocation(t *testing.T) {
	t.Run("denied geolocation falls back to London", func(t *testing.T) {
		resolver := &mockResolver{}
		dash := testDashboard(t, Config{
			Resolver: resolver,
			Provider: &mockProvider{},
			Locator:  mockLocator{err: geolocation.ErrPermissionDenied},
		})
		state, err := dash.DetectLocation(t.Context())
		if err != nil {
			t.Fatalf("detection failed: %s", err)
		}
		if calls := resolver.calls(); len(calls) != 1 || calls[0] != "London" {
			t.Errorf("expected a single search for London, got %v", calls)
		}
		if state.Current == nil || state.Current.City != "London" {
			t.Errorf("expected London to be displayed, got %+v", state.Current)
		}
	})
	t.Run("detected position uses the location label", func(t *testing.T) {
		resolver := &mockResolver{}
		dash := testDashboard(t, Config{
			Resolver: resolver,
			Provider: &mockProvider{},
			Locator:  mockLocator{coord: geolocation.Coordinate{Lat: 52.52, Lon: 13.405, Source: "mock"}},
		})
		state, err := dash.DetectLocation(t.Context())
		if err != nil {
			t.Fatalf("detection failed: %s", err)
		}
		if len(resolver.calls()) != 0 {
			t.Error("expected no geocoding for a detected position")
		}
		if state.Current.City != "Your Location" || state.Location.Latitude != 52.52 {
			t.Errorf("unexpected result: %+v / %+v", state.Current, state.Location)
		}
	})
	t.Run("fetch failure for the position falls back to London", func(t *testing.T) {
		provider := &mockProvider{fail: func(name string) bool { return name == "Your Location" }}
		dash := testDashboard(t, Config{
			Resolver: &mockResolver{},
			Provider: provider,
			Locator:  mockLocator{coord: geolocation.Coordinate{Lat: 52.52, Lon: 13.405}},
		})
		state, err := dash.DetectLocation(t.Context())
		if err != nil {
			t.Fatalf("detection failed: %s", err)
		}
		if state.Current.City != "London" || state.Error != "" {
			t.Errorf("expected London without error, got %+v", state)
		}
	})
	t.Run("missing locator searches the default city", func(t *testing.T) {
		resolver := &mockResolver{}
		dash := testDashboard(t, Config{Resolver: resolver, Provider: &mockProvider{}})
		if _, err := dash.DetectLocation(t.Context()); err != nil {
			t.Fatalf("detection failed: %s", err)
		}
		if calls := resolver.calls(); len(calls) != 1 || calls[0] != "London" {
			t.Errorf("expected a search for London, got %v", calls)
		}
	})
}

func TestDashboard_Refresh(t *testing.T) {
	t.Run("refresh repeats the last query", func(t *testing.T) {
		resolver := &mockResolver{}
		dash := testDashboard(t, Config{
			Resolver: resolver,
			Provider: &mockProvider{},
			Locator:  mockLocator{coord: geolocation.Coordinate{Lat: 1, Lon: 2}},
		})
		if _, err := dash.Refresh(t.Context()); err != nil {
			t.Fatalf("refresh failed: %s", err)
		}
		if len(resolver.calls()) != 0 {
			t.Error("expected the first refresh to detect the position")
		}
		if _, err := dash.Search(t.Context(), "Rome"); err != nil {
			t.Fatalf("search failed: %s", err)
		}
		state, err := dash.Refresh(t.Context())
		if err != nil {
			t.Fatalf("refresh failed: %s", err)
		}
		if calls := resolver.calls(); len(calls) != 2 || calls[1] != "Rome" {
			t.Errorf("expected the last query to be repeated, got %v", calls)
		}
		if state.RequestID != 3 {
			t.Errorf("expected request ID 3, got %d", state.RequestID)
		}
	})
	t.Run("failed search, then refresh repeats the last successful city", func(t *testing.T) {
		resolver := &mockResolver{missing: "Tokyoo"}
		dash := testDashboard(t, Config{Resolver: resolver, Provider: &mockProvider{}})
		if _, err := dash.Search(t.Context(), "Tokyo"); err != nil {
			t.Fatalf("search failed: %s", err)
		}
		if _, err := dash.Search(t.Context(), "Tokyoo"); !errors.Is(err, weather.ErrCityNotFound) {
			t.Fatalf("expected error to be %s, got %v", weather.ErrCityNotFound, err)
		}
		state, err := dash.Refresh(t.Context())
		if err != nil {
			t.Fatalf("refresh failed: %s", err)
		}
		if calls := resolver.calls(); len(calls) != 3 || calls[2] != "Tokyo" {
			t.Errorf("expected refresh to repeat Tokyo, got %v", calls)
		}
		if state.Error != "" || state.Current == nil || state.Current.City != "Tokyo" {
			t.Errorf("expected refreshed Tokyo weather without error, got %+v", state)
		}
	})
	t.Run("refresh before any success repeats the attempted city", func(t *testing.T) {
		resolver := &mockResolver{missing: "Tokyoo"}
		dash := testDashboard(t, Config{
			Resolver: resolver,
			Provider: &mockProvider{},
			Locator:  mockLocator{coord: geolocation.Coordinate{Lat: 1, Lon: 2}},
		})
		_, _ = dash.Search(t.Context(), "Tokyoo")
		if _, err := dash.Refresh(t.Context()); !errors.Is(err, weather.ErrCityNotFound) {
			t.Errorf("expected error to be %s, got %v", weather.ErrCityNotFound, err)
		}
		if calls := resolver.calls(); len(calls) != 2 || calls[1] != "Tokyoo" {
			t.Errorf("expected the attempted city to be repeated, got %v", calls)
		}
	})
}

func TestDashboard_Advice(t *testing.T) {
	t.Run("advice of the displayed weather survives a failed search", func(t *testing.T) {
		advisor := gatedAdvisor{release: make(chan struct{})}
		provider := &mockProvider{fail: func(name string) bool { return name == "Paris" }}
		dash := testDashboard(t, Config{Resolver: &mockResolver{}, Provider: provider, Advisor: advisor})
		if _, err := dash.Search(t.Context(), "Berlin"); err != nil {
			t.Fatalf("search failed: %s", err)
		}
		if _, err := dash.Search(t.Context(), "Paris"); err == nil {
			t.Fatal("expected search to fail")
		}
		close(advisor.release)
		dash.Wait()

		state := dash.State()
		if state.Current == nil || state.Current.City != "Berlin" {
			t.Fatalf("expected Berlin to remain displayed, got %+v", state.Current)
		}
		if state.Advice != "Bring a jacket in Berlin" || !state.AdviceGenerated {
			t.Errorf("expected Berlin advice, got %q", state.Advice)
		}
	})
	t.Run("advice of replaced weather is discarded", func(t *testing.T) {
		advisor := gatedAdvisor{release: make(chan struct{})}
		dash := testDashboard(t, Config{Resolver: &mockResolver{}, Provider: &mockProvider{}, Advisor: advisor})
		for _, city := range []string{"Berlin", "Paris"} {
			if _, err := dash.Search(t.Context(), city); err != nil {
				t.Fatalf("search failed: %s", err)
			}
		}
		close(advisor.release)
		dash.Wait()

		if got := dash.State().Advice; got != "Bring a jacket in Paris" {
			t.Errorf("expected Paris advice, got %q", got)
		}
	})
}

func TestDashboard_Toggles(t *testing.T) {
	t.Run("toggles are persisted", func(t *testing.T) {
		saver := &mockSaver{}
		dash := testDashboard(t, Config{Resolver: &mockResolver{}, Provider: &mockProvider{}, Preferences: saver})
		dash.ToggleUnit()
		state := dash.ToggleTheme()
		if state.Unit != weather.Fahrenheit || state.Theme != preferences.ThemeLight {
			t.Errorf("unexpected state: %s/%s", state.Unit, state.Theme)
		}
		if len(saver.saved) != 2 || saver.saved[1] != state.Preferences() {
			t.Errorf("unexpected saved preferences: %+v", saver.saved)
		}
	})
	t.Run("save failures do not revert the toggle", func(t *testing.T) {
		saver := &mockSaver{err: errors.New("read-only")}
		dash := testDashboard(t, Config{Resolver: &mockResolver{}, Provider: &mockProvider{}, Preferences: saver})
		if state := dash.ToggleUnit(); state.Unit != weather.Fahrenheit {
			t.Errorf("expected unit to be toggled, got %s", state.Unit)
		}
	})
	t.Run("concurrent toggles persist the final state", func(t *testing.T) {
		saver := &mockSaver{}
		dash := testDashboard(t, Config{Resolver: &mockResolver{}, Provider: &mockProvider{}, Preferences: saver})
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if i%2 == 0 {
					dash.ToggleUnit()
					return
				}
				dash.ToggleTheme()
			}()
		}
		wg.Wait()

		saver.mu.Lock()
		defer saver.mu.Unlock()
		if len(saver.saved) != 20 {
			t.Fatalf("expected 20 saves, got %d", len(saver.saved))
		}
		if last := saver.saved[len(saver.saved)-1]; last != dash.State().Preferences() {
			t.Errorf("expected last save %+v to match the state %+v", last, dash.State().Preferences())
		}
	})
	t.Run("toggles notify listeners", func(t *testing.T) {
		dash := testDashboard(t, Config{Resolver: &mockResolver{}, Provider: &mockProvider{}})
		dash.ToggleUnit()
		select {
		case <-dash.Updates():
		default:
			t.Error("expected an update notification")
		}
	})
}

func testDashboard(t *testing.T, conf Config) *Dashboard {
	t.Helper()
	conf.DefaultCity = "London"
	conf.LocationLabel = "Your Location"
	dash, err := New(conf, testPrefs, logger.New(slog.LevelError))
	if err != nil {
		t.Fatalf("failed to create dashboard: %s", err)
	}
	t.Cleanup(dash.Wait)
	return dash
}
