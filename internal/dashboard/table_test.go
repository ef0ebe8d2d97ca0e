// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/weather"
)

type mockLookup struct {
	mu     sync.Mutex
	cities []string
	fail   map[string]bool
}

func (m *mockLookup) Lookup(_ context.Context, city string) (*weather.Report, error) {
	m.mu.Lock()
	m.cities = append(m.cities, city)
	m.mu.Unlock()
	if m.fail[city] {
		return nil, weather.ErrCityNotFound
	}
	report := testReport(city, 20)
	report.Current.Humidity = 40
	report.Current.Condition = weather.Rainy
	return report, nil
}

func TestCityTable_TotalPages(t *testing.T) {
	table := NewCityTable(&mockLookup{}, logger.New(slog.LevelError))
	if table.TotalPages() != 5 {
		t.Errorf("expected 5 pages for %d cities, got %d", len(Cities), table.TotalPages())
	}
	if table.Len() != len(Cities) {
		t.Errorf("expected %d cities, got %d", len(Cities), table.Len())
	}
	if got := NewCityTable(&mockLookup{}, logger.New(slog.LevelError), "A", "B", "C", "D", "E", "F").TotalPages(); got != 2 {
		t.Errorf("expected 2 pages, got %d", got)
	}
}

func TestCityTable_Page(t *testing.T) {
	t.Run("first page holds the first five cities", func(t *testing.T) {
		lookup := &mockLookup{}
		page, err := NewCityTable(lookup, logger.New(slog.LevelError)).Page(t.Context(), 1)
		if err != nil {
			t.Fatalf("failed to fetch page: %s", err)
		}
		if page.Number != 1 || page.TotalPages != 5 || len(page.Rows) != PageSize {
			t.Fatalf("unexpected page: %+v", page)
		}
		for i, row := range page.Rows {
			if row.Name != Cities[i] || row.ID != i {
				t.Errorf("unexpected row %d: %+v", i, row)
			}
			if !row.Available || row.Temperature != 20 || row.Condition != weather.Rainy || row.Humidity != 40 {
				t.Errorf("unexpected row values %d: %+v", i, row)
			}
		}
		if page.HasPrevious() || !page.HasNext() {
			t.Error("unexpected navigation flags on the first page")
		}
	})
	t.Run("page numbers are clamped", func(t *testing.T) {
		table := NewCityTable(&mockLookup{}, logger.New(slog.LevelError))
		tests := []struct {
			in, want int
		}{
			{-3, 1}, {0, 1}, {3, 3}, {5, 5}, {6, 5}, {100, 5},
		}
		for _, tc := range tests {
			page, err := table.Page(t.Context(), tc.in)
			if err != nil {
				t.Fatalf("failed to fetch page: %s", err)
			}
			if page.Number != tc.want {
				t.Errorf("expected page %d to clamp to %d, got %d", tc.in, tc.want, page.Number)
			}
		}
		last, _ := table.Page(t.Context(), 5)
		if last.Rows[4].Name != "Cape Town" || last.HasNext() || !last.HasPrevious() {
			t.Errorf("unexpected last page: %+v", last)
		}
	})
	t.Run("failed cities are marked unavailable", func(t *testing.T) {
		lookup := &mockLookup{fail: map[string]bool{"Tokyo": true}}
		page, err := NewCityTable(lookup, logger.New(slog.LevelError)).Page(t.Context(), 1)
		if err != nil {
			t.Fatalf("failed to fetch page: %s", err)
		}
		row := page.Rows[2]
		if row.Name != "Tokyo" || row.Available || row.Condition != weather.Unknown {
			t.Errorf("expected Tokyo to be unavailable, got %+v", row)
		}
		if !page.Rows[1].Available {
			t.Error("expected other cities to stay available")
		}
	})
	t.Run("canceled context fails the page", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := NewCityTable(&mockLookup{}, logger.New(slog.LevelError)).Page(ctx, 1)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context cancellation, got %v", err)
		}
	})
}
