// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/weather"
)

const (
	// PageSize is the number of cities per table page.
	PageSize = 5

	tableConcurrency = 3
)

// Cities is the list of sample cities shown in the city table.
var Cities = []string{
	"New York", "London", "Tokyo", "Paris", "Dubai", "Singapore", "Sydney", "Mumbai",
	"Berlin", "Madrid", "Rome", "Toronto", "Hong Kong", "Chicago", "Los Angeles",
	"Seoul", "Istanbul", "Mexico City", "São Paulo", "Jakarta", "Bangkok", "Moscow",
	"Beijing", "Cairo", "Cape Town",
}

// Lookuper resolves a city and fetches its weather.
type Lookuper interface {
	Lookup(ctx context.Context, city string) (*weather.Report, error)
}

// CitySummary is a single row of the city table.
type CitySummary struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Temperature float64           `json:"temperature"`
	Condition   weather.Condition `json:"condition"`
	Humidity    int               `json:"humidity"`
	WindSpeed   float64           `json:"windSpeed"`
	Available   bool              `json:"available"`
}

// TablePage is one page of the city table. Number is 1-based.
type TablePage struct {
	Number     int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Rows       []CitySummary `json:"rows"`
}

// HasPrevious reports whether a page before this one exists.
func (p TablePage) HasPrevious() bool {
	return p.Number > 1
}

// HasNext reports whether a page after this one exists.
func (p TablePage) HasNext() bool {
	return p.Number < p.TotalPages
}

// CityTable provides the paginated weather summary of the sample cities.
type CityTable struct {
	lookup Lookuper
	cities []string
	logger *logger.Logger
}

func NewCityTable(lookup Lookuper, log *logger.Logger, cities ...string) *CityTable {
	if len(cities) == 0 {
		cities = Cities
	}
	return &CityTable{lookup: lookup, cities: cities, logger: log}
}

// Len returns the number of tracked cities.
func (t *CityTable) Len() int {
	return len(t.cities)
}

// TotalPages returns the number of pages.
func (t *CityTable) TotalPages() int {
	return max(1, (len(t.cities)+PageSize-1)/PageSize)
}

// Clamp limits page to the range of existing pages.
func (t *CityTable) Clamp(page int) int {
	return min(max(page, 1), t.TotalPages())
}

// Page fetches the weather for every city of the given page concurrently. Out of range page
// numbers are clamped. Cities that cannot be looked up are marked unavailable. An error is
// only returned if ctx is done.
func (t *CityTable) Page(ctx context.Context, page int) (TablePage, error) {
	page = t.Clamp(page)
	start := (page - 1) * PageSize
	end := min(start+PageSize, len(t.cities))

	rows := make([]CitySummary, end-start)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(tableConcurrency)
	for i := start; i < end; i++ {
		row := &rows[i-start]
		row.ID, row.Name, row.Condition = i, t.cities[i], weather.Unknown
		group.Go(func() error {
			report, err := t.lookup.Lookup(groupCtx, row.Name)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				t.logger.Warn("failed to fetch weather for table city", slog.String("city", row.Name),
					logger.Err(err))
				return nil
			}
			row.Temperature = report.Current.Temperature
			row.Condition = report.Current.Condition
			row.Humidity = report.Current.Humidity
			row.WindSpeed = report.Current.WindSpeed
			row.Available = true
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return TablePage{}, err
	}

	return TablePage{Number: page, TotalPages: t.TotalPages(), Rows: rows}, nil
}
