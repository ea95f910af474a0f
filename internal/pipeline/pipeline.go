// Package pipeline runs the sequential collection pass: every catalog
// dataset is fetched, decoded and merged into one table. The run is strictly
// linear and fail-fast; the first transport or extraction failure aborts it
// with nothing written.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"lfcli/internal/dataprocessing"
	"lfcli/internal/littlefield"
)

// Fetcher retrieves the plot page for one Littlefield dataset. The session
// client implements it; tests substitute canned pages.
type Fetcher interface {
	FetchPlot(ctx context.Context, dataset string) (string, error)
}

// Collect fetches every dataset in catalog order, extracts its series, pads
// short multi-series pages and merges everything into the finalized table.
func Collect(ctx context.Context, fetcher Fetcher, logger *slog.Logger) ([]dataprocessing.Row, error) {
	if logger == nil {
		logger = slog.Default()
	}

	set := dataprocessing.NewDataset(logger)
	for _, category := range littlefield.Catalog {
		page, err := fetcher.FetchPlot(ctx, category.Dataset)
		if err != nil {
			return nil, fmt.Errorf("fetch %s plot: %w", category.Dataset, err)
		}

		series, err := dataprocessing.ExtractSeries(page, category.Dataset, category.Series, logger)
		if err != nil {
			return nil, err
		}
		if category.Series > 1 {
			series = dataprocessing.PadSeries(series, category.Series, category.Dataset, logger)
		}

		for _, s := range series {
			set.Append(s)
		}
		logger.Info("merged plot series",
			slog.String("dataset", category.Dataset),
			slog.Int("series", len(series)))
	}

	rows, err := set.Finalize()
	if err != nil {
		return nil, fmt.Errorf("finalize dataset: %w", err)
	}
	return rows, nil
}
