package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// SchemaWidth is the number of metric columns every finalized row carries,
// before the derived Backlog column.
const SchemaWidth = 19

// ColumnHeaders lists the metric columns in the order their series are
// appended: inventory, the nine single-series metrics, then the three
// decision-indexed series of JOBT, JOBREV and JOBOUT.
var ColumnHeaders = []string{
	"INV",
	"CASH", "JOBIN", "JOBQ", "S1Q", "S2Q", "S3Q",
	"S1UTIL", "S2UTIL", "S3UTIL",
	"JOBT0", "JOBT1", "JOBT2",
	"JOBREV0", "JOBREV1", "JOBREV2",
	"JOBOUT0", "JOBOUT1", "JOBOUT2",
}

// Column positions used by the Backlog derivation.
const (
	colJobIn   = 2
	colJobOut0 = 16
)

// SchemaError reports a day whose accumulated values exceed the fixed
// schema width. This cannot happen with well-formed plot pages; it means an
// upstream page carried more series than its category allows.
type SchemaError struct {
	Day   float64
	Count int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("day %v accumulated %d values, schema allows %d", e.Day, e.Count, SchemaWidth)
}

// Row is one reporting day across the full schema. Values always has
// exactly SchemaWidth entries, in ColumnHeaders order.
type Row struct {
	Day     float64
	Values  []float64
	Backlog float64
}

// Dataset accumulates per-day measurements as metric series arrive. It is
// owned by a single run and must receive series in the fixed catalog order,
// since a value's column is determined by its append position.
type Dataset struct {
	days   map[float64][]float64
	logger *slog.Logger
}

// NewDataset returns an empty accumulator.
func NewDataset(logger *slog.Logger) *Dataset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dataset{
		days:   make(map[float64][]float64),
		logger: logger,
	}
}

// Append merges one series into the dataset. A day seen for the first time
// gets a fresh entry; its columns from earlier metrics are zero-filled
// during Finalize.
func (d *Dataset) Append(s Series) {
	for day, value := range s {
		d.days[day] = append(d.days[day], value)
	}
}

// PadSeries grows a multi-series extraction result to want series by
// synthesizing all-zero series over the union of days seen in the found
// series. With no found series the union is empty and the synthesized
// series carry no days at all; missing cells are still zero-filled during
// Finalize. Every synthesized series is logged so the zeros in the output
// stay attributable.
func PadSeries(found []Series, want int, dataset string, logger *slog.Logger) []Series {
	if len(found) >= want {
		return found
	}
	if logger == nil {
		logger = slog.Default()
	}

	union := make(map[float64]struct{})
	for _, s := range found {
		for day := range s {
			union[day] = struct{}{}
		}
	}

	padded := append([]Series{}, found...)
	for len(padded) < want {
		zero := make(Series, len(union))
		for day := range union {
			zero[day] = 0
		}
		logger.Warn("padding missing series with zeros",
			slog.String("dataset", dataset),
			slog.Int("series_index", len(padded)),
			slog.Int("days", len(union)))
		padded = append(padded, zero)
	}
	return padded
}

// Finalize turns the accumulated measurements into the output table:
// short rows are right-padded with zeros to the schema width, fractional
// day keys (intra-day order events, not reporting points) are dropped, the
// remaining days are sorted ascending and the Backlog column is computed as
// a running total over the sorted rows. The accumulator is not mutated, so
// Finalize on the same dataset always yields the same table.
func (d *Dataset) Finalize() ([]Row, error) {
	days := make([]float64, 0, len(d.days))
	for day, values := range d.days {
		if len(values) > SchemaWidth {
			return nil, &SchemaError{Day: day, Count: len(values)}
		}
		if day != math.Trunc(day) {
			d.logger.Debug("dropping intra-day event point",
				slog.Float64("day", day))
			continue
		}
		days = append(days, day)
	}
	sort.Float64s(days)

	rows := make([]Row, 0, len(days))
	var backlog float64
	for _, day := range days {
		accumulated := d.days[day]
		if len(accumulated) < SchemaWidth {
			d.logger.Debug("zero-filling missing metric values",
				slog.Float64("day", day),
				slog.String("first_missing", ColumnHeaders[len(accumulated)]),
				slog.Int("missing", SchemaWidth-len(accumulated)))
		}
		values := make([]float64, SchemaWidth)
		copy(values, accumulated)

		backlog += values[colJobIn] - values[colJobOut0] - values[colJobOut0+1] - values[colJobOut0+2]
		rows = append(rows, Row{Day: day, Values: values, Backlog: backlog})
	}
	return rows, nil
}
