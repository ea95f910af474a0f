// Package dataprocessing turns Littlefield plot pages into the final
// day-by-day table.
//
// The package has two halves:
//
// Extractor: scans a fetched plot page for the script block carrying the
// embedded "points:" payloads and decodes each payload into a Series of
// day/value pairs.
//
// Merger: a Dataset accumulates every extracted series in the fixed catalog
// order and finalizes them into one wide row per integer simulation day,
// zero-filling missing cells and deriving the running Backlog column.
//
// Typical flow:
//
//	series, err := dataprocessing.ExtractSeries(page, "INV", 1, logger)
//	set := dataprocessing.NewDataset(logger)
//	set.Append(series[0])
//	...
//	rows, err := set.Finalize()
package dataprocessing
