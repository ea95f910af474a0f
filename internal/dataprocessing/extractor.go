package dataprocessing

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Series maps a simulation day to the value recorded for that day. Days are
// kept as float64 because the site emits fractional days for intra-day
// events; those are filtered out later by Dataset.Finalize.
type Series map[float64]float64

// NotFoundError reports a fetched document that carries no plot payload at
// all. This is fatal for the run: every Littlefield plot page embeds its
// data in a script block, so its absence means the page is not what we
// expect (expired session, error page, site change).
type NotFoundError struct {
	Source string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no script containing 'points:' found in %s", e.Source)
}

// pointsRe captures the single-quoted payload following the points marker,
// e.g. points: '1 9480 2 9360 3 9300'.
var pointsRe = regexp.MustCompile(`points:\s*'([^']+)'`)

// ExtractSeries decodes the day/value series embedded in a plot page.
//
// The page is scanned for the first script block containing the points
// marker; each quoted payload inside that block becomes one Series, in
// document order. Finding fewer payloads than expected is not fatal (the
// caller pads missing series), but it is logged because every zero that
// later appears in the output traces back to this condition.
func ExtractSeries(html, source string, expected int, logger *slog.Logger) ([]Series, error) {
	if logger == nil {
		logger = slog.Default()
	}

	payloads, err := locatePayloads(html, source)
	if err != nil {
		return nil, err
	}

	if len(payloads) < expected {
		logger.Warn("fewer plot payloads than expected, missing series will be padded",
			slog.String("source", source),
			slog.Int("expected", expected),
			slog.Int("found", len(payloads)))
	}

	series := make([]Series, 0, len(payloads))
	for i, payload := range payloads {
		s, skipped := parsePayload(payload)
		if skipped > 0 {
			logger.Debug("dropped unparseable day/value pairs",
				slog.String("source", source),
				slog.Int("payload_index", i),
				slog.Int("pairs_dropped", skipped))
		}
		series = append(series, s)
	}
	return series, nil
}

// locatePayloads finds the first <script> element whose text contains the
// points marker and returns the quoted payloads inside it, in order. Payload
// extraction is kept separate from numeric parsing so that bad tokens inside
// one payload cannot affect how payloads are located.
func locatePayloads(html, source string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document from %s: %w", source, err)
	}

	var script string
	var found bool
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if strings.Contains(text, "points:") {
			script = text
			found = true
			return false
		}
		return true
	})
	if !found {
		return nil, &NotFoundError{Source: source}
	}

	matches := pointsRe.FindAllStringSubmatch(script, -1)
	payloads := make([]string, 0, len(matches))
	for _, m := range matches {
		payloads = append(payloads, m[1])
	}
	return payloads, nil
}

// parsePayload tokenizes a payload by whitespace and walks the tokens two at
// a time as (day, value) pairs. A pair that fails to parse as two numbers is
// dropped without aborting the payload; a trailing unpaired token is
// ignored. If a day repeats within one payload the later value wins.
func parsePayload(payload string) (Series, int) {
	tokens := strings.Fields(payload)
	series := make(Series, len(tokens)/2)
	skipped := 0
	for i := 0; i+1 < len(tokens); i += 2 {
		day, dayErr := strconv.ParseFloat(tokens[i], 64)
		value, valueErr := strconv.ParseFloat(tokens[i+1], 64)
		if dayErr != nil || valueErr != nil {
			skipped++
			continue
		}
		series[day] = value
	}
	return series, skipped
}
