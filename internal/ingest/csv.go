package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"powercurve/internal/workout"
)

// ParseCSV reads a sensor export: one header row, then one row per second.
// Channels come from the configured column indices; Time is the row index.
func ParseCSV(path string, opts Options) (workout.RawSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	return readCSV(f, opts)
}

func readCSV(r io.Reader, opts Options) (workout.RawSeries, error) {
	columns := opts.CSVColumns
	if len(columns) == 0 {
		columns = DefaultCSVColumns
	}
	if _, ok := columns[workout.Power]; !ok {
		return nil, fmt.Errorf("%w: no power column configured", workout.ErrMalformedInput)
	}
	logger := opts.logger()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", workout.ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", workout.ErrMalformedInput, err)
	}
	for ch, idx := range columns {
		if idx < len(header) {
			logger.Debug("csv column", "channel", ch, "index", idx, "caption", header[idx])
		}
	}

	raw := make(workout.RawSeries, len(columns)+1)
	for ch := range columns {
		raw[ch] = nil
	}

	line := 1
	skipped := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", workout.ErrMalformedInput, line, err)
		}

		if blankRow(row, columns) {
			skipped++
			continue
		}

		for ch, idx := range columns {
			if idx >= len(row) {
				raw[ch] = append(raw[ch], nil)
				continue
			}
			field := strings.TrimSpace(row[idx])
			if field == "" {
				raw[ch] = append(raw[ch], nil)
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				logger.Warn("unparseable csv field", "line", line, "channel", ch, "value", field)
				raw[ch] = append(raw[ch], nil)
				continue
			}
			raw[ch] = append(raw[ch], present(v))
		}
	}

	if skipped > 0 {
		logger.Debug("skipped blank csv rows", "count", skipped)
	}

	n := len(raw[workout.Power])
	if n == 0 {
		return nil, fmt.Errorf("%w: no data rows", workout.ErrEmptySeries)
	}
	raw[workout.Time] = make([]*float64, n)
	for i := range n {
		raw[workout.Time][i] = present(float64(i))
	}
	return raw, nil
}

// blankRow reports whether every configured column is empty or absent.
func blankRow(row []string, columns map[workout.Channel]int) bool {
	for _, idx := range columns {
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			return false
		}
	}
	return true
}
