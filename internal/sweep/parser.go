package sweep

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is a single parsed sweep output line: the peak power observed over one
// frequency band during one pass. Rows are immutable once parsed.
type Row struct {
	Timestamp     time.Time
	FrequencyLow  int64   // Hz low from output
	FrequencyHigh int64   // Hz high from output
	NumSamples    int     // Number of samples used for this measurement
	PeakPower     float64 // Peak power in dBm over the band
}

const timestampLayout = "2006-01-02 15:04:05"

// ParseRow parses one sweep output line with columns
// `date, time, hz_low, hz_high, num_samples, power[, power...]`.
// When more than one power column is present, the row's peak power is the
// maximum across them.
func ParseRow(line string) (Row, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 6 {
		return Row{}, fmt.Errorf("invalid sweep output: expected at least 6 fields, got %d", len(fields))
	}

	var row Row
	var err error

	// time.Parse accepts a fractional second after the seconds field even
	// when the layout has none, which covers both rtl_power and hackrf_sweep
	// timestamp flavors.
	dateTime := strings.TrimSpace(fields[0]) + " " + strings.TrimSpace(fields[1])
	if row.Timestamp, err = time.Parse(timestampLayout, dateTime); err != nil {
		return Row{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	freqLow, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid start frequency: %w", err)
	}
	row.FrequencyLow = int64(freqLow)

	freqHigh, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid end frequency: %w", err)
	}
	row.FrequencyHigh = int64(freqHigh)

	if row.NumSamples, err = strconv.Atoi(strings.TrimSpace(fields[4])); err != nil {
		return Row{}, fmt.Errorf("invalid number of samples: %w", err)
	}

	peak := math.Inf(-1)
	var valid bool
	for _, field := range fields[5:] {
		power, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			continue // Skip invalid power readings
		}
		peak = math.Max(peak, power)
		valid = true
	}
	if !valid {
		return Row{}, fmt.Errorf("invalid sweep output: no parsable power readings")
	}
	row.PeakPower = peak

	return row, nil
}

// ParseOutput reads line-oriented sweep output and returns all parsable rows
// together with the number of skipped lines. Malformed lines are skipped
// rather than failing the whole sweep: a degraded scan still yields the
// candidates it could read.
func ParseOutput(r io.Reader) (rows []Row, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		row, err := ParseRow(line)
		if err != nil {
			skipped++
			continue
		}

		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return rows, skipped, fmt.Errorf("reading sweep output: %w", err)
	}

	return rows, skipped, nil
}
