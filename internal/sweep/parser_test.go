package sweep

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseRow(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantLow  int64
		wantHigh int64
		wantNum  int
		wantPeak float64
		wantErr  bool
	}{
		{
			name:     "single power column",
			line:     "2024-05-01, 10:15:30, 400000000, 405000000, 8192, -72.4",
			wantLow:  400_000_000,
			wantHigh: 405_000_000,
			wantNum:  8192,
			wantPeak: -72.4,
		},
		{
			name:     "peak is max across power columns",
			line:     "2024-05-01, 10:15:30, 400000000, 405000000, 8192, -80.1, -55.2, -61.0",
			wantLow:  400_000_000,
			wantHigh: 405_000_000,
			wantNum:  8192,
			wantPeak: -55.2,
		},
		{
			name:     "fractional second timestamp",
			line:     "2024-05-01, 10:15:30.123456, 400000000, 405000000, 8192, -60",
			wantLow:  400_000_000,
			wantHigh: 405_000_000,
			wantNum:  8192,
			wantPeak: -60,
		},
		{
			name:     "scientific notation frequencies",
			line:     "2024-05-01, 10:15:30, 4.0e8, 4.05e8, 8192, -45.5",
			wantLow:  400_000_000,
			wantHigh: 405_000_000,
			wantNum:  8192,
			wantPeak: -45.5,
		},
		{
			name:     "invalid power columns are skipped",
			line:     "2024-05-01, 10:15:30, 400000000, 405000000, 8192, nope, -58.0",
			wantLow:  400_000_000,
			wantHigh: 405_000_000,
			wantNum:  8192,
			wantPeak: -58.0,
		},
		{
			name:    "too few fields",
			line:    "2024-05-01, 10:15:30, 400000000, 405000000, 8192",
			wantErr: true,
		},
		{
			name:    "bad timestamp",
			line:    "yesterday, 10:15:30, 400000000, 405000000, 8192, -60",
			wantErr: true,
		},
		{
			name:    "bad start frequency",
			line:    "2024-05-01, 10:15:30, low, 405000000, 8192, -60",
			wantErr: true,
		},
		{
			name:    "bad sample count",
			line:    "2024-05-01, 10:15:30, 400000000, 405000000, many, -60",
			wantErr: true,
		},
		{
			name:    "no parsable power readings",
			line:    "2024-05-01, 10:15:30, 400000000, 405000000, 8192, nope",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row, err := ParseRow(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseRow(%q) = %+v, expected error", tc.line, row)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRow(%q) failed: %v", tc.line, err)
			}

			if row.FrequencyLow != tc.wantLow {
				t.Errorf("FrequencyLow = %d, want %d", row.FrequencyLow, tc.wantLow)
			}
			if row.FrequencyHigh != tc.wantHigh {
				t.Errorf("FrequencyHigh = %d, want %d", row.FrequencyHigh, tc.wantHigh)
			}
			if row.NumSamples != tc.wantNum {
				t.Errorf("NumSamples = %d, want %d", row.NumSamples, tc.wantNum)
			}
			if math.Abs(row.PeakPower-tc.wantPeak) > 1e-9 {
				t.Errorf("PeakPower = %f, want %f", row.PeakPower, tc.wantPeak)
			}
		})
	}
}

func TestParseRow_Timestamp(t *testing.T) {
	row, err := ParseRow("2024-05-01, 10:15:30, 400000000, 405000000, 8192, -60")
	if err != nil {
		t.Fatalf("ParseRow failed: %v", err)
	}

	want := time.Date(2024, 5, 1, 10, 15, 30, 0, time.UTC)
	if !row.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", row.Timestamp, want)
	}
}

func TestParseOutput(t *testing.T) {
	output := strings.Join([]string{
		"2024-05-01, 10:15:30, 400000000, 405000000, 8192, -72.4",
		"",
		"garbage line",
		"2024-05-01, 10:15:30, 405000000, 410000000, 8192, -58.0, -44.1",
		"   ",
		"2024-05-01, 10:15:31, 410000000, 415000000, 8192, -90.3",
	}, "\n")

	rows, skipped, err := ParseOutput(strings.NewReader(output))
	if err != nil {
		t.Fatalf("ParseOutput failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if skipped != 1 {
		t.Errorf("Expected 1 skipped line, got %d", skipped)
	}

	if rows[1].PeakPower != -44.1 {
		t.Errorf("Row 1 peak = %f, want -44.1", rows[1].PeakPower)
	}
	if rows[2].FrequencyLow != 410_000_000 {
		t.Errorf("Row 2 low = %d, want 410000000", rows[2].FrequencyLow)
	}
}

func TestParseOutput_Empty(t *testing.T) {
	rows, skipped, err := ParseOutput(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseOutput failed: %v", err)
	}
	if len(rows) != 0 || skipped != 0 {
		t.Errorf("Expected no rows and no skips, got %d rows, %d skipped", len(rows), skipped)
	}
}
