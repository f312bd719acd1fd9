package rssi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Runtime is the external IQ capture tool binary.
	Runtime = "hackrf_transfer"

	// DefaultTimeout bounds one measurement so a stalled capture cannot block
	// the tracking tick for more than a couple of seconds.
	DefaultTimeout = 2 * time.Second

	// DefaultSampleRate is the capture sample rate in samples per second.
	DefaultSampleRate = 10_000_000

	// DefaultNumSamples keeps a measurement capture short; recording-quality
	// captures use RecordNumSamples instead.
	DefaultNumSamples = 262_144

	// RecordNumSamples is the capture length when IQ recording is enabled.
	RecordNumSamples = 10_000_000
)

var (
	// ErrRuntimeNotFound is returned when the capture tool binary is not installed.
	ErrRuntimeNotFound = errors.New("capture runtime not found")

	// ErrTimeout is returned when the capture tool did not finish within the
	// configured timeout.
	ErrTimeout = errors.New("measurement timed out")
)

// Config configures the `hackrf_transfer` capture used for each measurement.
type Config struct {
	SampleRate int64 `yaml:"sampleRate" json:"sampleRate"` // -s sample rate in Hz
	NumSamples int64 `yaml:"numSamples" json:"numSamples"` // -n samples to capture

	// RecordIQ keeps capture files under RecordDir instead of discarding
	// them, using the longer RecordNumSamples capture.
	RecordIQ  bool   `yaml:"recordIQ" json:"recordIQ"`
	RecordDir string `yaml:"recordDir" json:"recordDir"`

	TimeoutSeconds float64 `yaml:"timeoutSeconds" json:"timeoutSeconds"`
}

func (c *Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// WithMeterLogger sets the logger for the meter.
func WithMeterLogger(logger *slog.Logger) func(*CommandMeter) {
	return func(m *CommandMeter) {
		m.logger = logger.With(slog.String("runtime", Runtime))
	}
}

// CommandMeter measures power by running `hackrf_transfer` into a capture
// file and folding the IQ buffer down to a single dBm estimate. The meter is
// an exclusive resource: callers must not overlap Measure invocations for
// the same device.
type CommandMeter struct {
	binPath    string
	sampleRate int64
	numSamples int64
	timeout    time.Duration

	recordIQ  bool
	recordDir string

	logger *slog.Logger
}

// NewCommandMeter resolves the capture tool binary and applies defaults.
func NewCommandMeter(config *Config, options ...func(*CommandMeter)) (*CommandMeter, error) {
	binPath, err := exec.LookPath(Runtime)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRuntimeNotFound, Runtime, err)
	}

	m := CommandMeter{
		binPath:    binPath,
		sampleRate: config.SampleRate,
		numSamples: config.NumSamples,
		timeout:    config.timeout(),
		recordIQ:   config.RecordIQ,
		recordDir:  config.RecordDir,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if m.sampleRate <= 0 {
		m.sampleRate = DefaultSampleRate
	}
	if m.numSamples <= 0 {
		m.numSamples = DefaultNumSamples
	}
	if m.recordIQ {
		if m.recordDir == "" {
			m.recordDir = "iq_recordings"
		}
		if err := os.MkdirAll(m.recordDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating IQ recording directory: %w", err)
		}
		m.numSamples = max(m.numSamples, RecordNumSamples)
	}

	for _, option := range options {
		option(&m)
	}

	return &m, nil
}

// Measure captures a burst of IQ samples at the given center frequency and
// returns the power estimate in dBm.
func (m *CommandMeter) Measure(ctx context.Context, frequency int64) (float64, error) {
	path, keep := m.capturePath(frequency)
	if !keep {
		defer os.Remove(path)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.binPath,
		"-r", path,
		"-f", strconv.FormatInt(frequency, 10),
		"-s", strconv.FormatInt(m.sampleRate, 10),
		"-n", strconv.FormatInt(m.numSamples, 10),
	)

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// A partial capture may still be readable; keep going only if the
		// file holds data, otherwise report the timeout.
		if info, statErr := os.Stat(path); statErr != nil || info.Size() < 2 {
			return 0, fmt.Errorf("%w after %s", ErrTimeout, m.timeout)
		}
	} else if err != nil {
		return 0, fmt.Errorf("running %s: %w", Runtime, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading capture: %w", err)
	}

	power, err := Power(raw)
	if err != nil {
		return 0, err
	}

	m.logger.Debug("measurement complete",
		slog.Int64("frequency", frequency),
		slog.Float64("power", power))

	return power, nil
}

func (m *CommandMeter) capturePath(frequency int64) (path string, keep bool) {
	if m.recordIQ {
		name := fmt.Sprintf("%.2fMHz_%s.iq", float64(frequency)/1e6, time.Now().UTC().Format("20060102_150405"))
		return filepath.Join(m.recordDir, name), true
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("ghostbuster_%d.iq", frequency)), false
}
