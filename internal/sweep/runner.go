package sweep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

const (
	// Runtime is the external sweep tool binary.
	Runtime = "hackrf_sweep"

	// DefaultTimeout bounds a single one-shot sweep so a wedged tool cannot
	// stall the tick loop indefinitely.
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrRuntimeNotFound is returned when the sweep tool binary is not installed.
	ErrRuntimeNotFound = errors.New("sweep runtime not found")

	// ErrTimeout is returned when the sweep tool did not finish within the
	// configured timeout.
	ErrTimeout = errors.New("sweep timed out")

	// ErrNoData is returned when the sweep tool exited cleanly but produced
	// no parsable rows at all.
	ErrNoData = errors.New("sweep produced no parsable output")
)

// Runner performs one wide-band sweep and returns the parsed rows.
type Runner interface {
	Sweep(ctx context.Context) ([]Row, error)
}

// WithTimeout sets the per-sweep timeout.
func WithTimeout(timeout time.Duration) func(*CommandRunner) {
	return func(r *CommandRunner) {
		r.timeout = timeout
	}
}

// WithRunnerLogger sets the logger for the runner.
func WithRunnerLogger(logger *slog.Logger) func(*CommandRunner) {
	return func(r *CommandRunner) {
		r.logger = logger.With(slog.String("runtime", Runtime))
	}
}

// CommandRunner runs `hackrf_sweep` as a one-shot subprocess and parses its
// stdout. The runner is an exclusive resource: callers must not overlap
// Sweep invocations for the same device.
type CommandRunner struct {
	binPath string
	args    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommandRunner resolves the sweep tool binary and prepares its arguments.
func NewCommandRunner(config *Config, options ...func(*CommandRunner)) (*CommandRunner, error) {
	binPath, err := exec.LookPath(Runtime)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRuntimeNotFound, Runtime, err)
	}

	args, err := config.Args()
	if err != nil {
		return nil, fmt.Errorf("building sweep args: %w", err)
	}

	r := CommandRunner{
		binPath: binPath,
		args:    args,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&r)
	}

	return &r, nil
}

// Sweep runs one sweep pass bounded by the runner's timeout.
func (r *CommandRunner) Sweep(ctx context.Context) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binPath, r.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("running %s: %w: %s", Runtime, err, bytes.TrimSpace(stderr.Bytes()))
	}

	rows, skipped, err := ParseOutput(&stdout)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		r.logger.Warn("skipped malformed sweep rows", slog.Int("skipped", skipped))
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	r.logger.Debug("sweep complete",
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(start)))

	return rows, nil
}
