package screen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/look-mcp/internal/toolerr"
)

// ErrNoOutput is returned when a mechanism reported success but the
// destination file does not exist.
var ErrNoOutput = errors.New("capture produced no file")

// Mechanism writes a screenshot of the desktop as a PNG to path.
type Mechanism interface {
	Capture(ctx context.Context, path string) error
}

// MechanismFunc adapts a function to the Mechanism interface.
type MechanismFunc func(ctx context.Context, path string) error

// Capture calls f.
func (f MechanismFunc) Capture(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Invoker runs a Mechanism and checks its result.
type Invoker struct {
	mech    Mechanism
	timeout time.Duration
	log     *slog.Logger
}

// NewInvoker wraps mech. A positive timeout bounds each capture; zero
// leaves the mechanism unbounded.
func NewInvoker(mech Mechanism, timeout time.Duration, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Invoker{mech: mech, timeout: timeout, log: logger}
}

// Capture takes a screenshot into path. Every failure is returned as a
// toolerr capture error, and whatever the mechanism left at path is
// removed so a failed capture never occupies an index.
func (inv *Invoker) Capture(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return toolerr.Capture(fmt.Errorf("failed to create capture directory: %w", err))
	}

	if inv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := inv.mech.Capture(ctx, path); err != nil {
		inv.discard(path)
		return toolerr.Capture(err)
	}

	if _, err := os.Stat(path); err != nil {
		return toolerr.Capture(fmt.Errorf("%w: %s", ErrNoOutput, path))
	}

	inv.log.Debug("Screenshot captured", "path", path, "elapsed", time.Since(start))
	return nil
}

func (inv *Invoker) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		inv.log.Warn("Failed to remove partial capture", "path", path, "error", err)
	}
}
