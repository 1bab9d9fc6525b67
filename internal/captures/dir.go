package captures

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/look-mcp/internal/toolerr"
)

// DefaultRetention is how long an artifact is kept before Sweep removes it.
const DefaultRetention = time.Hour

// Dir is the captures directory.
type Dir struct {
	path   string
	log    *slog.Logger
	now    func() time.Time
	remove func(string) error
}

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets the logger used for sweep and lookup diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dir) {
		if logger != nil {
			d.log = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dir) {
		d.now = now
	}
}

// NewDir returns a Dir rooted at path. The directory is not created until
// Ensure is called.
func NewDir(path string, opts ...Option) *Dir {
	d := &Dir{
		path:   path,
		log:    discardLogger(),
		now:    time.Now,
		remove: os.Remove,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path returns the directory location.
func (d *Dir) Path() string {
	return d.path
}

// Now returns the current time according to the Dir's clock.
func (d *Dir) Now() time.Time {
	return d.now()
}

// Ensure creates the directory if it does not exist.
func (d *Dir) Ensure() error {
	return os.MkdirAll(d.path, 0o755)
}

// Counter returns the counter store kept inside the directory.
func (d *Dir) Counter() *CounterStore {
	return NewCounterStore(filepath.Join(d.path, CounterFile), d.log)
}

// ArtifactPath returns where the capture with index i taken at t is written.
func (d *Dir) ArtifactPath(i Index, t time.Time) string {
	return filepath.Join(d.path, ArtifactName(i, t))
}

// Sweep deletes every PNG in the directory last modified more than maxAge
// ago and returns how many were removed. Cleanup is best effort: a missing
// directory is not an error, and failures are logged rather than returned.
// A non-positive maxAge disables sweeping.
func (d *Dir) Sweep(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}

	entries, err := os.ReadDir(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0
		}
		d.log.Warn("Cleanup error", "dir", d.path, "error", err)
		return 0
	}

	cutoff := d.now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ArtifactExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			d.log.Warn("Cleanup stat failed", "file", e.Name(), "error", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := d.remove(filepath.Join(d.path, e.Name())); err != nil {
			d.log.Warn("Cleanup remove failed", "file", e.Name(), "error", err)
			continue
		}
		d.log.Info("Deleted old capture", "file", e.Name())
		removed++
	}
	return removed
}

// Find returns the path of the artifact carrying index i. Listing errors
// are reported the same way as a missing artifact.
func (d *Dir) Find(i Index) (string, error) {
	notFound := toolerr.Lookup("Screenshot #%s not found", i)

	entries, err := os.ReadDir(d.path)
	if err != nil {
		d.log.Debug("Listing captures failed", "dir", d.path, "error", err)
		return "", notFound
	}

	prefix := i.String() + "_"
	var (
		best    string
		bestMod time.Time
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ArtifactExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		// Two artifacts share an index only when a sweep was skipped; prefer
		// the newest one.
		if best == "" || info.ModTime().After(bestMod) {
			best, bestMod = name, info.ModTime()
		}
	}
	if best == "" {
		return "", notFound
	}
	return filepath.Join(d.path, best), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
