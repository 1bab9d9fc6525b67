package captures

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CounterFile is the name of the file holding the last used index.
const CounterFile = ".counter"

// CounterStore persists the last screenshot index handed out.
//
// The store holds no state of its own; callers Load the last index, take
// Next, and Save it back once the capture succeeded.
type CounterStore struct {
	path string
	log  *slog.Logger
}

// NewCounterStore returns a store backed by the file at path.
func NewCounterStore(path string, logger *slog.Logger) *CounterStore {
	if logger == nil {
		logger = discardLogger()
	}
	return &CounterStore{path: path, log: logger}
}

// Path returns the counter file location.
func (c *CounterStore) Path() string {
	return c.path
}

// Load returns the last used index. A missing, unreadable or corrupt
// counter file yields 0, so numbering starts fresh at 001.
func (c *CounterStore) Load() Index {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn("Reading screenshot counter failed, starting fresh", "path", c.path, "error", err)
		}
		return 0
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		c.log.Warn("Ignoring corrupt screenshot counter", "path", c.path, "content", string(data))
		return 0
	}
	return Index(n)
}

// Save overwrites the counter file with i. The value is written to a
// temporary file in the same directory and renamed into place.
func (c *CounterStore) Save(i Index) error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, CounterFile+"-*")
	if err != nil {
		return fmt.Errorf("failed to save screenshot counter: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strconv.Itoa(int(i))); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to save screenshot counter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save screenshot counter: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save screenshot counter: %w", err)
	}
	return nil
}
