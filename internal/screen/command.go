package screen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultSuccessPattern is the line a capture helper may print on stderr
// without the capture being treated as failed.
const DefaultSuccessPattern = "Screenshot saved to:"

// ErrNoCommand is returned when no capture command is configured and none
// could be detected for the platform.
var ErrNoCommand = errors.New("no screen capture command configured")

// CommandMechanism captures by running an external program with the
// destination path appended to Args.
type CommandMechanism struct {
	// Args is the program and its leading arguments.
	Args []string

	// SuccessPattern marks stderr output that does not indicate failure.
	// Empty means DefaultSuccessPattern.
	SuccessPattern string

	Logger *slog.Logger
}

var _ Mechanism = (*CommandMechanism)(nil)

// Capture runs the command. It fails when the command exits non-zero, or
// when it writes anything to stderr that does not contain the success
// pattern.
func (m *CommandMechanism) Capture(ctx context.Context, path string) error {
	if len(m.Args) == 0 {
		return ErrNoCommand
	}

	args := append(append([]string{}, m.Args[1:]...), path)
	cmd := exec.CommandContext(ctx, m.Args[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	errText := strings.TrimSpace(stderr.String())

	if runErr != nil {
		if errText != "" {
			return fmt.Errorf("%s: %w: %s", m.Args[0], runErr, errText)
		}
		return fmt.Errorf("%s: %w", m.Args[0], runErr)
	}

	pattern := m.SuccessPattern
	if pattern == "" {
		pattern = DefaultSuccessPattern
	}
	if errText != "" && !strings.Contains(errText, pattern) {
		return fmt.Errorf("%s: %s", m.Args[0], errText)
	}

	if out := strings.TrimSpace(stdout.String()); out != "" {
		m.logger().Debug("Capture command output", "command", m.Args[0], "output", out)
	}
	return nil
}

func (m *CommandMechanism) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m.Logger
}

// candidate is a capture program and the arguments preceding the path.
type candidate struct {
	goos string
	args []string
}

var candidates = []candidate{
	{"darwin", []string{"screencapture", "-x"}},
	{"linux", []string{"grim"}},
	{"linux", []string{"gnome-screenshot", "-f"}},
	{"linux", []string{"spectacle", "-b", "-n", "-o"}},
	{"linux", []string{"scrot", "-o"}},
	{"linux", []string{"import", "-window", "root"}},
	{"freebsd", []string{"scrot", "-o"}},
	{"freebsd", []string{"import", "-window", "root"}},
}

// DefaultCommand returns the first capture program for goos found by
// lookPath, or nil when there is none.
func DefaultCommand(goos string, lookPath func(string) (string, error)) []string {
	for _, c := range candidates {
		if c.goos != goos {
			continue
		}
		if _, err := lookPath(c.args[0]); err == nil {
			return append([]string{}, c.args...)
		}
	}
	return nil
}
