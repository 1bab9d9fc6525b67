// Package captures owns the directory screenshots are written to.
//
// Each capture artifact is named after a cyclic three-digit index:
//
//	004_screenshot_2026-10-19T08-15-30-123Z.png
//
// The last index handed out is persisted in a small ".counter" file inside
// the same directory, so numbering survives server restarts. Indices run
// 001 through 999 and then wrap back to 001.
//
// Artifacts are short lived. Dir.Sweep removes every PNG older than the
// retention window and is run before each capture, which keeps the index
// unambiguous: by the time an index is reused, the artifact that used it
// last has already been swept.
//
// A Resolver turns a client supplied reference into a file on disk. The
// reference is either a screenshot index ("4", "004", "#521") or a
// filesystem path.
package captures
