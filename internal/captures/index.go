package captures

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxIndex is the largest screenshot index before numbering wraps to 1.
const MaxIndex Index = 999

// ArtifactExt is the file extension of capture artifacts.
const ArtifactExt = ".png"

// Index identifies a capture. The zero value means "never used".
type Index int

// Next returns the index following i, cycling 1..999.
func (i Index) Next() Index {
	return i%MaxIndex + 1
}

// String returns the zero-padded three digit form used in filenames.
func (i Index) String() string {
	return fmt.Sprintf("%03d", int(i))
}

var (
	referencePattern = regexp.MustCompile(`^#?(\d{1,3})$`)
	artifactPattern  = regexp.MustCompile(`^(\d{3})_`)
)

// ParseReference reports whether ref names a screenshot index rather than
// a path. Only an optional '#' followed by one to three digits qualifies.
func ParseReference(ref string) (Index, bool) {
	m := referencePattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return Index(n), true
}

// IndexFromName extracts the index prefix of an artifact file name.
func IndexFromName(name string) (Index, bool) {
	m := artifactPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, _ := strconv.Atoi(m[1])
	return Index(n), true
}

// ArtifactName builds the file name for a capture taken at t.
func ArtifactName(i Index, t time.Time) string {
	return i.String() + "_screenshot_" + fileTimestamp(t) + ArtifactExt
}

// fileTimestamp formats t as ISO-8601 UTC with milliseconds, replacing the
// characters that are not allowed in Windows file names.
func fileTimestamp(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(ts)
}
