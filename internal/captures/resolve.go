package captures

import (
	"os"
	"path/filepath"

	"github.com/ironsheep/look-mcp/internal/toolerr"
)

// Resolution is a reference resolved to an existing file.
type Resolution struct {
	// Path is the file location, absolute when it came from the captures
	// directory and as given otherwise.
	Path string

	// Label names the file for display: "Screenshot #004" for capture
	// artifacts, "Image: <basename>" for anything else.
	Label string

	// Index is the capture index when the file name follows the artifact
	// naming convention, 0 otherwise.
	Index Index
}

// Resolver maps client references onto files.
type Resolver struct {
	dir *Dir
}

// NewResolver returns a resolver that looks up indices in dir.
func NewResolver(dir *Dir) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve turns ref into an existing file.
//
// A reference of one to three digits, optionally prefixed with '#', is a
// screenshot index and is looked up in the captures directory. Anything
// else, including four or more digits, is treated as a path. The only
// check performed on the file is that it exists.
func (r *Resolver) Resolve(ref string) (*Resolution, error) {
	path := ref
	if i, ok := ParseReference(ref); ok {
		found, err := r.dir.Find(i)
		if err != nil {
			return nil, err
		}
		path = found
	}

	if _, err := os.Stat(path); err != nil {
		return nil, toolerr.Lookup("Image file not found: %s", path)
	}

	return &Resolution{
		Path:  path,
		Label: labelFor(path),
		Index: indexFor(path),
	}, nil
}

func labelFor(path string) string {
	name := filepath.Base(path)
	if i, ok := IndexFromName(name); ok {
		return "Screenshot #" + i.String()
	}
	return "Image: " + name
}

func indexFor(path string) Index {
	i, _ := IndexFromName(filepath.Base(path))
	return i
}
