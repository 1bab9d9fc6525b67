package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Info describes an image file without decoding its pixels.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format detected from the file contents, upper case
	// ("PNG", "JPEG", "GIF", "BMP", "TIFF", "WEBP").
	Format string `json:"format"`

	// ExtensionFormat is the format implied by the file extension, empty
	// when the extension is not a known image extension.
	ExtensionFormat string `json:"extension_format,omitempty"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Describe reads the image header at path.
//
// Only the header is decoded, so describing a large screenshot is cheap.
// An error means the file could not be read or is not in a supported
// format; callers that only need the path can ignore it.
func Describe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	info := &Info{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        strings.ToUpper(format),
		FileSizeBytes: stat.Size(),
	}
	if ext, err := imaging.FormatFromFilename(path); err == nil {
		info.ExtensionFormat = ext.String()
	}
	return info, nil
}

// Summary renders the info as a single line, for example
// "1920x1080 PNG, 1.2 MB".
func (i *Info) Summary() string {
	s := fmt.Sprintf("%dx%d %s, %s", i.Width, i.Height, i.Format, humanize.Bytes(uint64(i.FileSizeBytes)))
	if i.ExtensionFormat != "" && i.ExtensionFormat != i.Format {
		s += fmt.Sprintf(" (file extension suggests %s)", i.ExtensionFormat)
	}
	return s
}
