package covers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImageBytes is the upload size cap for cover images (5 MiB).
const MaxImageBytes = 5 * 1024 * 1024

var (
	ErrImageTooLarge = errors.New("image file size must be less than 5MB")
	ErrInvalidImage  = errors.New("invalid image file")
)

// allowedFormats are the raster formats accepted for covers, by the
// format names the registered decoders report.
var allowedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
	"tiff": true,
}

// ValidateImage reads an uploaded image, enforces the size cap, fully
// decodes it to verify structural integrity and checks the format
// allow-list. It returns the raw bytes and the detected format name.
func ValidateImage(r io.Reader) ([]byte, string, error) {
	// Read one byte past the cap to detect oversized uploads.
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, "", ErrImageTooLarge
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrInvalidImage
	}
	if !allowedFormats[format] {
		return nil, "", fmt.Errorf("%w: unsupported format %s", ErrInvalidImage, format)
	}

	return data, format, nil
}
