package output

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"
)

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatHTML Format = "html"

	jpegQuality = 98
)

type Format string

var validFormats = map[Format]struct{}{
	FormatPNG:  {},
	FormatJPEG: {},
	FormatHTML: {},
}

// ParseFormat validates an output format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if f == "jpg" {
		f = FormatJPEG
	}
	if _, ok := validFormats[f]; !ok {
		return "", fmt.Errorf("invalid output format: %s", name)
	}
	return f, nil
}

// IsImage reports whether the format is a raster image.
func (f Format) IsImage() bool {
	return f == FormatPNG || f == FormatJPEG
}

// Path appends the format extension to base.
func Path(base string, f Format) string {
	return fmt.Sprintf("%s.%s", base, f)
}

// EncodeImage writes img to w in the given raster format.
func EncodeImage(w io.Writer, f Format, img image.Image) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return fmt.Errorf("format %s is not an image format", f)
	}
}

// WriteFile creates path and lets write fill it.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cErr)
		}
	}()

	if err = write(out); err != nil {
		return fmt.Errorf("writing '%s': %w", path, err)
	}
	return nil
}

// WriteImage encodes img into path.
func WriteImage(path string, f Format, img image.Image) error {
	return WriteFile(path, func(w io.Writer) error {
		return EncodeImage(w, f, img)
	})
}
