package extension

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"image/png"

	// Register decoders for format sniffing.
	_ "image/gif"
	_ "image/jpeg"
)

// Image validates that the payload is an image of the expected format and
// dimensions, then re-encodes it as PNG. The re-encode both normalizes the
// pixel format and strips any embedded metadata from the original file.
// Zero Width/Height skip the dimension check.
type Image struct {
	Base
	Format string
	Width  int
	Height int
}

// NewImage expects the given format, with optional exact dimensions.
func NewImage(format string, width, height int) Image {
	return Image{Format: format, Width: width, Height: height}
}

func (v Image) PreUpload(_ context.Context, _ Toolkit, _ uint, draft *Draft) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(draft.Data))
	if err != nil {
		return "invalid image", nil
	}
	if v.Format != "" && format != v.Format {
		return "invalid format", nil
	}

	bounds := img.Bounds()
	if v.Width != 0 && bounds.Dx() != v.Width || v.Height != 0 && bounds.Dy() != v.Height {
		return "invalid dimensions", nil
	}

	normalized := image.NewNRGBA(bounds)
	draw.Draw(normalized, bounds, img, bounds.Min, draw.Src)

	var out bytes.Buffer
	if err := png.Encode(&out, normalized); err != nil {
		return "invalid image", nil
	}
	draft.Data = out.Bytes()

	return "", nil
}
