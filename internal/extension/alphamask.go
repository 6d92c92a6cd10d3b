package extension

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
)

// InvalidTag is the tag written by integrity taggers so broken content stays
// listed but filterable.
const InvalidTag = "invalid"

// AlphaMask checks uploaded images against a fixed transparency mask.
// PreUpload enforces the expected shape; PostUpload re-reads the persisted
// payload and counts opaque pixels in regions the mask expects to be
// transparent. Past the threshold, the content is tagged invalid through the
// toolkit, which keeps the precomputation cache fresh.
type AlphaMask struct {
	Base
	Width     int
	Height    int
	Mask      [][]bool
	Threshold int
}

// LoadMask reads a mask image: every non-black pixel marks a position that
// must be transparent in uploads.
func LoadMask(path string) ([][]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode mask %s: %w", path, err)
	}

	bounds := img.Bounds()
	mask := make([][]bool, bounds.Dy())
	for y := range mask {
		row := make([]bool, bounds.Dx())
		for x := range row {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			row[x] = r > 0 || g > 0 || b > 0
		}
		mask[y] = row
	}
	return mask, nil
}

func (v AlphaMask) PreUpload(_ context.Context, _ Toolkit, _ uint, draft *Draft) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(draft.Data))
	if err != nil {
		return "not a valid image", nil
	}
	bounds := img.Bounds()
	if bounds.Dx() != v.Width || bounds.Dy() != v.Height {
		return fmt.Sprintf("shape is not %dx%d", v.Width, v.Height), nil
	}
	return "", nil
}

func (v AlphaMask) PostUpload(ctx context.Context, tk Toolkit, _ uint, contentID uint) (string, error) {
	data, err := tk.ContentData(ctx, contentID)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// PreUpload already rejected non-images; a decode failure here means
		// the payload predates this validator. Tag rather than fail.
		return v.tagInvalid(ctx, tk, contentID, "undecodable payload")
	}

	violations := 0
	bounds := img.Bounds()
	for y := 0; y < bounds.Dy() && y < len(v.Mask); y++ {
		for x := 0; x < bounds.Dx() && x < len(v.Mask[y]); x++ {
			if !v.Mask[y][x] {
				continue
			}
			_, _, _, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a>>8 >= 128 {
				violations++
			}
		}
	}

	if violations > v.Threshold {
		return v.tagInvalid(ctx, tk, contentID, fmt.Sprintf("%d opaque pixels in masked region", violations))
	}
	return "", nil
}

func (v AlphaMask) tagInvalid(ctx context.Context, tk Toolkit, contentID uint, why string) (string, error) {
	tagged, err := tk.HasTag(ctx, contentID, InvalidTag)
	if err != nil {
		return "", err
	}
	if !tagged {
		if err := tk.AddTag(ctx, contentID, InvalidTag); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("content %d tagged %s: %s", contentID, InvalidTag, why), nil
}
