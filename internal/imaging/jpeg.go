// Package imaging normalizes uploaded photos to JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// ErrDecode is returned when the input is not a supported image.
var ErrDecode = errors.New("unsupported or corrupt image")

// Processor re-encodes images as JPEG on a white background, downscaling
// anything wider than MaxWidth.
type Processor struct {
	MaxWidth int
	Quality  int
}

// NewProcessor returns a Processor, falling back to quality 85 when quality
// is outside 1..100. A non-positive maxWidth disables downscaling.
func NewProcessor(maxWidth, quality int) *Processor {
	if quality < 1 || quality > 100 {
		quality = 85
	}
	return &Processor{MaxWidth: maxWidth, Quality: quality}
}

// Process decodes data and returns the JPEG encoding.
func (p *Processor) Process(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	if p.MaxWidth > 0 && w > p.MaxWidth {
		h = h * p.MaxWidth / w
		if h < 1 {
			h = 1
		}
		w = p.MaxWidth
	}

	// JPEG has no alpha; flatten onto white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
