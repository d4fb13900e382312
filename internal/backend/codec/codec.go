package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnreadableImage signals input bytes that cannot be interpreted as an
// image by any of the registered decoders.
var ErrUnreadableImage = errors.New("unreadable image data")

// Result holds the canonical PNG encoding of a decoded image together with
// its pixel dimensions.
type Result struct {
	PNG    []byte
	Width  int
	Height int
}

// Normalize decodes raw image bytes in any supported format and re-encodes
// them as PNG. Pixels are redrawn into NRGBA first so the canonical output
// always carries an alpha channel, regardless of the source color model.
// Normalize is stateless; a failure is final for that input.
func Normalize(raw []byte) (*Result, error) {
	if isSVGData(raw) {
		return normalizeSVG(raw)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return encodeCanonical(img)
}

func encodeCanonical(img image.Image) (*Result, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("decoded image has malformed dimensions %dx%d", width, height)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode image to PNG: %w", err)
	}
	return &Result{PNG: buf.Bytes(), Width: width, Height: height}, nil
}
