package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Render size used when an SVG declares no usable size at all (neither
// width/height attributes nor a viewBox).
const (
	svgFallbackWidth  = 512
	svgFallbackHeight = 512
)

func normalizeSVG(raw []byte) (*Result, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	// oksvg resolves the render size from the root viewBox attribute, or the
	// width/height attributes when no viewBox is present.
	width := int(math.Round(icon.ViewBox.W))
	height := int(math.Round(icon.ViewBox.H))
	if width <= 0 || height <= 0 {
		width, height = svgFallbackWidth, svgFallbackHeight
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	// Rasterize onto a transparent NRGBA canvas so the canonical PNG keeps
	// the alpha channel.
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	var buf bytes.Buffer
	buf.Grow(width * height)
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode rendered SVG as PNG: %w", err)
	}
	return &Result{PNG: buf.Bytes(), Width: width, Height: height}, nil
}

// isSVGData performs a lightweight detection of SVG content from raw bytes.
// It checks for an "<svg" tag or the SVG namespace in the initial portion of
// the data.
func isSVGData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	n := len(data)
	if n > 4096 {
		n = 4096
	}
	header := bytes.ToLower(bytes.TrimSpace(data[:n]))
	return bytes.Contains(header, []byte("<svg")) ||
		bytes.Contains(header, []byte("xmlns=\"http://www.w3.org/2000/svg\"")) ||
		bytes.Contains(header, []byte("xmlns='http://www.w3.org/2000/svg'"))
}
