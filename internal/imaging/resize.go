package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

// MaxEdge is the longest edge of images embedded into newsletter sections.
const MaxEdge = 400

// NormalizeDataURL decodes a base64 image data URL (png, jpeg, gif or webp),
// scales it to fit inside MaxEdge×MaxEdge without enlarging, and returns it
// re-encoded as a PNG data URL.
func NormalizeDataURL(dataURL string) (string, error) {
	payload, isWebp, err := splitDataURL(dataURL)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	var img image.Image
	if isWebp {
		img, err = webp.Decode(bytes.NewReader(raw))
	} else {
		img, _, err = image.Decode(bytes.NewReader(raw))
	}
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	img = fitInside(img, MaxEdge, MaxEdge)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func splitDataURL(dataURL string) (payload string, isWebp bool, err error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return "", false, fmt.Errorf("not an image data url")
	}

	idx := strings.Index(dataURL, ";base64,")
	if idx < 0 {
		return "", false, fmt.Errorf("not a base64 data url")
	}

	mediaType := dataURL[len("data:"):idx]
	return dataURL[idx+len(";base64,"):], mediaType == "image/webp", nil
}

// fitInside scales down preserving aspect ratio; images already small enough
// pass through unchanged.
func fitInside(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}

	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
