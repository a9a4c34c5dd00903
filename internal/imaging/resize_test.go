package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeResult(t *testing.T, dataURL string) image.Image {
	t.Helper()

	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestNormalizeDownscalesLargeImage(t *testing.T) {
	out, err := NormalizeDataURL(pngDataURL(t, 800, 600))
	require.NoError(t, err)

	img := decodeResult(t, out)
	b := img.Bounds()
	assert.Equal(t, 400, b.Dx())
	assert.Equal(t, 300, b.Dy())
}

func TestNormalizeKeepsSmallImageSize(t *testing.T) {
	out, err := NormalizeDataURL(pngDataURL(t, 200, 120))
	require.NoError(t, err)

	img := decodeResult(t, out)
	b := img.Bounds()
	assert.Equal(t, 200, b.Dx())
	assert.Equal(t, 120, b.Dy())
}

func TestNormalizePortraitUsesHeightLimit(t *testing.T) {
	out, err := NormalizeDataURL(pngDataURL(t, 300, 900))
	require.NoError(t, err)

	img := decodeResult(t, out)
	b := img.Bounds()
	assert.Equal(t, 400, b.Dy())
	assert.Equal(t, 133, b.Dx())
}

func TestNormalizeRejectsNonImagePayload(t *testing.T) {
	_, err := NormalizeDataURL("data:text/plain;base64,aGFsbG8=")
	assert.Error(t, err)

	_, err = NormalizeDataURL("nonsense")
	assert.Error(t, err)

	_, err = NormalizeDataURL("data:image/png;base64,%%%")
	assert.Error(t, err)
}
