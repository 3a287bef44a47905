package receipt

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"
)

// pngFixture returns a small valid PNG.
func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestIngest_TranscodesToWebP(t *testing.T) {
	out, err := Ingest(pngFixture(t))
	require.NoError(t, err)
	require.NotEmpty(t, out)

	decoded, err := xwebp.Decode(bytes.NewReader(out))
	require.NoError(t, err, "output must decode as WebP")
	assert.Equal(t, 16, decoded.Bounds().Dx())
	assert.Equal(t, 16, decoded.Bounds().Dy())
}

func TestIngest_RejectsGarbage(t *testing.T) {
	_, err := Ingest([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestIngest_RejectsTruncatedImage(t *testing.T) {
	raw := pngFixture(t)
	_, err := Ingest(raw[:20])
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestObjectKey_PathStructure(t *testing.T) {
	now := time.UnixMilli(1756400000000)
	key := ObjectKey("owner-1", "car-1", "log-1", now)
	assert.Equal(t, "receipts/owner-1/car-1/log-1-1756400000000.webp", key)
}

func TestObjectKey_PlaceholderWhenNoRecord(t *testing.T) {
	now := time.Now()
	key := ObjectKey("owner-1", "car-1", "", now)
	assert.True(t, strings.HasPrefix(key, "receipts/owner-1/car-1/"), "key = %s", key)
	assert.True(t, strings.HasSuffix(key, ".webp"))
	// a second upload with no record must not collide
	other := ObjectKey("owner-1", "car-1", "", now)
	assert.NotEqual(t, key, other)
}

func TestObjectKey_RepeatUploadsDoNotCollide(t *testing.T) {
	k1 := ObjectKey("owner-1", "car-1", "log-1", time.UnixMilli(1000))
	k2 := ObjectKey("owner-1", "car-1", "log-1", time.UnixMilli(1001))
	assert.NotEqual(t, k1, k2)
}
