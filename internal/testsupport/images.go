package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"vibecodec/internal/pngchunk"
)

// OpaqueImage returns a w×h NRGBA image with a deterministic colour pattern
// and every alpha sample set to 0xFF.
func OpaqueImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x + y), A: 0xFF})
		}
	}
	return img
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGWithChunks encodes img and inserts extra chunks before the first IDAT.
func PNGWithChunks(t testing.TB, img image.Image, extra ...pngchunk.Chunk) []byte {
	t.Helper()

	chunks, err := pngchunk.Scan(EncodePNG(t, img))
	if err != nil {
		t.Fatalf("scan encoded png: %v", err)
	}
	for _, c := range extra {
		chunks = pngchunk.InsertBeforeIDAT(chunks, c)
	}
	return pngchunk.Encode(chunks)
}

// SingleVibeJSON is a minimal valid single vibe document.
const SingleVibeJSON = `{"identifier":"single-vibe","version":1,"name":"x","type":"encoding","encodings":{"v4":"QUJD"}}`

// BundleJSON is a valid two-member bundle document.
const BundleJSON = `{"identifier":"novelai-vibe-transfer-bundle","version":1,"vibes":[` +
	`{"identifier":"novelai-vibe-transfer","version":1,"name":"first","type":"encoding","encodings":{"v4":"QQ=="}},` +
	`{"identifier":"novelai-vibe-transfer","version":1,"name":"second","type":"image","thumbnail":"data:image/png;base64,QUJD"}]}`
