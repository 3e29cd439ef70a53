package stealth

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"

	"vibecodec/internal/codecerr"
)

func opaqueImage(rect image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x ^ y), A: 0xFF})
		}
	}
	return img
}

func asNRGBA(t *testing.T, img image.Image) *image.NRGBA {
	t.Helper()
	out, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("expected *image.NRGBA, got %T", img)
	}
	return out
}

func TestEncodeDecodeHello(t *testing.T) {
	codec := New(WithMagic([]byte("VIBEMAGC")))
	src := opaqueImage(image.Rect(0, 0, 100, 100))

	encoded, err := codec.Encode(src, []byte("hello"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, ok, err := codec.Decode(encoded)
	if err != nil || !ok {
		t.Fatalf("Decode failed: ok=%v err=%v", ok, err)
	}
	if string(got) != "hello" {
		t.Fatalf("got payload %q want %q", got, "hello")
	}
}

func TestEncodeTouchesOnlyAlphaLowBit(t *testing.T) {
	codec := New()
	src := opaqueImage(image.Rect(0, 0, 64, 64))
	before := bytes.Clone(src.Pix)

	out, err := codec.Encode(src, []byte("style reference payload"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	encoded := asNRGBA(t, out)
	if !bytes.Equal(src.Pix, before) {
		t.Fatal("Encode mutated its input")
	}
	if encoded.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v -> %v", src.Bounds(), encoded.Bounds())
	}
	changed := 0
	for i := range before {
		diff := before[i] ^ encoded.Pix[i]
		if i%4 != 3 && diff != 0 {
			t.Fatalf("colour byte %d changed", i)
		}
		if diff&0xFE != 0 {
			t.Fatalf("alpha byte %d changed above bit 0", i)
		}
		if diff != 0 {
			changed++
		}
	}
	if changed == 0 {
		t.Fatal("expected some alpha low bits to change")
	}
}

func TestRoundTripRandomPayloads(t *testing.T) {
	codec := New()
	rng := rand.New(rand.NewSource(42))
	src := opaqueImage(image.Rect(0, 0, 128, 96))

	for _, size := range []int{0, 1, 7, 64, 500, 1000} {
		payload := make([]byte, size)
		rng.Read(payload)

		encoded, err := codec.Encode(src, payload)
		if err != nil {
			t.Fatalf("size %d: Encode failed: %v", size, err)
		}
		got, ok, err := codec.Decode(encoded)
		if err != nil || !ok {
			t.Fatalf("size %d: Decode failed: ok=%v err=%v", size, ok, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("size %d: payload mismatch", size)
		}
	}
}

func TestEncodeCapacityError(t *testing.T) {
	codec := New()
	_, err := codec.Encode(opaqueImage(image.Rect(0, 0, 10, 10)), []byte("hello"))
	var capErr *codecerr.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if capErr.Available != 100 || capErr.Needed <= 100 {
		t.Fatalf("unexpected capacity numbers %+v", capErr)
	}
	if !errors.Is(err, codecerr.ErrCapacity) {
		t.Fatal("expected ErrCapacity sentinel")
	}
}

func TestDecodeWithoutMarkerIsNotFound(t *testing.T) {
	codec := New()
	for _, rect := range []image.Rectangle{image.Rect(0, 0, 100, 100), image.Rect(0, 0, 3, 3)} {
		got, ok, err := codec.Decode(opaqueImage(rect))
		if err != nil || ok || got != nil {
			t.Fatalf("%v: expected not found, got ok=%v err=%v", rect, ok, err)
		}
	}
}

func TestDecodeDoesNotMutateInput(t *testing.T) {
	codec := New()
	out, err := codec.Encode(opaqueImage(image.Rect(0, 0, 50, 50)), []byte("abc"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	encoded := asNRGBA(t, out)
	before := bytes.Clone(encoded.Pix)
	if _, _, err := codec.Decode(encoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(before, encoded.Pix) {
		t.Fatal("Decode mutated its input")
	}
}

func writeRaw(img *image.NRGBA, parts ...[]byte) {
	w := newBitWriter(img)
	for _, p := range parts {
		w.writeBytes(p)
	}
}

func TestDecodeCorruptAfterMarker(t *testing.T) {
	codec := New()

	garbage := opaqueImage(image.Rect(0, 0, 40, 40))
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], 64)
	writeRaw(garbage, []byte(DefaultMagic), length[:], []byte("notgzip!"))

	_, ok, err := codec.Decode(garbage)
	if !ok {
		t.Fatal("expected marker to be recognised")
	}
	if !errors.Is(err, codecerr.ErrCorruptPayload) {
		t.Fatalf("expected corrupt payload, got %v", err)
	}

	overlong := opaqueImage(image.Rect(0, 0, 40, 40))
	binary.BigEndian.PutUint32(length[:], 1<<20)
	writeRaw(overlong, []byte(DefaultMagic), length[:])
	if _, _, err := codec.Decode(overlong); !errors.Is(err, codecerr.ErrCorruptPayload) {
		t.Fatalf("expected corrupt payload for overlong length, got %v", err)
	}

	// 8x9 holds the 64-bit marker but not the 32-bit length field.
	short := opaqueImage(image.Rect(0, 0, 8, 9))
	writeRaw(short, []byte(DefaultMagic))
	if _, _, err := codec.Decode(short); !errors.Is(err, codecerr.ErrCorruptPayload) {
		t.Fatalf("expected corrupt payload for missing length, got %v", err)
	}
}

func TestDecodeAcceptsLegacyMagic(t *testing.T) {
	legacy := New(WithMagic([]byte(LegacyMagic)))
	encoded, err := legacy.Encode(opaqueImage(image.Rect(0, 0, 80, 80)), []byte("legacy"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, ok, err := New().Decode(encoded)
	if err != nil || !ok || string(got) != "legacy" {
		t.Fatalf("expected default codec to read legacy marker, got %q ok=%v err=%v", got, ok, err)
	}

	strict := New(WithAltMagics())
	if _, ok, _ := strict.Decode(encoded); ok {
		t.Fatal("expected codec without alternates to ignore legacy marker")
	}
}

func TestDecodeGenericImageAndOffsetBounds(t *testing.T) {
	codec := New()
	rect := image.Rect(5, 7, 105, 87)
	encoded, err := codec.Encode(opaqueImage(rect), []byte("offset"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	wide := image.NewNRGBA64(rect)
	draw.Draw(wide, rect, encoded, rect.Min, draw.Src)

	got, ok, err := codec.Decode(wide)
	if err != nil || !ok || string(got) != "offset" {
		t.Fatalf("generic decode failed: %q ok=%v err=%v", got, ok, err)
	}
}

func TestDecodeInflationLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 10_000)
	encoded, err := New().Encode(opaqueImage(image.Rect(0, 0, 100, 100)), payload)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	_, ok, err := New(WithMaxInflatedBytes(1000)).Decode(encoded)
	if !ok || !errors.Is(err, codecerr.ErrCorruptPayload) {
		t.Fatalf("expected corrupt payload past the limit, got ok=%v err=%v", ok, err)
	}
}

func TestCapacity(t *testing.T) {
	codec := New()
	rect := image.Rect(0, 0, 100, 100)
	if got, want := codec.Capacity(rect), (10000-96)/8; got != want {
		t.Fatalf("Capacity = %d want %d", got, want)
	}
	if codec.Capacity(image.Rect(0, 0, 2, 2)) != 0 {
		t.Fatal("expected zero capacity for tiny image")
	}
}

func wideImage(rect image.Rectangle) *image.NRGBA64 {
	img := image.NewNRGBA64(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA64(x, y, color.NRGBA64{R: 0x1234 + uint16(x), G: 0xABCD - uint16(y), B: 0x0F0F, A: 0xFFFF})
		}
	}
	return img
}

func TestEncodeKeepsSixteenBitSamples(t *testing.T) {
	tests := []struct {
		name string
		src  image.Image
	}{
		{"nrgba64", wideImage(image.Rect(0, 0, 64, 64))},
		{"gray16", func() image.Image {
			g := image.NewGray16(image.Rect(0, 0, 64, 64))
			g.SetGray16(3, 4, color.Gray16{Y: 0x1234})
			return g
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := New()
			out, err := codec.Encode(tt.src, []byte("sixteen bit carrier"))
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			wide, ok := out.(*image.NRGBA64)
			if !ok {
				t.Fatalf("expected *image.NRGBA64, got %T", out)
			}

			ref := image.NewNRGBA64(tt.src.Bounds())
			draw.Draw(ref, ref.Rect, tt.src, ref.Rect.Min, draw.Src)
			for i := range ref.Pix {
				diff := ref.Pix[i] ^ wide.Pix[i]
				if i%8 != 7 && diff != 0 {
					t.Fatalf("byte %d changed: %#x -> %#x", i, ref.Pix[i], wide.Pix[i])
				}
				if diff&0xFE != 0 {
					t.Fatalf("alpha low byte %d changed above bit 0", i)
				}
			}

			got, ok, err := codec.Decode(wide)
			if err != nil || !ok || string(got) != "sixteen bit carrier" {
				t.Fatalf("Decode failed: %q ok=%v err=%v", got, ok, err)
			}
		})
	}
}

func TestEncodeKeepsEightBitCarrierNarrow(t *testing.T) {
	out, err := New().Encode(opaqueImage(image.Rect(0, 0, 40, 40)), []byte("x"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	asNRGBA(t, out)
}
