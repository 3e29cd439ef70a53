package stealth

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/klauspost/compress/gzip"

	"vibecodec/internal/codecerr"
)

// DefaultMagic is the marker written by Encode.
const DefaultMagic = "VIBEMAGC"

// LegacyMagic is the marker used by older stealth writers. It is framed the
// same way as DefaultMagic and is accepted on decode.
const LegacyMagic = "stealth_pngcomp"

// DefaultMaxInflatedBytes bounds the decompressed payload size.
const DefaultMaxInflatedBytes int64 = 64 << 20

const lengthFieldBytes = 4

// Codec encodes and decodes alpha-channel payloads. The zero value is not
// usable; construct one with New.
type Codec struct {
	magic       []byte
	altMagics   [][]byte
	maxInflated int64
	level       int
}

// Option customizes a Codec.
type Option func(*Codec)

// WithMagic sets the marker written by Encode and recognised by Decode.
func WithMagic(magic []byte) Option {
	return func(c *Codec) {
		if len(magic) > 0 {
			c.magic = bytes.Clone(magic)
		}
	}
}

// WithAltMagics sets additional markers recognised by Decode.
func WithAltMagics(magics ...[]byte) Option {
	return func(c *Codec) {
		c.altMagics = c.altMagics[:0]
		for _, m := range magics {
			if len(m) > 0 {
				c.altMagics = append(c.altMagics, bytes.Clone(m))
			}
		}
	}
}

// WithMaxInflatedBytes caps the decompressed payload size.
func WithMaxInflatedBytes(limit int64) Option {
	return func(c *Codec) {
		if limit > 0 {
			c.maxInflated = limit
		}
	}
}

// WithCompressionLevel sets the gzip level used by Encode.
func WithCompressionLevel(level int) Option {
	return func(c *Codec) {
		c.level = level
	}
}

// New returns a Codec using DefaultMagic and accepting LegacyMagic.
func New(opts ...Option) *Codec {
	c := &Codec{
		magic:       []byte(DefaultMagic),
		altMagics:   [][]byte{[]byte(LegacyMagic)},
		maxInflated: DefaultMaxInflatedBytes,
		level:       gzip.BestCompression,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OverheadBits is the number of bits the marker and length field occupy.
func (c *Codec) OverheadBits() int {
	return (len(c.magic) + lengthFieldBytes) * 8
}

// CapacityBits is the number of payload bits an image of the given bounds can
// carry: one per pixel.
func CapacityBits(bounds image.Rectangle) int {
	return bounds.Dx() * bounds.Dy()
}

// Capacity returns the largest compressed payload, in bytes, that fits in an
// image of the given bounds after framing overhead.
func (c *Codec) Capacity(bounds image.Rectangle) int {
	free := CapacityBits(bounds) - c.OverheadBits()
	if free < 0 {
		return 0
	}
	return free / 8
}

// Compress returns the gzip framing Encode applies to a payload.
func (c *Codec) Compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode returns a copy of img whose alpha low bits carry payload. Carriers
// with 16-bit samples come back as *image.NRGBA64 so their colour precision
// survives; everything else comes back as *image.NRGBA.
func (c *Codec) Encode(img image.Image, payload []byte) (draw.Image, error) {
	compressed, err := c.Compress(payload)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	needed := c.OverheadBits() + len(compressed)*8
	available := CapacityBits(bounds)
	if needed > available {
		return nil, &codecerr.CapacityError{Needed: needed, Available: available}
	}

	var (
		out draw.Image
		w   *bitWriter
	)
	if wideSamples(img) {
		dst := image.NewNRGBA64(bounds)
		draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
		out, w = dst, newBitWriter64(dst)
	} else {
		dst := image.NewNRGBA(bounds)
		draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
		out, w = dst, newBitWriter(dst)
	}

	var length [lengthFieldBytes]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(compressed)*8))

	w.writeBytes(c.magic)
	w.writeBytes(length[:])
	w.writeBytes(compressed)
	return out, nil
}

// Decode returns the payload hidden in img. ok is false when no known marker
// is present.
func (c *Codec) Decode(img image.Image) (payload []byte, ok bool, err error) {
	r := newBitReader(img)

	magic, matched := c.matchMagic(r)
	if !matched {
		return nil, false, nil
	}

	field, ok := r.readBits(lengthFieldBytes * 8)
	if !ok {
		return nil, true, codecerr.Format(codecerr.ErrCorruptPayload, "image ends inside length field").InField("bit_length")
	}
	bitLength := int64(binary.BigEndian.Uint32(field))
	if bitLength > int64(r.remaining()) {
		return nil, true, codecerr.Formatf(codecerr.ErrCorruptPayload, "declares %d payload bits, image has %d left", bitLength, r.remaining()).InField("bit_length")
	}

	compressed, _ := r.readBits(int(bitLength))
	out, err := c.inflate(compressed)
	if err != nil {
		return nil, true, codecerr.Formatf(codecerr.ErrCorruptPayload, "gzip payload after %q marker", magic).Wrapping(err)
	}
	return out, true, nil
}

// matchMagic reads marker bytes until exactly one known marker matches or
// none can.
func (c *Codec) matchMagic(r *bitReader) (string, bool) {
	candidates := make([][]byte, 0, 1+len(c.altMagics))
	candidates = append(candidates, c.magic)
	candidates = append(candidates, c.altMagics...)

	for i := 0; len(candidates) > 0; i++ {
		b, ok := r.readByte()
		if !ok {
			return "", false
		}
		kept := candidates[:0]
		for _, m := range candidates {
			if m[i] != b {
				continue
			}
			if i == len(m)-1 {
				return string(m), true
			}
			kept = append(kept, m)
		}
		candidates = kept
	}
	return "", false
}

func (c *Codec) inflate(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, c.maxInflated+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > c.maxInflated {
		return nil, fmt.Errorf("inflated payload exceeds %d bytes", c.maxInflated)
	}
	return out, nil
}
