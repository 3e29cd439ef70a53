package stealth

import (
	"image"
	"image/color"
)

// pixLayout locates the alpha low bit inside a packed pixel buffer.
type pixLayout struct {
	pix    []byte
	stride int
	rect   image.Rectangle
	// bpp is bytes per pixel; lsb is the offset of the byte holding alpha
	// bit 0 (the last alpha byte, since 16-bit samples are big-endian).
	bpp int
	lsb int
}

func (l pixLayout) offset(x, y int) int {
	return (y-l.rect.Min.Y)*l.stride + (x-l.rect.Min.X)*l.bpp + l.lsb
}

// layoutOf returns the packed layout for the image types the codec reads
// and writes directly.
func layoutOf(img image.Image) (pixLayout, bool) {
	switch typed := img.(type) {
	case *image.NRGBA:
		return pixLayout{pix: typed.Pix, stride: typed.Stride, rect: typed.Rect, bpp: 4, lsb: 3}, true
	case *image.RGBA:
		return pixLayout{pix: typed.Pix, stride: typed.Stride, rect: typed.Rect, bpp: 4, lsb: 3}, true
	case *image.NRGBA64:
		return pixLayout{pix: typed.Pix, stride: typed.Stride, rect: typed.Rect, bpp: 8, lsb: 7}, true
	case *image.RGBA64:
		return pixLayout{pix: typed.Pix, stride: typed.Stride, rect: typed.Rect, bpp: 8, lsb: 7}, true
	}
	return pixLayout{}, false
}

// wideSamples reports whether img stores 16 bits per channel.
func wideSamples(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA64, *image.RGBA64, *image.Gray16:
		return true
	}
	switch img.ColorModel() {
	case color.NRGBA64Model, color.RGBA64Model, color.Gray16Model:
		return true
	}
	return false
}

// bitReader walks alpha low bits in raster order without materialising the
// bit stream. Widening an 8-bit alpha a to 16 bits gives a*0x101, so both
// widths agree on bit 0.
type bitReader struct {
	img    image.Image
	layout pixLayout
	packed bool
	bounds image.Rectangle
	width  int
	pos    int
	total  int
}

func newBitReader(img image.Image) *bitReader {
	b := img.Bounds()
	layout, packed := layoutOf(img)
	return &bitReader{
		img:    img,
		layout: layout,
		packed: packed,
		bounds: b,
		width:  b.Dx(),
		total:  CapacityBits(b),
	}
}

func (r *bitReader) remaining() int {
	return r.total - r.pos
}

func (r *bitReader) next() (byte, bool) {
	if r.pos >= r.total {
		return 0, false
	}
	x := r.bounds.Min.X + r.pos%r.width
	y := r.bounds.Min.Y + r.pos/r.width
	r.pos++
	if r.packed {
		return r.layout.pix[r.layout.offset(x, y)] & 1, true
	}
	return byte(color.NRGBA64Model.Convert(r.img.At(x, y)).(color.NRGBA64).A & 1), true
}

func (r *bitReader) readByte() (byte, bool) {
	var b byte
	for i := 0; i < 8; i++ {
		bit, ok := r.next()
		if !ok {
			return 0, false
		}
		b = b<<1 | bit
	}
	return b, true
}

// readBits reads n bits MSB-first into ceil(n/8) bytes. A trailing partial
// byte is zero-padded on the right.
func (r *bitReader) readBits(n int) ([]byte, bool) {
	if n > r.remaining() {
		return nil, false
	}
	out := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		bit, _ := r.next()
		out[i/8] |= bit << (7 - uint(i%8))
	}
	return out, true
}

// bitWriter replaces alpha low bits in raster order.
type bitWriter struct {
	layout pixLayout
	width  int
	pos    int
}

func newBitWriter(img *image.NRGBA) *bitWriter {
	layout, _ := layoutOf(img)
	return &bitWriter{layout: layout, width: img.Rect.Dx()}
}

func newBitWriter64(img *image.NRGBA64) *bitWriter {
	layout, _ := layoutOf(img)
	return &bitWriter{layout: layout, width: img.Rect.Dx()}
}

func (w *bitWriter) writeBit(bit byte) {
	x := w.layout.rect.Min.X + w.pos%w.width
	y := w.layout.rect.Min.Y + w.pos/w.width
	w.pos++
	off := w.layout.offset(x, y)
	w.layout.pix[off] = w.layout.pix[off]&0xFE | bit&1
}

func (w *bitWriter) writeBytes(data []byte) {
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			w.writeBit(b >> uint(i) & 1)
		}
	}
}
