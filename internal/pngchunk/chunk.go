package pngchunk

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"vibecodec/internal/codecerr"
)

// Signature is the fixed 8-byte header of every PNG datastream.
const Signature = "\x89PNG\r\n\x1a\n"

// Chunk type tags the codec refers to by name.
const (
	TypeIHDR = "IHDR"
	TypeIDAT = "IDAT"
	TypeIEND = "IEND"
	TypeTEXt = "tEXt"
	TypeZTXt = "zTXt"
	TypeITXt = "iTXt"
)

// chunkOverhead is the length, type, and CRC framing around each payload.
const chunkOverhead = 12

// Chunk is one PNG chunk. Length always equals len(Data).
type Chunk struct {
	Type   string
	Length uint32
	Data   []byte
	CRC    uint32
	Offset int64
}

// NewChunk builds a chunk with a freshly computed CRC.
func NewChunk(typ string, data []byte) Chunk {
	return Chunk{
		Type:   typ,
		Length: uint32(len(data)),
		Data:   data,
		CRC:    checksum(typ, data),
	}
}

// CRCValid reports whether the stored CRC matches the chunk contents.
func (c Chunk) CRCValid() bool {
	return c.CRC == checksum(c.Type, c.Data)
}

// IsText reports whether the chunk is one of the three text-bearing types.
func (c Chunk) IsText() bool {
	switch c.Type {
	case TypeTEXt, TypeZTXt, TypeITXt:
		return true
	}
	return false
}

// Ancillary reports whether the chunk type's first letter is lower case.
func (c Chunk) Ancillary() bool {
	return len(c.Type) == 4 && c.Type[0]&0x20 != 0
}

// HasSignature reports whether data begins with the PNG signature.
func HasSignature(data []byte) bool {
	return len(data) >= len(Signature) && string(data[:len(Signature)]) == Signature
}

// Scan parses data into its ordered chunk sequence.
func Scan(data []byte) ([]Chunk, error) {
	if !HasSignature(data) {
		return nil, codecerr.Format(codecerr.ErrInvalidSignature, "missing PNG signature")
	}

	var chunks []Chunk
	pos := len(Signature)
	for {
		remaining := len(data) - pos
		if remaining == 0 {
			// No IEND, but the stream ends cleanly on a chunk boundary.
			return chunks, nil
		}
		if remaining < chunkOverhead {
			return chunks, codecerr.Formatf(codecerr.ErrTruncatedStream, "%d trailing bytes cannot hold a chunk", remaining).AtOffset(int64(pos))
		}

		length := binary.BigEndian.Uint32(data[pos : pos+4])
		typ := string(data[pos+4 : pos+8])
		if !validType(typ) {
			return chunks, codecerr.Formatf(codecerr.ErrMalformedField, "invalid chunk type %q", typ).InField("type").AtOffset(int64(pos + 4))
		}
		if uint64(length) > uint64(remaining-chunkOverhead) {
			return chunks, codecerr.Formatf(codecerr.ErrTruncatedStream, "declared length %d exceeds remaining %d bytes", length, remaining-chunkOverhead).InChunk(typ).AtOffset(int64(pos))
		}

		start := pos + 8
		end := start + int(length)
		chunk := Chunk{
			Type:   typ,
			Length: length,
			Data:   data[start:end:end],
			CRC:    binary.BigEndian.Uint32(data[end : end+4]),
			Offset: int64(pos),
		}
		chunks = append(chunks, chunk)
		pos = end + 4

		if typ == TypeIEND {
			return chunks, nil
		}
	}
}

// Encode serialises the signature followed by chunks. CRCs are recomputed so
// chunks built or edited in memory are always written consistently.
func Encode(chunks []Chunk) []byte {
	size := len(Signature)
	for _, c := range chunks {
		size += chunkOverhead + len(c.Data)
	}
	var buf bytes.Buffer
	buf.Grow(size)
	buf.WriteString(Signature)

	var word [4]byte
	for _, c := range chunks {
		binary.BigEndian.PutUint32(word[:], uint32(len(c.Data)))
		buf.Write(word[:])
		buf.WriteString(c.Type)
		buf.Write(c.Data)
		binary.BigEndian.PutUint32(word[:], checksum(c.Type, c.Data))
		buf.Write(word[:])
	}
	return buf.Bytes()
}

// InsertBeforeIDAT returns a new chunk list with c placed immediately before
// the first IDAT chunk, or before IEND when the list has no image data.
func InsertBeforeIDAT(chunks []Chunk, c Chunk) []Chunk {
	idx := len(chunks)
	for i, existing := range chunks {
		if existing.Type == TypeIDAT || existing.Type == TypeIEND {
			idx = i
			break
		}
	}
	out := make([]Chunk, 0, len(chunks)+1)
	out = append(out, chunks[:idx]...)
	out = append(out, c)
	out = append(out, chunks[idx:]...)
	return out
}

// Filter returns the chunks for which keep returns true, preserving order.
func Filter(chunks []Chunk, keep func(Chunk) bool) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Keyword returns the NUL-terminated keyword that prefixes every text chunk.
func Keyword(c Chunk) (string, bool) {
	if !c.IsText() {
		return "", false
	}
	idx := bytes.IndexByte(c.Data, 0)
	if idx <= 0 {
		return "", false
	}
	return string(c.Data[:idx]), true
}

// RemoveText drops text chunks whose keyword equals keyword.
func RemoveText(chunks []Chunk, keyword string) []Chunk {
	return Filter(chunks, func(c Chunk) bool {
		kw, ok := Keyword(c)
		return !ok || kw != keyword
	})
}

func checksum(typ string, data []byte) uint32 {
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	return crc.Sum32()
}

func validType(typ string) bool {
	if len(typ) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		ch := typ[i]
		if !(ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z') {
			return false
		}
	}
	return true
}
