package pngtext

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/text/encoding/charmap"

	"vibecodec/internal/pngchunk"
)

// Mode selects the chunk type used when writing a sentinel payload.
type Mode int

const (
	// ModeText writes a tEXt chunk.
	ModeText Mode = iota
	// ModeCompressed writes a zTXt chunk.
	ModeCompressed
	// ModeInternational writes an uncompressed iTXt chunk.
	ModeInternational
	// ModeInternationalCompressed writes a zlib-compressed iTXt chunk.
	ModeInternationalCompressed
)

// ParseMode maps a configuration string to a Mode.
func ParseMode(value string) (Mode, error) {
	switch value {
	case "", "text", "tEXt":
		return ModeText, nil
	case "compressed", "zTXt":
		return ModeCompressed, nil
	case "international", "iTXt":
		return ModeInternational, nil
	case "international-compressed":
		return ModeInternationalCompressed, nil
	default:
		return ModeText, fmt.Errorf("unknown text chunk mode %q", value)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeCompressed:
		return "compressed"
	case ModeInternational:
		return "international"
	case ModeInternationalCompressed:
		return "international-compressed"
	default:
		return "text"
	}
}

// EncodeText builds a tEXt chunk. Both keyword and text must be representable
// in Latin-1.
func EncodeText(keyword, text string) (pngchunk.Chunk, error) {
	kw, err := encodeKeyword(keyword)
	if err != nil {
		return pngchunk.Chunk{}, err
	}
	body, err := charmap.ISO8859_1.NewEncoder().String(text)
	if err != nil {
		return pngchunk.Chunk{}, fmt.Errorf("encode tEXt text as latin-1: %w", err)
	}
	data := make([]byte, 0, len(kw)+1+len(body))
	data = append(data, kw...)
	data = append(data, 0)
	data = append(data, body...)
	return pngchunk.NewChunk(pngchunk.TypeTEXt, data), nil
}

// EncodeCompressedText builds a zTXt chunk holding zlib-compressed UTF-8 text.
func EncodeCompressedText(keyword, text string) (pngchunk.Chunk, error) {
	kw, err := encodeKeyword(keyword)
	if err != nil {
		return pngchunk.Chunk{}, err
	}
	compressed, err := deflate([]byte(text))
	if err != nil {
		return pngchunk.Chunk{}, err
	}
	data := make([]byte, 0, len(kw)+2+len(compressed))
	data = append(data, kw...)
	data = append(data, 0, 0)
	data = append(data, compressed...)
	return pngchunk.NewChunk(pngchunk.TypeZTXt, data), nil
}

// EncodeInternational builds an iTXt chunk with empty language and translated
// keyword fields.
func EncodeInternational(keyword, text string, compress bool) (pngchunk.Chunk, error) {
	kw, err := encodeKeyword(keyword)
	if err != nil {
		return pngchunk.Chunk{}, err
	}
	body := []byte(text)
	flag := byte(0)
	if compress {
		body, err = deflate(body)
		if err != nil {
			return pngchunk.Chunk{}, err
		}
		flag = 1
	}
	var buf bytes.Buffer
	buf.Write(kw)
	buf.WriteByte(0)
	buf.WriteByte(flag)
	buf.WriteByte(0) // compression method
	buf.WriteByte(0) // empty language tag
	buf.WriteByte(0) // empty translated keyword
	buf.Write(body)
	return pngchunk.NewChunk(pngchunk.TypeITXt, buf.Bytes()), nil
}

// EncodeSentinel wraps a JSON payload as a base64 sentinel chunk.
func EncodeSentinel(payload []byte, mode Mode) (pngchunk.Chunk, error) {
	text := base64.StdEncoding.EncodeToString(payload)
	switch mode {
	case ModeCompressed:
		return EncodeCompressedText(SentinelKeyword, text)
	case ModeInternational:
		return EncodeInternational(SentinelKeyword, text, false)
	case ModeInternationalCompressed:
		return EncodeInternational(SentinelKeyword, text, true)
	default:
		return EncodeText(SentinelKeyword, text)
	}
}

func encodeKeyword(keyword string) ([]byte, error) {
	if keyword == "" {
		return nil, fmt.Errorf("text chunk keyword must not be empty")
	}
	kw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(keyword))
	if err != nil {
		return nil, fmt.Errorf("encode keyword %q as latin-1: %w", keyword, err)
	}
	if len(kw) > maxKeywordLen {
		return nil, fmt.Errorf("keyword %q longer than %d bytes", keyword, maxKeywordLen)
	}
	if bytes.IndexByte(kw, 0) >= 0 {
		return nil, fmt.Errorf("keyword %q contains NUL", keyword)
	}
	return kw, nil
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("zlib write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}
	return buf.Bytes(), nil
}
