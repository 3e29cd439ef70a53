package pngtext

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/text/encoding/charmap"

	"vibecodec/internal/codecerr"
	"vibecodec/internal/pngchunk"
)

// SentinelKeyword marks text chunks whose text is a base64 JSON vibe payload.
const SentinelKeyword = "naidata"

// DefaultMaxInflatedBytes caps zlib output so a hostile chunk cannot expand
// without bound.
const DefaultMaxInflatedBytes int64 = 64 << 20

const maxKeywordLen = 79

// TextRecord is the decoded content of one text chunk.
type TextRecord struct {
	Type              string
	Keyword           string
	Text              string
	Compressed        bool
	Language          string
	TranslatedKeyword string
	// Metadata holds the decoded JSON document for sentinel chunks.
	Metadata json.RawMessage
}

// IsSentinel reports whether the record carries a vibe payload.
func (r TextRecord) IsSentinel() bool {
	return r.Keyword == SentinelKeyword
}

// Decoder decodes text chunks with a configurable inflation limit.
type Decoder struct {
	MaxInflatedBytes int64
}

// Decode decodes c with the default inflation limit.
func Decode(c pngchunk.Chunk) (TextRecord, bool, error) {
	return Decoder{}.Decode(c)
}

// Decode returns the text record for a text-bearing chunk. ok is false for
// every other chunk type.
func (d Decoder) Decode(c pngchunk.Chunk) (TextRecord, bool, error) {
	var (
		rec TextRecord
		err error
	)
	switch c.Type {
	case pngchunk.TypeTEXt:
		rec, err = decodeText(c.Data)
	case pngchunk.TypeZTXt:
		rec, err = d.decodeCompressed(c.Data)
	case pngchunk.TypeITXt:
		rec, err = d.decodeInternational(c.Data)
	default:
		return TextRecord{}, false, nil
	}
	if err != nil {
		return TextRecord{}, true, annotate(err, c.Type)
	}
	rec.Type = c.Type

	if rec.IsSentinel() {
		meta, err := decodeSentinel(rec.Text)
		if err != nil {
			return TextRecord{}, true, annotate(err, c.Type)
		}
		rec.Metadata = meta
	}
	return rec, true, nil
}

func decodeText(data []byte) (TextRecord, error) {
	keyword, rest, err := splitKeyword(data)
	if err != nil {
		return TextRecord{}, err
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(rest)
	if err != nil {
		return TextRecord{}, codecerr.Format(codecerr.ErrMalformedField, "latin-1 text").InField("text").Wrapping(err)
	}
	return TextRecord{Keyword: keyword, Text: string(text)}, nil
}

func (d Decoder) decodeCompressed(data []byte) (TextRecord, error) {
	keyword, rest, err := splitKeyword(data)
	if err != nil {
		return TextRecord{}, err
	}
	if len(rest) == 0 {
		return TextRecord{}, codecerr.Format(codecerr.ErrMalformedField, "missing compression method").InField("compression_method")
	}
	if method := rest[0]; method != 0 {
		return TextRecord{}, codecerr.Formatf(codecerr.ErrUnsupportedCompression, "compression method %d", method).InField("compression_method")
	}
	text, err := d.inflate(rest[1:])
	if err != nil {
		return TextRecord{}, err
	}
	if !utf8.Valid(text) {
		return TextRecord{}, codecerr.Format(codecerr.ErrMalformedField, "text is not valid UTF-8").InField("text")
	}
	return TextRecord{Keyword: keyword, Text: string(text), Compressed: true}, nil
}

func (d Decoder) decodeInternational(data []byte) (TextRecord, error) {
	keyword, rest, err := splitKeyword(data)
	if err != nil {
		return TextRecord{}, err
	}
	if len(rest) < 2 {
		return TextRecord{}, codecerr.Format(codecerr.ErrMalformedField, "missing compression flag and method").InField("compression_flag")
	}
	flag, method := rest[0], rest[1]
	rest = rest[2:]

	language, rest, ok := cutNUL(rest)
	if !ok {
		return TextRecord{}, codecerr.Format(codecerr.ErrMalformedField, "language tag not NUL-terminated").InField("language_tag")
	}
	translated, rest, ok := cutNUL(rest)
	if !ok {
		return TextRecord{}, codecerr.Format(codecerr.ErrMalformedField, "translated keyword not NUL-terminated").InField("translated_keyword")
	}

	rec := TextRecord{
		Keyword:           keyword,
		Language:          string(language),
		TranslatedKeyword: string(translated),
	}

	// The method byte only matters when the flag says the text is compressed.
	switch flag {
	case 0:
		if !utf8.Valid(rest) {
			return TextRecord{}, codecerr.Format(codecerr.ErrMalformedField, "text is not valid UTF-8").InField("text")
		}
		rec.Text = string(rest)
	case 1:
		if method != 0 {
			return TextRecord{}, codecerr.Formatf(codecerr.ErrUnsupportedCompression, "compression method %d", method).InField("compression_method")
		}
		text, err := d.inflate(rest)
		if err != nil {
			return TextRecord{}, err
		}
		if !utf8.Valid(text) {
			return TextRecord{}, codecerr.Format(codecerr.ErrMalformedField, "text is not valid UTF-8").InField("text")
		}
		rec.Text = string(text)
		rec.Compressed = true
	default:
		return TextRecord{}, codecerr.Formatf(codecerr.ErrMalformedField, "compression flag %d", flag).InField("compression_flag")
	}
	if !utf8.ValidString(rec.TranslatedKeyword) {
		return TextRecord{}, codecerr.Format(codecerr.ErrMalformedField, "translated keyword is not valid UTF-8").InField("translated_keyword")
	}
	return rec, nil
}

func (d Decoder) inflate(data []byte) ([]byte, error) {
	limit := d.MaxInflatedBytes
	if limit <= 0 {
		limit = DefaultMaxInflatedBytes
	}
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, codecerr.Format(codecerr.ErrCorruptPayload, "zlib header").InField("text").Wrapping(err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, codecerr.Format(codecerr.ErrCorruptPayload, "zlib stream").InField("text").Wrapping(err)
	}
	if int64(len(out)) > limit {
		return nil, codecerr.Formatf(codecerr.ErrCorruptPayload, "inflated text exceeds %d bytes", limit).InField("text")
	}
	return out, nil
}

func splitKeyword(data []byte) (string, []byte, error) {
	keyword, rest, ok := cutNUL(data)
	if !ok {
		return "", nil, codecerr.Format(codecerr.ErrMalformedField, "keyword not NUL-terminated").InField("keyword")
	}
	if len(keyword) == 0 {
		return "", nil, codecerr.Format(codecerr.ErrMalformedField, "empty keyword").InField("keyword")
	}
	if len(keyword) > maxKeywordLen {
		return "", nil, codecerr.Formatf(codecerr.ErrMalformedField, "keyword longer than %d bytes", maxKeywordLen).InField("keyword")
	}
	// Keywords are Latin-1 too; decoding cannot fail for single-byte input.
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(keyword)
	return string(decoded), rest, nil
}

func cutNUL(data []byte) ([]byte, []byte, bool) {
	idx := bytes.IndexByte(data, 0)
	if idx < 0 {
		return nil, nil, false
	}
	return data[:idx], data[idx+1:], true
}

func decodeSentinel(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if looksLikeObject([]byte(trimmed)) {
		if !json.Valid([]byte(trimmed)) {
			return nil, codecerr.Format(codecerr.ErrCorruptPayload, "sentinel JSON is invalid").InField("text")
		}
		return json.RawMessage(trimmed), nil
	}

	raw, err := decodeBase64(trimmed)
	if err != nil {
		return nil, codecerr.Format(codecerr.ErrCorruptPayload, "sentinel text is not base64").InField("text").Wrapping(err)
	}
	raw = bytes.TrimSpace(raw)
	if !looksLikeObject(raw) || !json.Valid(raw) {
		return nil, codecerr.Format(codecerr.ErrCorruptPayload, "sentinel payload is not a JSON object").InField("text")
	}
	return json.RawMessage(raw), nil
}

// decodeBase64 accepts padded and unpadded standard or URL-safe alphabets.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
	var firstErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		out, err := enc.DecodeString(s)
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func looksLikeObject(data []byte) bool {
	return len(data) > 0 && data[0] == '{'
}

func annotate(err error, chunkType string) error {
	var formatErr *codecerr.FormatError
	if errors.As(err, &formatErr) {
		return formatErr.InChunk(chunkType)
	}
	return err
}
