package pngtext

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"vibecodec/internal/codecerr"
	"vibecodec/internal/pngchunk"
)

func chunk(typ string, parts ...[]byte) pngchunk.Chunk {
	return pngchunk.NewChunk(typ, bytes.Join(parts, nil))
}

func mustDeflate(t *testing.T, text string) []byte {
	t.Helper()
	out, err := deflate([]byte(text))
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	return out
}

func TestDecodeIgnoresNonTextChunks(t *testing.T) {
	_, ok, err := Decode(pngchunk.NewChunk(pngchunk.TypeIDAT, []byte{1, 2, 3}))
	if ok || err != nil {
		t.Fatalf("expected ok=false without error, got ok=%v err=%v", ok, err)
	}
}

func TestDecodeTEXtUsesLatin1(t *testing.T) {
	// 0xE9 is "é" in Latin-1 and an invalid lone byte in UTF-8.
	rec, ok, err := Decode(chunk(pngchunk.TypeTEXt, []byte("Comment\x00caf"), []byte{0xE9}))
	if err != nil || !ok {
		t.Fatalf("Decode failed: ok=%v err=%v", ok, err)
	}
	if rec.Keyword != "Comment" {
		t.Fatalf("got keyword %q", rec.Keyword)
	}
	if rec.Text != "café" {
		t.Fatalf("got text %q want %q", rec.Text, "café")
	}
	if rec.Metadata != nil {
		t.Fatalf("expected no metadata for plain keyword")
	}
}

func TestDecodeTEXtSplitsOnFirstNUL(t *testing.T) {
	rec, _, err := Decode(chunk(pngchunk.TypeTEXt, []byte("Key\x00a\x00b")))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.Text != "a\x00b" {
		t.Fatalf("got text %q", rec.Text)
	}
}

func TestDecodeZTXt(t *testing.T) {
	rec, ok, err := Decode(chunk(pngchunk.TypeZTXt, []byte("Description\x00\x00"), mustDeflate(t, "héllo wörld")))
	if err != nil || !ok {
		t.Fatalf("Decode failed: ok=%v err=%v", ok, err)
	}
	if rec.Text != "héllo wörld" || !rec.Compressed {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestDecodeZTXtRejectsUnknownMethod(t *testing.T) {
	_, ok, err := Decode(chunk(pngchunk.TypeZTXt, []byte("Description\x00\x01"), mustDeflate(t, "x")))
	if !ok {
		t.Fatal("expected ok=true for a text chunk")
	}
	if !errors.Is(err, codecerr.ErrUnsupportedCompression) {
		t.Fatalf("expected unsupported compression, got %v", err)
	}
	var formatErr *codecerr.FormatError
	if !errors.As(err, &formatErr) || formatErr.Chunk != pngchunk.TypeZTXt {
		t.Fatalf("expected error to name the zTXt chunk, got %v", err)
	}
}

func TestDecodeZTXtCorruptStream(t *testing.T) {
	_, _, err := Decode(chunk(pngchunk.TypeZTXt, []byte("Description\x00\x00"), []byte("not zlib")))
	if !errors.Is(err, codecerr.ErrCorruptPayload) {
		t.Fatalf("expected corrupt payload, got %v", err)
	}
}

func TestDecodeITXt(t *testing.T) {
	tests := []struct {
		name           string
		data           []byte
		wantText       string
		wantCompressed bool
		wantErr        error
	}{
		{
			name:     "uncompressed",
			data:     []byte("Title\x00\x00\x00en\x00Titel\x00grüße"),
			wantText: "grüße",
		},
		{
			name:           "compressed",
			data:           append([]byte("Title\x00\x01\x00\x00\x00"), mustDeflate(t, "zipped")...),
			wantText:       "zipped",
			wantCompressed: true,
		},
		{
			// Flag 0 governs: the stray method byte must not trigger inflation.
			name:     "flag zero ignores method",
			data:     []byte("Title\x00\x00\x07\x00\x00plain text"),
			wantText: "plain text",
		},
		{
			name:    "compressed with unknown method",
			data:    append([]byte("Title\x00\x01\x05\x00\x00"), mustDeflate(t, "x")...),
			wantErr: codecerr.ErrUnsupportedCompression,
		},
		{
			name:    "missing language terminator",
			data:    []byte("Title\x00\x00\x00en"),
			wantErr: codecerr.ErrMalformedField,
		},
		{
			name:    "missing translated keyword terminator",
			data:    []byte("Title\x00\x00\x00en\x00Titel"),
			wantErr: codecerr.ErrMalformedField,
		},
		{
			name:    "bad flag",
			data:    []byte("Title\x00\x02\x00\x00\x00text"),
			wantErr: codecerr.ErrMalformedField,
		},
		{
			name:    "truncated header",
			data:    []byte("Title\x00\x00"),
			wantErr: codecerr.ErrMalformedField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok, err := Decode(pngchunk.NewChunk(pngchunk.TypeITXt, tt.data))
			if !ok {
				t.Fatal("expected ok=true")
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Text != tt.wantText || rec.Compressed != tt.wantCompressed {
				t.Fatalf("got text=%q compressed=%v", rec.Text, rec.Compressed)
			}
		})
	}
}

func TestDecodeKeywordErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"missing NUL", []byte("keyword-without-terminator")},
		{"empty keyword", []byte("\x00text")},
		{"keyword too long", append([]byte(strings.Repeat("k", 80)), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(pngchunk.NewChunk(pngchunk.TypeTEXt, tt.data))
			if !errors.Is(err, codecerr.ErrMalformedField) {
				t.Fatalf("expected malformed field, got %v", err)
			}
		})
	}
}

func TestDecodeSentinelBase64JSON(t *testing.T) {
	doc := `{"identifier":"novelai-vibe-transfer","version":1}`
	encoded := base64.StdEncoding.EncodeToString([]byte(doc))

	rec, _, err := Decode(chunk(pngchunk.TypeTEXt, []byte(SentinelKeyword+"\x00"+encoded)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !rec.IsSentinel() {
		t.Fatal("expected sentinel record")
	}
	if string(rec.Metadata) != doc {
		t.Fatalf("got metadata %s", rec.Metadata)
	}
}

func TestDecodeSentinelAcceptsRawJSONAndUnpaddedBase64(t *testing.T) {
	doc := `{"a":1}`
	for _, text := range []string{doc, base64.RawStdEncoding.EncodeToString([]byte(doc))} {
		rec, _, err := Decode(chunk(pngchunk.TypeTEXt, []byte(SentinelKeyword+"\x00"+text)))
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", text, err)
		}
		if string(rec.Metadata) != doc {
			t.Fatalf("got metadata %s", rec.Metadata)
		}
	}
}

func TestDecodeSentinelRejectsGarbage(t *testing.T) {
	tests := []string{
		"!!!not base64!!!",
		base64.StdEncoding.EncodeToString([]byte("plain words")),
		`{"unterminated":`,
	}
	for _, text := range tests {
		_, _, err := Decode(chunk(pngchunk.TypeTEXt, []byte(SentinelKeyword+"\x00"+text)))
		if !errors.Is(err, codecerr.ErrCorruptPayload) {
			t.Fatalf("Decode(%q): expected corrupt payload, got %v", text, err)
		}
	}
}

func TestDecoderInflationLimit(t *testing.T) {
	big := strings.Repeat("a", 4096)
	d := Decoder{MaxInflatedBytes: 1024}
	_, _, err := d.Decode(chunk(pngchunk.TypeZTXt, []byte("Big\x00\x00"), mustDeflate(t, big)))
	if !errors.Is(err, codecerr.ErrCorruptPayload) {
		t.Fatalf("expected corrupt payload for oversized text, got %v", err)
	}
}
