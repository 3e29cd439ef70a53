package pngtext

import (
	"testing"

	"vibecodec/internal/pngchunk"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		build  func() (pngchunk.Chunk, error)
		typ    string
		text   string
		zipped bool
	}{
		{"tEXt", func() (pngchunk.Chunk, error) { return EncodeText("Author", "Zoë") }, pngchunk.TypeTEXt, "Zoë", false},
		{"zTXt", func() (pngchunk.Chunk, error) { return EncodeCompressedText("Author", "日本語") }, pngchunk.TypeZTXt, "日本語", true},
		{"iTXt", func() (pngchunk.Chunk, error) { return EncodeInternational("Author", "日本語", false) }, pngchunk.TypeITXt, "日本語", false},
		{"iTXt compressed", func() (pngchunk.Chunk, error) { return EncodeInternational("Author", "日本語", true) }, pngchunk.TypeITXt, "日本語", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.build()
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			if c.Type != tt.typ {
				t.Fatalf("got chunk type %q want %q", c.Type, tt.typ)
			}
			rec, ok, err := Decode(c)
			if err != nil || !ok {
				t.Fatalf("decode failed: ok=%v err=%v", ok, err)
			}
			if rec.Keyword != "Author" || rec.Text != tt.text || rec.Compressed != tt.zipped {
				t.Fatalf("unexpected record %+v", rec)
			}
		})
	}
}

func TestEncodeTextRejectsNonLatin1(t *testing.T) {
	if _, err := EncodeText("Author", "日本語"); err == nil {
		t.Fatal("expected error for text outside latin-1")
	}
}

func TestEncodeKeywordValidation(t *testing.T) {
	if _, err := EncodeText("", "x"); err == nil {
		t.Fatal("expected error for empty keyword")
	}
	if _, err := EncodeText("a\x00b", "x"); err == nil {
		t.Fatal("expected error for keyword containing NUL")
	}
}

func TestEncodeSentinelModes(t *testing.T) {
	payload := []byte(`{"identifier":"vibe-bundle","version":1,"vibes":[]}`)
	for _, mode := range []Mode{ModeText, ModeCompressed, ModeInternational, ModeInternationalCompressed} {
		t.Run(mode.String(), func(t *testing.T) {
			c, err := EncodeSentinel(payload, mode)
			if err != nil {
				t.Fatalf("EncodeSentinel failed: %v", err)
			}
			rec, _, err := Decode(c)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if string(rec.Metadata) != string(payload) {
				t.Fatalf("got metadata %s", rec.Metadata)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, value := range []string{"text", "compressed", "international", "international-compressed"} {
		mode, err := ParseMode(value)
		if err != nil {
			t.Fatalf("ParseMode(%q) failed: %v", value, err)
		}
		if mode.String() != value {
			t.Fatalf("ParseMode(%q).String() = %q", value, mode.String())
		}
	}
	if _, err := ParseMode("brotli"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
