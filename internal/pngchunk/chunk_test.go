package pngchunk

import (
	"bytes"
	"errors"
	"testing"

	"vibecodec/internal/codecerr"
)

func sampleChunks() []Chunk {
	return []Chunk{
		NewChunk(TypeIHDR, []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}),
		NewChunk(TypeTEXt, []byte("Title\x00hello")),
		NewChunk(TypeIDAT, []byte{0x78, 0x9c, 0x01}),
		NewChunk(TypeIEND, nil),
	}
}

func TestScanRoundTrip(t *testing.T) {
	data := Encode(sampleChunks())

	chunks, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	wantTypes := []string{TypeIHDR, TypeTEXt, TypeIDAT, TypeIEND}
	for i, c := range chunks {
		if c.Type != wantTypes[i] {
			t.Fatalf("chunk %d: got type %q want %q", i, c.Type, wantTypes[i])
		}
		if int(c.Length) != len(c.Data) {
			t.Fatalf("chunk %d: length %d does not match payload %d", i, c.Length, len(c.Data))
		}
		if !c.CRCValid() {
			t.Fatalf("chunk %d: expected valid CRC", i)
		}
	}
	if !bytes.Equal(chunks[1].Data, []byte("Title\x00hello")) {
		t.Fatalf("unexpected text payload %q", chunks[1].Data)
	}
	if chunks[0].Offset != int64(len(Signature)) {
		t.Fatalf("unexpected first chunk offset %d", chunks[0].Offset)
	}
}

func TestScanRejectsBadSignature(t *testing.T) {
	_, err := Scan([]byte("GIF89a....."))
	if !errors.Is(err, codecerr.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
}

func TestScanStopsAtIEND(t *testing.T) {
	data := Encode(sampleChunks())
	data = append(data, []byte("trailing garbage after the end chunk")...)

	chunks, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if chunks[len(chunks)-1].Type != TypeIEND {
		t.Fatalf("expected IEND to be last chunk")
	}
}

func TestScanToleratesCRCMismatch(t *testing.T) {
	data := Encode(sampleChunks())
	// Corrupt the CRC of the IHDR chunk: signature(8) + len(4) + type(4) + data(13).
	data[8+4+4+13] ^= 0xFF

	chunks, err := Scan(data)
	if err != nil {
		t.Fatalf("expected CRC mismatch to be non-fatal, got %v", err)
	}
	if chunks[0].CRCValid() {
		t.Fatalf("expected IHDR CRC to be reported invalid")
	}
	if !chunks[1].CRCValid() {
		t.Fatalf("expected tEXt CRC to stay valid")
	}
}

func TestScanTruncation(t *testing.T) {
	full := Encode(sampleChunks())
	withoutEnd := Encode(sampleChunks()[:3])

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
		count   int
	}{
		{name: "clean boundary without IEND", data: withoutEnd, count: 3},
		{name: "few trailing bytes", data: append(append([]byte{}, withoutEnd...), 0, 0, 0), wantErr: true, count: 3},
		{name: "declared length overruns", data: full[:len(Signature)+20], wantErr: true, count: 0},
		{name: "signature only", data: []byte(Signature), count: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Scan(tt.data)
			if tt.wantErr {
				if !errors.Is(err, codecerr.ErrTruncatedStream) {
					t.Fatalf("expected truncated stream, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(chunks) != tt.count {
				t.Fatalf("got %d chunks want %d", len(chunks), tt.count)
			}
		})
	}
}

func TestScanRejectsInvalidType(t *testing.T) {
	data := Encode([]Chunk{NewChunk("I1DR", []byte{1})})
	_, err := Scan(data)
	if !errors.Is(err, codecerr.ErrMalformedField) {
		t.Fatalf("expected malformed field, got %v", err)
	}
}

func TestInsertBeforeIDATAndRemoveText(t *testing.T) {
	chunks := sampleChunks()
	added := NewChunk(TypeTEXt, []byte("naidata\x00e30="))
	updated := InsertBeforeIDAT(chunks, added)
	if len(updated) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(updated))
	}
	if updated[2].Type != TypeTEXt || updated[3].Type != TypeIDAT {
		t.Fatalf("expected inserted chunk before IDAT, got %s then %s", updated[2].Type, updated[3].Type)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected original slice untouched")
	}

	pruned := RemoveText(updated, "naidata")
	if len(pruned) != 4 {
		t.Fatalf("expected sentinel chunk removed, got %d chunks", len(pruned))
	}
	if kw, ok := Keyword(pruned[1]); !ok || kw != "Title" {
		t.Fatalf("expected unrelated text chunk kept, got %q", kw)
	}
}

func TestAncillary(t *testing.T) {
	if NewChunk(TypeIHDR, nil).Ancillary() {
		t.Fatal("IHDR is critical")
	}
	if !NewChunk(TypeTEXt, nil).Ancillary() {
		t.Fatal("tEXt is ancillary")
	}
}
