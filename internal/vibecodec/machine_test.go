package vibecodec

import (
	"testing"

	"vibecodec/internal/pngchunk"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want InputClass
	}{
		{"png signature", []byte(pngchunk.Signature + "rest"), InputPNG},
		{"json object", []byte(`{"identifier":"x"}`), InputJSON},
		{"json with bom and space", append([]byte{0xEF, 0xBB, 0xBF}, []byte("  [1]\n")...), InputJSON},
		{"truncated signature", []byte(pngchunk.Signature[:5]), InputUnknown},
		{"plain text", []byte("hello"), InputUnknown},
		{"empty", nil, InputUnknown},
		{"invalid utf8", []byte{'"', 0xFF, '"'}, InputUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := Classify(tt.data)
			if first != tt.want {
				t.Fatalf("Classify = %v, want %v", first, tt.want)
			}
			if again := Classify(tt.data); again != first {
				t.Fatalf("Classify not idempotent: %v then %v", first, again)
			}
		})
	}
}

func TestNextDecisionTable(t *testing.T) {
	tests := []struct {
		from State
		on   Event
		want State
	}{
		{StateDetect, EventIsPNG, StatePNG},
		{StateDetect, EventIsJSON, StateJSON},
		{StateDetect, EventUnknown, StateFailed},
		{StatePNG, EventChunkMatched, StateJSON},
		{StatePNG, EventNoChunk, StateStealth},
		{StatePNG, EventError, StateFailed},
		{StateStealth, EventStealthFound, StateJSON},
		{StateStealth, EventStealthAbsent, StateNotFound},
		{StateStealth, EventError, StateFailed},
		{StateJSON, EventSingle, StateExtracted},
		{StateJSON, EventBundle, StateExtractedBundle},
		{StateJSON, EventError, StateFailed},
		{StateDetect, EventSingle, StateFailed},
		{StateJSON, EventNoChunk, StateFailed},
	}
	for _, tt := range tests {
		if got := Next(tt.from, tt.on); got != tt.want {
			t.Errorf("Next(%v, %v) = %v, want %v", tt.from, tt.on, got, tt.want)
		}
	}
}

func TestTerminalStatesAbsorbEvents(t *testing.T) {
	terminals := []State{StateExtracted, StateExtractedBundle, StateNotFound, StateFailed}
	events := []Event{EventIsPNG, EventIsJSON, EventUnknown, EventChunkMatched, EventNoChunk, EventStealthFound, EventStealthAbsent, EventSingle, EventBundle, EventError}
	for _, s := range terminals {
		if !s.Terminal() {
			t.Fatalf("%v should be terminal", s)
		}
		for _, e := range events {
			if got := Next(s, e); got != s {
				t.Fatalf("Next(%v, %v) = %v, terminal state must not change", s, e, got)
			}
		}
	}
	for _, s := range []State{StateDetect, StatePNG, StateJSON, StateStealth} {
		if s.Terminal() {
			t.Fatalf("%v should not be terminal", s)
		}
	}
}
