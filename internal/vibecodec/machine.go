package vibecodec

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"vibecodec/internal/pngchunk"
)

// InputClass is the coarse classification of an input buffer.
type InputClass int

const (
	InputUnknown InputClass = iota
	InputPNG
	InputJSON
)

func (c InputClass) String() string {
	switch c {
	case InputPNG:
		return "png"
	case InputJSON:
		return "json"
	default:
		return "unknown"
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Classify reports whether data is a PNG stream, a JSON document, or neither.
// It only inspects data and never fails.
func Classify(data []byte) InputClass {
	if pngchunk.HasSignature(data) {
		return InputPNG
	}
	doc := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(doc) > 0 && utf8.Valid(doc) && json.Valid(doc) {
		return InputJSON
	}
	return InputUnknown
}

// State is a node of the extraction state machine.
type State int

const (
	StateDetect State = iota
	StatePNG
	StateJSON
	StateStealth
	StateExtracted
	StateExtractedBundle
	StateNotFound
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDetect:
		return "detect"
	case StatePNG:
		return "png"
	case StateJSON:
		return "json"
	case StateStealth:
		return "stealth"
	case StateExtracted:
		return "extracted"
	case StateExtractedBundle:
		return "extracted_bundle"
	case StateNotFound:
		return "not_found"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Terminal reports whether no further transitions leave s.
func (s State) Terminal() bool {
	switch s {
	case StateExtracted, StateExtractedBundle, StateNotFound, StateFailed:
		return true
	}
	return false
}

// Event drives a transition.
type Event int

const (
	EventIsPNG Event = iota
	EventIsJSON
	EventUnknown
	// EventChunkMatched means a sentinel text chunk yielded a JSON payload.
	EventChunkMatched
	EventNoChunk
	// EventStealthFound means the alpha channel carried a framed payload.
	EventStealthFound
	EventStealthAbsent
	EventSingle
	EventBundle
	EventError
)

func (e Event) String() string {
	switch e {
	case EventIsPNG:
		return "is_png"
	case EventIsJSON:
		return "is_json"
	case EventUnknown:
		return "unknown_input"
	case EventChunkMatched:
		return "chunk_matched"
	case EventNoChunk:
		return "no_chunk"
	case EventStealthFound:
		return "stealth_found"
	case EventStealthAbsent:
		return "stealth_absent"
	case EventSingle:
		return "single"
	case EventBundle:
		return "bundle"
	case EventError:
		return "error"
	default:
		return "invalid"
	}
}

type transition struct {
	from State
	on   Event
}

var transitions = map[transition]State{
	{StateDetect, EventIsPNG}:          StatePNG,
	{StateDetect, EventIsJSON}:         StateJSON,
	{StateDetect, EventUnknown}:        StateFailed,
	{StatePNG, EventChunkMatched}:      StateJSON,
	{StatePNG, EventNoChunk}:           StateStealth,
	{StateStealth, EventStealthFound}:  StateJSON,
	{StateStealth, EventStealthAbsent}: StateNotFound,
	{StateJSON, EventSingle}:           StateExtracted,
	{StateJSON, EventBundle}:           StateExtractedBundle,
}

// Next returns the state reached from s on e. Terminal states absorb every
// event. EventError, and any event with no entry in the table, leads to
// StateFailed.
func Next(s State, e Event) State {
	if s.Terminal() {
		return s
	}
	if next, ok := transitions[transition{s, e}]; ok {
		return next
	}
	return StateFailed
}
