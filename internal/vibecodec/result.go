package vibecodec

import (
	"vibecodec/internal/vibe"
)

// Source records where an extracted document came from.
type Source string

const (
	SourceNone    Source = ""
	SourceJSON    Source = "json"
	SourceChunk   Source = "chunk"
	SourceStealth Source = "stealth"
)

// Result is the outcome of Extract. Exactly one of Container (for the two
// extracted states) or Err (for StateFailed) is set; StateNotFound carries
// neither.
type Result struct {
	State State
	// Input is the classification the run started from.
	Input     InputClass
	Source    Source
	Chunk     string
	Container vibe.Container
	// Document is the JSON text the container was parsed from.
	Document []byte
	Err      error
	// Path lists every state visited, starting with StateDetect.
	Path []State
}

// Found reports whether a vibe container was extracted.
func (r Result) Found() bool {
	return r.State == StateExtracted || r.State == StateExtractedBundle
}

// Failed reports whether extraction ended in StateFailed.
func (r Result) Failed() bool {
	return r.State == StateFailed
}

// Record returns the extracted single vibe.
func (r Result) Record() (vibe.Record, bool) {
	if r.State != StateExtracted {
		return vibe.Record{}, false
	}
	return r.Container.Single()
}

// Bundle returns the extracted bundle.
func (r Result) Bundle() (vibe.Bundle, bool) {
	if r.State != StateExtractedBundle {
		return vibe.Bundle{}, false
	}
	return r.Container.Bundle()
}
