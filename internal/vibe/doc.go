// Package vibe defines the single-vibe and vibe-bundle JSON containers.
//
// A document's top-level "identifier" selects the container shape. Parse
// validates it and returns a Container, a closed variant holding either a
// Record or a Bundle; call sites use Visit or the Single/Bundle accessors so
// both shapes are always handled.
//
// # Key Types
//
// Record: one vibe with name, kind, optional thumbnail and source image (data
// URIs, decoded lazily via DataURI.Bytes), and per-model encodings kept
// verbatim.
//
// Bundle: an ordered, non-empty list of records. A bundle with any invalid
// member is rejected as a whole; callers never receive a partial list.
//
// # Entry Points
//
// Parse: dispatch and validate raw JSON.
// Marshal: serialise a Container so that Parse(Marshal(c)) reproduces it,
// with a missing top-level identifier filled in.
// NewBundle: assemble and validate a bundle from existing records.
package vibe
