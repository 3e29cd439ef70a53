// Package vibecodec extracts vibe containers from PNG images and JSON files
// and embeds them back into images.
//
// Extraction runs a small state machine. Input is classified as PNG, JSON,
// or unknown. For PNG input the first text chunk carrying the naidata
// keyword wins; when none does, the raster is decoded and the alpha-channel
// stealth payload is tried. Either payload is then parsed as a vibe JSON
// document. A PNG with no payload yields StateNotFound, which callers treat
// as the ordinary case rather than an error.
//
// The transition table lives in Next so it can be tested without any I/O.
package vibecodec
