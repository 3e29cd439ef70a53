// Package pngchunk splits PNG datastreams into their chunk sequence and writes
// them back out.
//
// Scan validates the 8-byte signature and returns every chunk up to and
// including IEND. CRC trailers are consumed and recorded but a mismatch is not
// fatal: third-party tools occasionally miswrite them and the text payloads
// the codec cares about are otherwise intact. Encode and the chunk list
// helpers exist so metadata chunks can be inserted or replaced without
// touching image data.
package pngchunk
