// Package pngtext decodes and encodes the payloads of PNG tEXt, zTXt, and
// iTXt chunks.
//
// tEXt text is Latin-1 as the PNG specification requires; zTXt and iTXt text
// is UTF-8, zlib-compressed where the chunk says so. Chunks whose keyword is
// SentinelKeyword carry a base64 JSON document, which Decode unpacks into
// TextRecord.Metadata so callers can hand it straight to the vibe schema.
package pngtext
