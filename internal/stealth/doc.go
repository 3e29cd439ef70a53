// Package stealth hides byte payloads in the least significant bit of an
// image's alpha channel.
//
// The bit stream runs in row-major raster order, one bit per pixel: a magic
// marker, a 32-bit big-endian count of payload bits, then the gzip-compressed
// payload. Only bit 0 of each alpha sample changes; colour channels and
// dimensions are preserved.
//
// Decode treats a missing marker as "no payload" rather than an error, since
// most images simply carry nothing. Once a marker matches, a short or corrupt
// stream is reported as codecerr.ErrCorruptPayload.
package stealth
