// Package codecerr defines the error taxonomy shared by the vibe codec
// packages.
//
// Structurally invalid input is reported as a *FormatError whose Kind is one of
// the exported sentinels, so callers can branch with errors.Is without string
// matching. Steganography encodes that do not fit inside an image report a
// *CapacityError. The absence of an embedded payload is never an error; the
// codec packages model it as a successful "not found" result instead.
package codecerr
