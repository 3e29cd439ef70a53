package codecerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrTruncatedStream        = errors.New("truncated stream")
	ErrUnsupportedCompression = errors.New("unsupported compression")
	ErrMalformedField         = errors.New("malformed field")
	ErrCorruptPayload         = errors.New("corrupt payload")
	ErrUnrecognizedIdentifier = errors.New("unrecognized identifier")
	ErrUnknownInput           = errors.New("unknown input")
	ErrCapacity               = errors.New("insufficient capacity")
)

// FormatError reports structurally invalid input. Kind is one of the sentinel
// errors above; Chunk and Field identify the offending location when known.
type FormatError struct {
	Kind   error
	Chunk  string
	Field  string
	Offset int64
	Detail string
	Err    error
}

func (e *FormatError) Error() string {
	kind := e.Kind
	if kind == nil {
		kind = ErrMalformedField
	}
	parts := make([]string, 0, 4)
	parts = append(parts, kind.Error())
	var where []string
	if e.Chunk != "" {
		where = append(where, "chunk "+e.Chunk)
	}
	if e.Field != "" {
		where = append(where, "field "+e.Field)
	}
	if e.Offset > 0 {
		where = append(where, fmt.Sprintf("offset %d", e.Offset))
	}
	if len(where) > 0 {
		parts = append(parts, strings.Join(where, ", "))
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	msg := strings.Join(parts, ": ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FormatError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ErrorKind returns a stable classification string for status mapping.
func (e *FormatError) ErrorKind() string {
	return "format"
}

// Format builds a FormatError of the given kind.
func Format(kind error, detail string) *FormatError {
	return &FormatError{Kind: kind, Detail: detail}
}

// Formatf builds a FormatError with a formatted detail message.
func Formatf(kind error, format string, args ...any) *FormatError {
	return &FormatError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// InChunk returns a copy of e annotated with the chunk type.
func (e *FormatError) InChunk(chunk string) *FormatError {
	clone := *e
	clone.Chunk = chunk
	return &clone
}

// InField returns a copy of e annotated with the field name.
func (e *FormatError) InField(field string) *FormatError {
	clone := *e
	clone.Field = field
	return &clone
}

// AtOffset returns a copy of e annotated with a byte offset.
func (e *FormatError) AtOffset(offset int64) *FormatError {
	clone := *e
	clone.Offset = offset
	return &clone
}

// Wrapping returns a copy of e carrying err as its cause.
func (e *FormatError) Wrapping(err error) *FormatError {
	clone := *e
	clone.Err = err
	return &clone
}

// CapacityError reports a steganography payload that needs more bits than the
// carrier image provides.
type CapacityError struct {
	Needed    int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: payload needs %d bits, image provides %d", ErrCapacity.Error(), e.Needed, e.Available)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

func (e *CapacityError) ErrorKind() string { return "capacity" }

// IsFormat reports whether err is (or wraps) a *FormatError.
func IsFormat(err error) bool {
	var formatErr *FormatError
	return errors.As(err, &formatErr)
}

// KindOf returns the sentinel kind of a wrapped *FormatError, or nil.
func KindOf(err error) error {
	var formatErr *FormatError
	if errors.As(err, &formatErr) {
		return formatErr.Kind
	}
	if errors.Is(err, ErrCapacity) {
		return ErrCapacity
	}
	return nil
}

// KindName returns a short snake_case label for err's kind, suitable for
// structured logging and JSON output.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrInvalidSignature:
		return "invalid_signature"
	case ErrTruncatedStream:
		return "truncated_stream"
	case ErrUnsupportedCompression:
		return "unsupported_compression"
	case ErrMalformedField:
		return "malformed_field"
	case ErrCorruptPayload:
		return "corrupt_payload"
	case ErrUnrecognizedIdentifier:
		return "unrecognized_identifier"
	case ErrUnknownInput:
		return "unknown_input"
	case ErrCapacity:
		return "capacity"
	case nil:
		if err == nil {
			return ""
		}
		return "other"
	default:
		return "other"
	}
}
