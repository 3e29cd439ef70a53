package vibe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"vibecodec/internal/codecerr"
)

// Parse validates a JSON document and returns the container it describes.
func Parse(data []byte) (Container, error) {
	data = bytes.TrimSpace(data)
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Container{}, codecerr.Format(codecerr.ErrMalformedField, "document is not a JSON object").Wrapping(err)
	}

	kind, err := identifierKind(probe)
	if err != nil {
		return Container{}, err
	}
	switch kind {
	case ContainerSingle:
		rec, err := parseRecord(data, "")
		if err != nil {
			return Container{}, err
		}
		if err := rec.Validate(); err != nil {
			return Container{}, err
		}
		return SingleContainer(rec), nil
	default:
		b, err := parseBundle(data)
		if err != nil {
			return Container{}, err
		}
		return BundleContainer(b), nil
	}
}

// ParseRecord parses a document that must be a single vibe.
func ParseRecord(data []byte) (Record, error) {
	c, err := Parse(data)
	if err != nil {
		return Record{}, err
	}
	rec, ok := c.Single()
	if !ok {
		return Record{}, codecerr.Format(codecerr.ErrUnrecognizedIdentifier, "expected a single vibe, got a bundle").InField("identifier")
	}
	return rec, nil
}

// Marshal serialises a container. A top-level record without an identifier
// is written with IdentifierSingle so Parse can dispatch on it; bundle
// members keep whatever they carry.
func Marshal(c Container) ([]byte, error) {
	if c.IsZero() {
		return nil, errors.New("marshal empty vibe container")
	}
	value := Visit(c,
		func(r Record) any {
			if r.Identifier == "" {
				r.Identifier = IdentifierSingle
			}
			return r
		},
		func(b Bundle) any { return b },
	)
	return json.Marshal(value)
}

// MarshalIndent serialises a container with two-space indentation.
func MarshalIndent(c Container) ([]byte, error) {
	raw, err := Marshal(c)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func identifierKind(probe map[string]json.RawMessage) (ContainerKind, error) {
	raw, ok := probe["identifier"]
	if !ok {
		return 0, codecerr.Format(codecerr.ErrUnrecognizedIdentifier, "missing identifier").InField("identifier")
	}
	var identifier string
	if err := json.Unmarshal(raw, &identifier); err != nil {
		return 0, codecerr.Format(codecerr.ErrUnrecognizedIdentifier, "identifier is not a string").InField("identifier")
	}
	kind, ok := ClassifyIdentifier(identifier)
	if !ok {
		return 0, codecerr.Formatf(codecerr.ErrUnrecognizedIdentifier, "unknown identifier %q", identifier).InField("identifier")
	}
	return kind, nil
}

func parseRecord(data []byte, prefix string) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, decodeError(err, prefix)
	}
	rec.inferKind()
	return rec, nil
}

type wireBundle struct {
	Identifier string            `json:"identifier"`
	Version    int               `json:"version"`
	Vibes      []json.RawMessage `json:"vibes"`
}

func parseBundle(data []byte) (Bundle, error) {
	var wire wireBundle
	if err := json.Unmarshal(data, &wire); err != nil {
		return Bundle{}, decodeError(err, "")
	}
	if len(wire.Vibes) == 0 {
		return Bundle{}, codecerr.Format(codecerr.ErrMalformedField, "bundle has no vibes").InField("vibes")
	}

	b := Bundle{
		Identifier: wire.Identifier,
		Version:    wire.Version,
		Vibes:      make([]Record, 0, len(wire.Vibes)),
	}
	for i, raw := range wire.Vibes {
		prefix := fmt.Sprintf("vibes[%d]", i)
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return Bundle{}, codecerr.Format(codecerr.ErrMalformedField, "bundle member is not an object").InField(prefix)
		}
		rec, err := parseRecord(trimmed, prefix)
		if err != nil {
			return Bundle{}, err
		}
		b.Vibes = append(b.Vibes, rec)
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

func decodeError(err error, prefix string) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "document"
		}
		return codecerr.Formatf(codecerr.ErrMalformedField, "expected %s, got JSON %s", typeErr.Type, typeErr.Value).InField(fieldName(prefix, field)).Wrapping(err)
	}
	return codecerr.Format(codecerr.ErrMalformedField, "invalid JSON").InField(fieldName(prefix, "document")).Wrapping(err)
}
