package vibe

import (
	"fmt"

	"vibecodec/internal/codecerr"
)

// Bundle is an ordered, non-empty list of records.
type Bundle struct {
	Identifier string   `json:"identifier"`
	Version    int      `json:"version"`
	Vibes      []Record `json:"vibes"`
}

// NewBundle validates records and assembles them, in order, into a bundle.
func NewBundle(records ...Record) (Bundle, error) {
	b := Bundle{
		Identifier: IdentifierBundle,
		Version:    CurrentVersion,
		Vibes:      make([]Record, 0, len(records)),
	}
	for _, r := range records {
		r = r.Clone()
		r.inferKind()
		if r.Identifier == "" {
			r.Identifier = IdentifierSingle
		}
		b.Vibes = append(b.Vibes, r)
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// Validate checks the bundle and every member. The first invalid member fails
// the whole bundle.
func (b Bundle) Validate() error {
	kind, ok := ClassifyIdentifier(b.Identifier)
	if !ok || kind != ContainerBundle {
		return codecerr.Formatf(codecerr.ErrUnrecognizedIdentifier, "%q is not a bundle identifier", b.Identifier).InField("identifier")
	}
	if b.Version < 0 {
		return codecerr.Formatf(codecerr.ErrMalformedField, "negative version %d", b.Version).InField("version")
	}
	if len(b.Vibes) == 0 {
		return codecerr.Format(codecerr.ErrMalformedField, "bundle has no vibes").InField("vibes")
	}
	for i, r := range b.Vibes {
		if err := r.validate(fmt.Sprintf("vibes[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// Names returns member names in bundle order.
func (b Bundle) Names() []string {
	names := make([]string, len(b.Vibes))
	for i, r := range b.Vibes {
		names[i] = r.Name
	}
	return names
}
