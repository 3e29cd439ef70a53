package vibe

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"vibecodec/internal/codecerr"
)

// Encodings maps an opaque model identifier to a base64 encoding vector.
type Encodings map[string]string

// Clone returns an independent copy.
func (e Encodings) Clone() Encodings {
	if e == nil {
		return nil
	}
	return maps.Clone(e)
}

// Models returns the model identifiers in sorted order.
func (e Encodings) Models() []string {
	models := make([]string, 0, len(e))
	for model := range e {
		models = append(models, model)
	}
	slices.Sort(models)
	return models
}

// Record is one normalised vibe.
type Record struct {
	Identifier string         `json:"identifier,omitempty"`
	Version    int            `json:"version"`
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name"`
	Kind       Kind           `json:"type"`
	Thumbnail  DataURI        `json:"thumbnail,omitempty"`
	Image      DataURI        `json:"image,omitempty"`
	Encodings  Encodings      `json:"encodings,omitempty"`
	ImportInfo map[string]any `json:"importInfo,omitempty"`
	CreatedAt  int64          `json:"createdAt,omitempty"`
}

// HasThumbnail reports whether a thumbnail is present.
func (r Record) HasThumbnail() bool { return !r.Thumbnail.Empty() }

// HasImage reports whether the source image is present.
func (r Record) HasImage() bool { return !r.Image.Empty() }

// ThumbnailBytes decodes the thumbnail on demand.
func (r Record) ThumbnailBytes() ([]byte, error) { return r.Thumbnail.Bytes() }

// ImageBytes decodes the source image on demand.
func (r Record) ImageBytes() ([]byte, error) { return r.Image.Bytes() }

// Clone returns a deep copy of the record's maps.
func (r Record) Clone() Record {
	r.Encodings = r.Encodings.Clone()
	r.ImportInfo = cloneAny(r.ImportInfo)
	return r
}

// Validate checks the record invariants.
func (r Record) Validate() error {
	return r.validate("")
}

// validate names fields under prefix, "vibes[2]" for bundle members.
func (r Record) validate(prefix string) error {
	if r.Identifier != "" {
		kind, ok := ClassifyIdentifier(r.Identifier)
		if !ok || kind != ContainerSingle {
			return codecerr.Formatf(codecerr.ErrUnrecognizedIdentifier, "%q is not a single vibe identifier", r.Identifier).InField(fieldName(prefix, "identifier"))
		}
	}
	if r.Version < 0 {
		return codecerr.Formatf(codecerr.ErrMalformedField, "negative version %d", r.Version).InField(fieldName(prefix, "version"))
	}
	if !r.Kind.Valid() {
		return codecerr.Formatf(codecerr.ErrMalformedField, "unknown type %q", r.Kind).InField(fieldName(prefix, "type"))
	}
	if err := r.Thumbnail.validate(); err != nil {
		return codecerr.Format(codecerr.ErrMalformedField, err.Error()).InField(fieldName(prefix, "thumbnail"))
	}
	if err := r.Image.validate(); err != nil {
		return codecerr.Format(codecerr.ErrMalformedField, err.Error()).InField(fieldName(prefix, "image"))
	}
	for model, value := range r.Encodings {
		if strings.TrimSpace(model) == "" {
			return codecerr.Format(codecerr.ErrMalformedField, "empty model identifier").InField(fieldName(prefix, "encodings"))
		}
		if strings.TrimSpace(value) == "" {
			return codecerr.Formatf(codecerr.ErrMalformedField, "empty encoding for model %q", model).InField(fieldName(prefix, "encodings"))
		}
	}
	if !r.HasThumbnail() && !r.HasImage() && len(r.Encodings) == 0 {
		return codecerr.Format(codecerr.ErrMalformedField, "record has no thumbnail, image, or encodings").InField(fieldName(prefix, "encodings"))
	}
	return nil
}

// inferKind fills in a missing type from the record's content.
func (r *Record) inferKind() {
	if r.Kind != "" {
		return
	}
	if r.HasImage() || len(r.Encodings) == 0 {
		r.Kind = KindImage
		return
	}
	r.Kind = KindEncoding
}

func fieldName(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return fmt.Sprintf("%s.%s", prefix, field)
}

func cloneAny(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch typed := v.(type) {
		case map[string]any:
			out[k] = cloneAny(typed)
		case []any:
			cp := make([]any, len(typed))
			copy(cp, typed)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
