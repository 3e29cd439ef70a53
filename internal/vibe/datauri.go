package vibe

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DataURI holds an image either as "data:<mime>;base64,<payload>" or, for
// legacy producers, as bare base64. The payload is only decoded on demand.
type DataURI string

const dataPrefix = "data:"

// NewDataURI encodes data as a data URI with the given MIME type. An empty
// MIME type yields bare base64.
func NewDataURI(mime string, data []byte) DataURI {
	encoded := base64.StdEncoding.EncodeToString(data)
	if mime == "" {
		return DataURI(encoded)
	}
	return DataURI(dataPrefix + mime + ";base64," + encoded)
}

// Empty reports whether no image is present.
func (d DataURI) Empty() bool {
	return strings.TrimSpace(string(d)) == ""
}

// IsURI reports whether d carries the data: prefix.
func (d DataURI) IsURI() bool {
	return strings.HasPrefix(string(d), dataPrefix)
}

// MIMEType returns the declared media type, or "" for bare base64.
func (d DataURI) MIMEType() string {
	header, _, ok := d.split()
	if !ok {
		return ""
	}
	mime, _, _ := strings.Cut(header, ";")
	return mime
}

// Payload returns the base64 portion without decoding it.
func (d DataURI) Payload() string {
	if !d.IsURI() {
		return strings.TrimSpace(string(d))
	}
	_, payload, _ := d.split()
	return payload
}

// Bytes decodes the image bytes.
func (d DataURI) Bytes() ([]byte, error) {
	if d.Empty() {
		return nil, nil
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	payload := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, d.Payload())
	out, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		out, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("decode data uri payload: %w", err)
	}
	return out, nil
}

// validate checks the URI framing without touching the payload.
func (d DataURI) validate() error {
	if !d.IsURI() {
		return nil
	}
	header, _, ok := d.split()
	if !ok {
		return fmt.Errorf("data uri missing ',' separator")
	}
	if !strings.HasSuffix(header, ";base64") {
		return fmt.Errorf("data uri is not base64 encoded")
	}
	return nil
}

func (d DataURI) split() (header, payload string, ok bool) {
	if !d.IsURI() {
		return "", "", false
	}
	return strings.Cut(strings.TrimPrefix(string(d), dataPrefix), ",")
}
