package vibe

import "strings"

// Container identifiers written by this package.
const (
	IdentifierSingle = "novelai-vibe-transfer"
	IdentifierBundle = "novelai-vibe-transfer-bundle"
)

// Identifier aliases used by older producers.
const (
	AliasSingle = "single-vibe"
	AliasBundle = "vibe-bundle"
)

// CurrentVersion is the schema version written for new containers.
const CurrentVersion = 1

// Kind says whether a record still carries its source image or only
// encodings.
type Kind string

const (
	KindImage    Kind = "image"
	KindEncoding Kind = "encoding"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindImage || k == KindEncoding
}

// ContainerKind distinguishes the two container shapes.
type ContainerKind int

const (
	ContainerSingle ContainerKind = iota + 1
	ContainerBundle
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerSingle:
		return "single"
	case ContainerBundle:
		return "bundle"
	default:
		return "none"
	}
}

// ClassifyIdentifier maps an identifier string to its container kind. The
// boolean is false for unrecognised values.
func ClassifyIdentifier(identifier string) (ContainerKind, bool) {
	switch strings.TrimSpace(identifier) {
	case IdentifierSingle, AliasSingle:
		return ContainerSingle, true
	case IdentifierBundle, AliasBundle:
		return ContainerBundle, true
	default:
		return 0, false
	}
}
