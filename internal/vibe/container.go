package vibe

import "vibecodec/internal/codecerr"

// Container is either a single Record or a Bundle. Its fields are unexported
// so values can only be built through SingleContainer, BundleContainer, or
// Parse.
type Container struct {
	kind   ContainerKind
	single Record
	bundle Bundle
}

// SingleContainer wraps a record.
func SingleContainer(r Record) Container {
	return Container{kind: ContainerSingle, single: r}
}

// BundleContainer wraps a bundle.
func BundleContainer(b Bundle) Container {
	return Container{kind: ContainerBundle, bundle: b}
}

// Kind returns which shape the container holds.
func (c Container) Kind() ContainerKind { return c.kind }

// IsZero reports whether the container holds nothing.
func (c Container) IsZero() bool { return c.kind == 0 }

// Single returns the record when the container holds one.
func (c Container) Single() (Record, bool) {
	if c.kind != ContainerSingle {
		return Record{}, false
	}
	return c.single, true
}

// Bundle returns the bundle when the container holds one.
func (c Container) Bundle() (Bundle, bool) {
	if c.kind != ContainerBundle {
		return Bundle{}, false
	}
	return c.bundle, true
}

// Records returns the container's records in order.
func (c Container) Records() []Record {
	switch c.kind {
	case ContainerSingle:
		return []Record{c.single}
	case ContainerBundle:
		return c.bundle.Vibes
	default:
		return nil
	}
}

// Validate checks the held value.
func (c Container) Validate() error {
	if c.IsZero() {
		return codecerr.Format(codecerr.ErrUnrecognizedIdentifier, "empty container")
	}
	return Visit(c,
		func(r Record) error { return r.Validate() },
		func(b Bundle) error { return b.Validate() },
	)
}

// Visit calls exactly one of onSingle or onBundle. A zero container yields
// the zero value of T.
func Visit[T any](c Container, onSingle func(Record) T, onBundle func(Bundle) T) T {
	switch c.kind {
	case ContainerSingle:
		return onSingle(c.single)
	case ContainerBundle:
		return onBundle(c.bundle)
	default:
		var zero T
		return zero
	}
}
