// Package config loads, normalizes, and validates vibecodec configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the VIBECODEC_LIBRARY_DIR environment fallback. The
// Config type gathers the stealth marker settings, the text chunk mode used
// when embedding, the library location, and log output in one place.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
