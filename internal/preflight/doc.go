// Package preflight provides readiness checks for the filesystem paths
// vibecodec writes to.
//
// The CLI "vibecodec config validate" command runs RunAll and renders each
// result. Checks for disabled features are skipped.
package preflight
