package preflight

import (
	"strings"

	"vibecodec/internal/config"
)

// MinLibraryFreeBytes is the free space below which the library check fails.
const MinLibraryFreeBytes uint64 = 16 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Directories are expected to exist; call cfg.EnsureDirectories first.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Library.Enabled {
		access := CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir)
		results = append(results, access)
		if access.Passed {
			results = append(results, CheckFreeSpace("Library free space", cfg.Paths.LibraryDir, MinLibraryFreeBytes))
		}
	}

	if logDir := strings.TrimSpace(cfg.Paths.LogDir); logDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", logDir))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
