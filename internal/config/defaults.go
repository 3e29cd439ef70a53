package config

import (
	"github.com/klauspost/compress/gzip"
)

const (
	defaultLibraryDir         = "~/.local/share/vibecodec"
	defaultLogDir             = "~/.local/share/vibecodec/logs"
	defaultStealthMagic       = "VIBEMAGC"
	defaultLegacyMagic        = "stealth_pngcomp"
	defaultMaxInflatedBytes   = 64 << 20
	defaultChunkMode          = "text"
	defaultLibraryDBName      = "library.db"
	defaultLockTimeoutSeconds = 5
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Stealth: Stealth{
			Magic:            defaultStealthMagic,
			AltMagics:        []string{defaultLegacyMagic},
			MaxInflatedBytes: defaultMaxInflatedBytes,
			CompressionLevel: gzip.BestCompression,
		},
		Chunks: Chunks{
			Mode:             defaultChunkMode,
			MaxInflatedBytes: defaultMaxInflatedBytes,
		},
		Library: Library{
			Enabled:            true,
			DBName:             defaultLibraryDBName,
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
