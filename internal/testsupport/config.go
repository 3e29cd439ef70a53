package testsupport

import (
	"path/filepath"
	"testing"

	"vibecodec/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.LogDir = ""
	cfgVal.Library.LockTimeoutSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithStealthMagic overrides the stealth marker on the test config.
func WithStealthMagic(magic string, alternates ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Stealth.Magic = magic
		b.cfg.Stealth.AltMagics = alternates
	}
}

// WithChunkMode sets the text chunk mode used for chunk embedding.
func WithChunkMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Chunks.Mode = mode
	}
}

// WithLibraryDisabled turns the library off.
func WithLibraryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Library.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LibraryDir)
}
