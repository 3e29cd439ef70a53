package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"vibecodec/internal/pngtext"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStealth(); err != nil {
		return err
	}
	if err := c.validateChunks(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStealth() error {
	if len(c.Stealth.Magic) < 4 {
		return fmt.Errorf("stealth.magic must be at least 4 bytes, got %d", len(c.Stealth.Magic))
	}
	for _, m := range c.Stealth.AltMagics {
		if len(m) < 4 {
			return fmt.Errorf("stealth.alt_magics entry %q must be at least 4 bytes", m)
		}
	}
	if c.Stealth.MaxInflatedBytes < 0 {
		return errors.New("stealth.max_inflated_bytes must be positive")
	}
	if c.Stealth.CompressionLevel < gzip.HuffmanOnly || c.Stealth.CompressionLevel > gzip.BestCompression {
		return fmt.Errorf("stealth.compression_level must be between %d and %d", gzip.HuffmanOnly, gzip.BestCompression)
	}
	return nil
}

func (c *Config) validateChunks() error {
	if _, err := pngtext.ParseMode(c.Chunks.Mode); err != nil {
		return fmt.Errorf("chunks.mode: %w", err)
	}
	if c.Chunks.MaxInflatedBytes < 0 {
		return errors.New("chunks.max_inflated_bytes must be positive")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if !c.Library.Enabled {
		return nil
	}
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set when library.enabled is true")
	}
	if filepath.Base(c.Library.DBName) != c.Library.DBName {
		return fmt.Errorf("library.db_name %q must be a file name, not a path", c.Library.DBName)
	}
	if c.Library.LockTimeoutSeconds < 0 {
		return errors.New("library.lock_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
