package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStealth()
	c.normalizeChunks()
	c.normalizeLibrary()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("VIBECODEC_LIBRARY_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.LibraryDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStealth() {
	if c.Stealth.Magic == "" {
		c.Stealth.Magic = defaultStealthMagic
	}
	seen := map[string]struct{}{c.Stealth.Magic: {}}
	magics := make([]string, 0, len(c.Stealth.AltMagics))
	for _, m := range c.Stealth.AltMagics {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		magics = append(magics, m)
	}
	c.Stealth.AltMagics = magics
	if c.Stealth.MaxInflatedBytes == 0 {
		c.Stealth.MaxInflatedBytes = defaultMaxInflatedBytes
	}
}

func (c *Config) normalizeChunks() {
	c.Chunks.Mode = strings.ToLower(strings.TrimSpace(c.Chunks.Mode))
	if c.Chunks.Mode == "" {
		c.Chunks.Mode = defaultChunkMode
	}
	if c.Chunks.MaxInflatedBytes == 0 {
		c.Chunks.MaxInflatedBytes = defaultMaxInflatedBytes
	}
}

func (c *Config) normalizeLibrary() {
	c.Library.DBName = strings.TrimSpace(c.Library.DBName)
	if c.Library.DBName == "" {
		c.Library.DBName = defaultLibraryDBName
	}
	if c.Library.LockTimeoutSeconds == 0 {
		c.Library.LockTimeoutSeconds = defaultLockTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
