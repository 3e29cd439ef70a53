package testsupport

import (
	"context"
	"testing"

	"vibecodec/internal/config"
	"vibecodec/internal/library"
	"vibecodec/internal/logging"
)

// MustOpenLibrary opens a library.Store for tests and registers cleanup.
func MustOpenLibrary(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
