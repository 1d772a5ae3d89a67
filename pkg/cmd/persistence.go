// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raglinehq/ragline/pkg/persistence"
	"github.com/raglinehq/ragline/pkg/persistence/file"
	"github.com/raglinehq/ragline/pkg/persistence/postgresql"
)

// NewPersistence creates a persistence backend from a database URL.
// `postgres://` and `postgresql://` select the SQL backend; anything else is
// treated as a filesystem root (with an optional `file://` prefix).
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to initialize postgres persistence: %w", err))
		}

		return store
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parseProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
