package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"parley-chat/config"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
)

// StartEmbedded boots a local PostgreSQL for development using the configured
// credentials, port and data directory.
func StartEmbedded(cfg *config.Config) (*embeddedpostgres.EmbeddedPostgres, error) {
	port, err := strconv.ParseUint(cfg.DBPort, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT %q: %w", cfg.DBPort, err)
	}
	if err := os.MkdirAll(cfg.DBEmbeddedDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pgdata dir: %w", err)
	}

	db := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(port)).
			Username(cfg.DBUser).
			Password(cfg.DBPassword).
			Database(cfg.DBName).
			DataPath(cfg.DBEmbeddedDir).
			RuntimePath(filepath.Join(os.TempDir(), "parley-embedded-pg")),
	)
	if err := db.Start(); err != nil {
		return nil, fmt.Errorf("start embedded postgres: %w", err)
	}
	return db, nil
}
