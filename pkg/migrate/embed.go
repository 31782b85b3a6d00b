package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedded embed.FS

const embeddedDir = "migrations"

// RunEmbedded runs a goose command against the migrations compiled into the binary, so
// processes can migrate without the source tree on disk.
func RunEmbedded(ctx context.Context, db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)
	if err := Run(ctx, db, embeddedDir, command, args...); err != nil {
		return fmt.Errorf("embedded migrations: %w", err)
	}
	return nil
}
