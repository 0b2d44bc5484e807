package utils

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/gradeflow/judge-engine/internal/catalog"
	"github.com/gradeflow/judge-engine/internal/logger"
)

const trackingTable = "_migrations"

// CheckMigrationVersion verifies the catalog schema is at least at
// expectedMigration, so the service refuses to serve traffic against a
// database it hasn't been migrated for.
func CheckMigrationVersion(ctx context.Context, log logger.Logger, connectionString string, expectedMigration int64) error {
	db, err := sql.Open("pgx", connectionString)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if dbErr := db.Close(); dbErr != nil {
			log.Error(ctx, "failed to close database connection checking migration version")
		}
	}()

	goose.SetBaseFS(catalog.Migrations)
	goose.SetTableName(trackingTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get database version: %w", err)
	}

	// Allow higher versions to account for migrations applied ahead of a
	// rolling deploy.
	if version < expectedMigration {
		return fmt.Errorf("database version %d is less than expected %d", version, expectedMigration)
	}

	return nil
}
