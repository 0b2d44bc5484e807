// Command judge-migrate applies or rolls back the catalog schema using
// goose, driven entirely off embedded SQL files.
package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/gradeflow/judge-engine/internal/catalog"
	"github.com/gradeflow/judge-engine/internal/cfg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: judge-migrate <up|down|status|version>")
	}

	config, err := cfg.Parse()
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	db, err := sql.Open("pgx", config.PostgresConnectionString)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(catalog.Migrations)
	goose.SetTableName("_migrations")

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	return goose.Run(os.Args[1], db, catalog.MigrationsDir)
}
