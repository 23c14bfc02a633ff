package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/utils"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*
var dbMigrations embed.FS

func Migrate(c config.PostgresConfig) error {
	migrations := migrate.EmbedFileSystemMigrationSource{
		FileSystem: dbMigrations,
		Root:       "migrations",
	}

	db := ConnectToDatabase(c)
	defer utils.PanicOnError(db.Close, "failed to close database connection")

	logging.Logger.Infof("Applying migrations...")

	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %v", err)
	}

	logging.Logger.Infof("Applied %d migrations", n)
	return nil
}

func ConnectToDatabase(c config.PostgresConfig) *sql.DB {
	logging.Logger.Infof("Connecting to database %s via %s:%d",
		c.Database,
		c.Host,
		c.Port)

	connectionString := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host,
		c.Port,
		c.Database,
		c.Username,
		c.Password,
		c.SslMode)

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		logging.Logger.Fatalf("failed to connect to database: %v", err)
	}

	return db
}
