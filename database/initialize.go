package database

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path"

	"liist/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

func InitializeDatabase(cfg *config.Config) *sqlx.DB {
	dbConn := db.GetDBConnection(db.DatabaseConfig{
		DRIVER:   cfg.DBDriver,
		HOST:     cfg.DBHost,
		PORT:     cfg.DBPort,
		USER:     cfg.DBUser,
		PASSWORD: cfg.DBPassword,
		DB:       cfg.DBName,
	})

	goose.SetLogger(gooseLogger{})
	if err := Migrate(context.Background(), dbConn); err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database initialized successfully", zap.String("driver", cfg.DBDriver))
	return dbConn
}

// Migrate applies the embedded migrations for the connection's driver.
func Migrate(ctx context.Context, dbConn *sqlx.DB) error {
	dialect, err := dialectFor(dbConn.DriverName())
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, dbConn.DB, path.Join("migrations", dialect))
}

// CreateMigration writes a new timestamped SQL migration skeleton into dir.
func CreateMigration(dir, name string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	return goose.Create(nil, dir, name, "sql")
}

func dialectFor(driver string) (string, error) {
	switch driver {
	case "sqlite3":
		return "sqlite3", nil
	case "postgres":
		return "postgres", nil
	}
	return "", fmt.Errorf("no migrations for driver %q", driver)
}

// gooseLogger routes goose output through the service logger
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.Info(fmt.Sprintf(format, v...))
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}
