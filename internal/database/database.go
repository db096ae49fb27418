package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// Open connects to the store selected by cfg.Driver and migrates the schema.
func Open(cfg config.Database) (*Database, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return NewDatabase(cfg.Path)
	case config.DriverPostgres:
		return NewPostgresDatabase(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDatabase opens (or creates) a SQLite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	database, err := open(sqlite.Open(sqliteDSN(dbPath)))
	if err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully at %s", dbPath)
	return database, nil
}

// sqliteDSN enables foreign keys through the DSN. A PRAGMA would only
// reach the pooled connection it ran on.
func sqliteDSN(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath + "&_foreign_keys=on"
	}
	return dbPath + "?_foreign_keys=on"
}

func NewPostgresDatabase(dsn string) (*Database, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres driver requires DATABASE_DSN")
	}
	database, err := open(postgres.Open(dsn))
	if err != nil {
		return nil, err
	}
	log.Printf("Database initialized successfully (postgres)")
	return database, nil
}

func open(dialector gorm.Dialector) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.RevokedToken{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
