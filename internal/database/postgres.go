package database

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"store-directory/internal/config"
	storemodel "store-directory/internal/store/model"
	usermodel "store-directory/internal/user/model"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := cfg.Database.DSN()

	logMode := gormlogger.Warn
	if cfg.Server.Environment != "production" {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &Database{DB: db}, nil
}

// migrate applies the schema. The text-search column and its index are
// plain SQL because gorm has no notion of generated tsvector columns.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&usermodel.User{}, &storemodel.Store{}); err != nil {
		return err
	}

	statements := []string{
		`ALTER TABLE stores ADD COLUMN IF NOT EXISTS search_vector tsvector
			GENERATED ALWAYS AS (
				to_tsvector('english', coalesce(name, '') || ' ' || coalesce(description, ''))
			) STORED`,
		`CREATE INDEX IF NOT EXISTS idx_stores_search_vector ON stores USING gin(search_vector)`,
		`CREATE INDEX IF NOT EXISTS idx_stores_tags ON stores USING gin(tags)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) Health() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
