package database

import (
	"fmt"

	"github.com/imaijo201-star/real-estate-mg/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB for driver ("postgres" or "sqlite").
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers (PgBouncer, Supabase).
func Open(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "", "postgres":
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{})
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		// SQLite allows one writer; a single connection keeps transactions
		// and ":memory:" databases consistent.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}
}

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	models := []interface{}{&domain.User{}, &domain.Property{}, &domain.AgentInfo{}, &domain.Image{}}
	for _, ext := range domain.ExtensionModels() {
		models = append(models, ext)
	}
	return models
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
