package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"studiodesk/internal/domain"
	"studiodesk/internal/repository"
)

type Options struct {
	// Quiet silences the gorm SQL logger.
	Quiet bool
}

func Connect(dsn string, opts ...Options) (*gorm.DB, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	cfg := &gorm.Config{}
	if o.Quiet {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	if isPostgres(dsn) {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Println("Using SQLite for local development:", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// one connection: sqlite has a single writer and in-memory databases
	// live only as long as their connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Migrate creates the schema and seeds the enum lookup table with the
// built-in values. Existing enum rows are left untouched.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(repository.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, name := range []string{domain.EnumBookingStatus, domain.EnumShootType} {
		values := domain.DefaultEnumValues(name)
		rows := make([]domain.EnumValue, 0, len(values))
		for i, v := range values {
			rows = append(rows, domain.EnumValue{EnumName: name, Value: v, Position: i})
		}
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&rows).Error
		if err != nil {
			return fmt.Errorf("seed enum %s: %w", name, err)
		}
	}

	log.Printf("database migrated")
	return nil
}
