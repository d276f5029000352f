package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the audit database and runs migrations. The session
// funnel itself lives in Redis; Postgres only carries the append-only
// admin audit trail.
func Connect(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&auditEventModel{}); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}
