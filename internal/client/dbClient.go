package client

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"payme-click-gateway/internal/model"
)

// InitDB opens the order store. A DATABASE_URL selects MySQL; an empty one
// falls back to a local sqlite file for development.
func InitDB(databaseURL string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if databaseURL != "" {
		db, err = gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open("gateway.db"), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.Order{}); err != nil {
		return nil, fmt.Errorf("migrate orders: %w", err)
	}

	return db, nil
}
