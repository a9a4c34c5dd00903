package db

import (
	"log"
	"time"

	"github.com/langhaus/website-backend/internal/config"
	"github.com/langhaus/website-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Admin{},
		&models.HomeContent{},
		&models.GalleryImage{},
		&models.Logo{},
		&models.OpeningTime{},
		&models.MenuCard{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Newsletter{},
		&models.NewsletterSection{},
		&models.NewsletterSubscriber{},
		&models.ContactRequest{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return db
}
