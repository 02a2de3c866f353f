package database

import (
	"fmt"

	"github.com/binamralamsal/quiz-score-maintainer/internal/config"
	"github.com/binamralamsal/quiz-score-maintainer/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	// TranslateError maps unique-constraint violations to
	// gorm.ErrDuplicatedKey, which the ingestion path relies on to turn
	// insert races into duplicate results.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Participant{},
		&models.Quiz{},
		&models.Score{},
	)
}
