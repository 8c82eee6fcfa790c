package database

import (
	"Linkboard-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AutoMigrate выполняет автоматические миграции для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Порядок миграций важен из-за внешних ключей
	models := []interface{}{
		&domain.User{},          // Сначала пользователи админки
		&domain.AffiliateLink{}, // Партнерские ссылки
		&domain.CuratedList{},   // Подборки
		&domain.ListURL{},       // Ссылки внутри подборок
		&domain.CustomLink{},    // Произвольные короткие ссылки
		&domain.Click{},         // Клики по партнерским ссылкам
		&domain.ListClick{},     // Клики по подборкам
	}

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		log.Debug("migrating model",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
	}

	log.Info("database auto-migration completed successfully", zap.Int("migrated_models", len(models)))
	return nil
}

// Учетные данные администратора по умолчанию для локальной разработки.
// В production сидирование выключено.
const (
	defaultAdminEmail    = "admin@linkboard.local"
	defaultAdminPassword = "admin123"
)

// SeedData заполняет базу данных начальными данными
func SeedData(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database seeding")

	// Проверяем, есть ли уже пользователи
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		log.Info("users already exist, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default admin password: %w", err)
	}

	admin := domain.User{
		Email:        defaultAdminEmail,
		PasswordHash: string(passwordHash),
		IsActive:     true,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Error("failed to seed default admin user", zap.Error(err))
		return fmt.Errorf("failed to seed default admin user: %w", err)
	}

	log.Info("seeded default admin user", zap.String("email", defaultAdminEmail))
	return nil
}
