package postgres

import (
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- User Methods ---

// CreateUser создает нового пользователя админки
func (s *PostgresStorage) CreateUser(ctx context.Context, user *domain.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		s.log.Error("failed to check user existence", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to check user: %w", err)
	}
	if count > 0 {
		return repository.ErrUserExists
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		s.log.Error("failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("created new user", zap.Int64("user_id", user.ID))
	return nil
}

// GetUserByEmail получает пользователя по email
func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// --- Slug Namespace ---

// SlugTaken проверяет занятость slug'а по всем трем таблицам сущностей.
// Сравнение строго регистрозависимое - только так решается уникальность.
func (s *PostgresStorage) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&domain.AffiliateLink{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check affiliate link slug", zap.String("slug", slug), zap.Error(err))
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	err = s.db.WithContext(ctx).Model(&domain.CuratedList{}).
		Where("slug = ? OR short_slug = ?", slug, slug).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check curated list slug", zap.String("slug", slug), zap.Error(err))
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	err = s.db.WithContext(ctx).Model(&domain.CustomLink{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check custom link slug", zap.String("slug", slug), zap.Error(err))
		return false, fmt.Errorf("failed to check slug: %w", err)
	}

	return count > 0, nil
}

// --- Affiliate Link Methods ---

// CreateLink сохраняет новую партнерскую ссылку
func (s *PostgresStorage) CreateLink(ctx context.Context, link *domain.AffiliateLink) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrSlugExists
		}
		s.log.Error("failed to create affiliate link", zap.String("slug", link.Slug), zap.Error(err))
		return fmt.Errorf("failed to create link: %w", err)
	}

	s.log.Info("created affiliate link", zap.String("slug", link.Slug), zap.Int64("user_id", link.UserID))
	return nil
}

// GetLinkBySlug точечный регистрозависимый поиск ссылки по slug.
// Неактивные ссылки тоже возвращаются - решение принимает вызывающий код.
func (s *PostgresStorage) GetLinkBySlug(ctx context.Context, slug string) (*domain.AffiliateLink, error) {
	var link domain.AffiliateLink

	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSlugNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// FindLinkBySlugFold регистронезависимый fallback-поиск (только чтение)
func (s *PostgresStorage) FindLinkBySlugFold(ctx context.Context, slug string) (*domain.AffiliateLink, error) {
	var link domain.AffiliateLink

	err := s.db.WithContext(ctx).Where("LOWER(slug) = LOWER(?)", slug).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSlugNotFound
	}
	if err != nil {
		s.log.Error("failed to find link case-insensitively", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to find link: %w", err)
	}

	return &link, nil
}

// ListUserLinks возвращает список ссылок пользователя
func (s *PostgresStorage) ListUserLinks(ctx context.Context, userID int64) ([]*domain.AffiliateLink, error) {
	var links []*domain.AffiliateLink

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&links).Error
	if err != nil {
		s.log.Error("failed to list user links", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list user links: %w", err)
	}

	return links, nil
}

// DeactivateLink мягкое удаление: помечает ссылку неактивной
func (s *PostgresStorage) DeactivateLink(ctx context.Context, userID int64, slug string) error {
	result := s.db.WithContext(ctx).Model(&domain.AffiliateLink{}).
		Where("slug = ? AND user_id = ?", slug, userID).
		Update("is_active", false)
	if result.Error != nil {
		s.log.Error("failed to deactivate link", zap.String("slug", slug), zap.Error(result.Error))
		return fmt.Errorf("failed to deactivate link: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrSlugNotFound
	}

	s.log.Info("deactivated link", zap.String("slug", slug), zap.Int64("user_id", userID))
	return nil
}

// IncrementLinkClicks атомарно увеличивает счетчик кликов ссылки
func (s *PostgresStorage) IncrementLinkClicks(ctx context.Context, linkID int64) error {
	result := s.db.WithContext(ctx).Model(&domain.AffiliateLink{}).
		Where("id = ?", linkID).
		Update("click_count", gorm.Expr("click_count + 1"))
	if result.Error != nil {
		s.log.Error("failed to increment link clicks", zap.Int64("link_id", linkID), zap.Error(result.Error))
		return fmt.Errorf("failed to increment click count: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrSlugNotFound
	}

	return nil
}

// --- Curated List Methods ---

// CreateList сохраняет новую подборку вместе с ее ссылками
func (s *PostgresStorage) CreateList(ctx context.Context, list *domain.CuratedList) error {
	if err := s.db.WithContext(ctx).Create(list).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrSlugExists
		}
		s.log.Error("failed to create curated list", zap.String("slug", list.Slug), zap.Error(err))
		return fmt.Errorf("failed to create list: %w", err)
	}

	s.log.Info("created curated list", zap.String("slug", list.Slug), zap.Int64("user_id", list.UserID))
	return nil
}

// GetListByID получает подборку по идентификатору
func (s *PostgresStorage) GetListByID(ctx context.Context, id int64) (*domain.CuratedList, error) {
	var list domain.CuratedList

	err := s.db.WithContext(ctx).Preload("URLs").First(&list, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrListNotFound
	}
	if err != nil {
		s.log.Error("failed to get list", zap.Int64("list_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	return &list, nil
}

// GetListBySlug регистрозависимый поиск подборки по основному или
// дополнительному короткому slug'у
func (s *PostgresStorage) GetListBySlug(ctx context.Context, slug string) (*domain.CuratedList, error) {
	var list domain.CuratedList

	err := s.db.WithContext(ctx).Where("slug = ? OR short_slug = ?", slug, slug).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSlugNotFound
	}
	if err != nil {
		s.log.Error("failed to get list by slug", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	return &list, nil
}

// FindListBySlugFold регистронезависимый fallback-поиск подборки
func (s *PostgresStorage) FindListBySlugFold(ctx context.Context, slug string) (*domain.CuratedList, error) {
	var list domain.CuratedList

	err := s.db.WithContext(ctx).
		Where("LOWER(slug) = LOWER(?) OR LOWER(short_slug) = LOWER(?)", slug, slug).
		First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSlugNotFound
	}
	if err != nil {
		s.log.Error("failed to find list case-insensitively", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to find list: %w", err)
	}

	return &list, nil
}

// IncrementListClicks атомарно увеличивает счетчик кликов подборки
func (s *PostgresStorage) IncrementListClicks(ctx context.Context, listID int64) error {
	result := s.db.WithContext(ctx).Model(&domain.CuratedList{}).
		Where("id = ?", listID).
		Update("click_count", gorm.Expr("click_count + 1"))
	if result.Error != nil {
		s.log.Error("failed to increment list clicks", zap.Int64("list_id", listID), zap.Error(result.Error))
		return fmt.Errorf("failed to increment click count: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrListNotFound
	}

	return nil
}

// --- Custom Link Methods ---

// CreateCustomLink сохраняет новую произвольную ссылку
func (s *PostgresStorage) CreateCustomLink(ctx context.Context, link *domain.CustomLink) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrSlugExists
		}
		s.log.Error("failed to create custom link", zap.String("slug", link.Slug), zap.Error(err))
		return fmt.Errorf("failed to create custom link: %w", err)
	}

	s.log.Info("created custom link", zap.String("slug", link.Slug), zap.Int64("user_id", link.UserID))
	return nil
}

// --- Click Methods ---

// CreateClick записывает неизменяемое событие клика
func (s *PostgresStorage) CreateClick(ctx context.Context, click *domain.Click) error {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		s.log.Error("failed to create click record", zap.Int64("link_id", click.LinkID), zap.Error(err))
		return fmt.Errorf("failed to create click: %w", err)
	}

	return nil
}

// CreateListClick записывает событие клика в рамках подборки
func (s *PostgresStorage) CreateListClick(ctx context.Context, click *domain.ListClick) error {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		s.log.Error("failed to create list click record", zap.Int64("list_id", click.ListID), zap.Error(err))
		return fmt.Errorf("failed to create list click: %w", err)
	}

	return nil
}

// GetClicksByDevice возвращает распределение кликов по типам устройств
func (s *PostgresStorage) GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error) {
	return s.countClicksGrouped(ctx, linkID, "device")
}

// GetClicksByBrowser возвращает распределение кликов по браузерам
func (s *PostgresStorage) GetClicksByBrowser(ctx context.Context, linkID int64) (map[string]int64, error) {
	return s.countClicksGrouped(ctx, linkID, "browser")
}

func (s *PostgresStorage) countClicksGrouped(ctx context.Context, linkID int64, column string) (map[string]int64, error) {
	var results []struct {
		Value string `gorm:"column:value"`
		Count int64  `gorm:"column:count"`
	}

	err := s.db.WithContext(ctx).
		Model(&domain.Click{}).
		Select(fmt.Sprintf("COALESCE(%s, 'unknown') as value, count(*) as count", column)).
		Where("link_id = ?", linkID).
		Group(column).
		Find(&results).Error
	if err != nil {
		s.log.Error("failed to group clicks", zap.Int64("link_id", linkID), zap.String("column", column), zap.Error(err))
		return nil, fmt.Errorf("failed to group clicks by %s: %w", column, err)
	}

	grouped := make(map[string]int64)
	for _, result := range results {
		grouped[result.Value] = result.Count
	}

	return grouped, nil
}
