package repository

import (
	"Linkboard-Backend/internal/domain"
	"context"
	"errors"
)

var (
	ErrSlugNotFound = errors.New("slug not found")
	ErrSlugExists   = errors.New("slug already exists")
	ErrListNotFound = errors.New("list not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Storage абстракция над хранилищем; реализации - postgres и in-memory
// для тестов. Атомарность инкремента счетчика и проверка уникальности
// slug'ов опираются на гарантии самого хранилища.
type Storage interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Slug namespace: проверка занятости по всем трем типам сущностей
	// (case-sensitive, используется только при создании)
	SlugTaken(ctx context.Context, slug string) (bool, error)

	// Affiliate link methods
	CreateLink(ctx context.Context, link *domain.AffiliateLink) error
	GetLinkBySlug(ctx context.Context, slug string) (*domain.AffiliateLink, error)
	FindLinkBySlugFold(ctx context.Context, slug string) (*domain.AffiliateLink, error)
	ListUserLinks(ctx context.Context, userID int64) ([]*domain.AffiliateLink, error)
	DeactivateLink(ctx context.Context, userID int64, slug string) error
	IncrementLinkClicks(ctx context.Context, linkID int64) error

	// Curated list methods
	CreateList(ctx context.Context, list *domain.CuratedList) error
	GetListByID(ctx context.Context, id int64) (*domain.CuratedList, error)
	GetListBySlug(ctx context.Context, slug string) (*domain.CuratedList, error)
	FindListBySlugFold(ctx context.Context, slug string) (*domain.CuratedList, error)
	IncrementListClicks(ctx context.Context, listID int64) error

	// Custom link methods
	CreateCustomLink(ctx context.Context, link *domain.CustomLink) error

	// Click methods (append-only)
	CreateClick(ctx context.Context, click *domain.Click) error
	CreateListClick(ctx context.Context, click *domain.ListClick) error
	GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error)
	GetClicksByBrowser(ctx context.Context, linkID int64) (map[string]int64, error)
}
