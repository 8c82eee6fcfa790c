package service

import (
	"Linkboard-Backend/internal/cache"
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Policy политика разрешения slug'а. Публичный редирект исторически ищет
// только среди партнерских ссылок (строго, без fallback'ов), а админский
// check-slug применяет полный четырехшаговый порядок. Расхождение
// сознательное; выбор политики явный, вместо дублирования запросов по
// месту вызова.
type Policy int

const (
	// PolicyStrict единственный регистрозависимый точечный поиск по
	// партнерским ссылкам (публичный /{slug})
	PolicyStrict Policy = iota
	// PolicyFull полный порядок: ссылки строго, подборки строго, ссылки
	// без учета регистра, подборки без учета регистра
	PolicyFull
)

// EntityType тип сущности, владеющей slug'ом
type EntityType string

const (
	EntityAffiliateLink EntityType = "affiliate-link"
	EntityCuratedList   EntityType = "curated-list"
)

// Resolution результат разрешения slug'а. Неактивная сущность тоже
// возвращается как найденная - решение за вызывающим кодом.
type Resolution struct {
	Type          EntityType
	Link          *domain.AffiliateLink
	List          *domain.CuratedList
	CaseSensitive bool
}

// ResolverService отображает входящий slug на владеющую им сущность.
// Чистое чтение, без побочных эффектов.
type ResolverService struct {
	storage repository.Storage
	cache   *cache.ResolutionCache
	log     *zap.Logger
}

func NewResolver(storage repository.Storage, resolutionCache *cache.ResolutionCache, log *zap.Logger) *ResolverService {
	return &ResolverService{
		storage: storage,
		cache:   resolutionCache,
		log:     log,
	}
}

// Resolve разрешает slug согласно политике. Возвращает
// repository.ErrSlugNotFound, если slug никому не принадлежит.
func (s *ResolverService) Resolve(ctx context.Context, slug string, policy Policy) (*Resolution, error) {
	switch policy {
	case PolicyStrict:
		return s.resolveStrict(ctx, slug)
	case PolicyFull:
		return s.resolveFull(ctx, slug)
	default:
		return nil, fmt.Errorf("unknown resolution policy: %d", policy)
	}
}

func (s *ResolverService) resolveStrict(ctx context.Context, slug string) (*Resolution, error) {
	if link, ok := s.cache.GetLink(ctx, slug); ok {
		s.log.Debug("slug resolved from cache", zap.String("slug", slug))
		return &Resolution{Type: EntityAffiliateLink, Link: link, CaseSensitive: true}, nil
	}

	link, err := s.storage.GetLinkBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrSlugNotFound) {
			return nil, repository.ErrSlugNotFound
		}
		return nil, fmt.Errorf("failed to resolve slug: %w", err)
	}

	s.cache.SetLink(ctx, link)

	return &Resolution{Type: EntityAffiliateLink, Link: link, CaseSensitive: true}, nil
}

// resolveFull применяет четырехшаговый порядок с коротким замыканием на
// первом совпадении. Регистронезависимые шаги - только fallback для
// чтения, уникальность при создании они не решают.
func (s *ResolverService) resolveFull(ctx context.Context, slug string) (*Resolution, error) {
	// 1. Партнерские ссылки, строго
	link, err := s.storage.GetLinkBySlug(ctx, slug)
	if err == nil {
		return &Resolution{Type: EntityAffiliateLink, Link: link, CaseSensitive: true}, nil
	}
	if !errors.Is(err, repository.ErrSlugNotFound) {
		return nil, fmt.Errorf("failed to resolve slug: %w", err)
	}

	// 2. Подборки (основной или короткий slug), строго
	list, err := s.storage.GetListBySlug(ctx, slug)
	if err == nil {
		return &Resolution{Type: EntityCuratedList, List: list, CaseSensitive: true}, nil
	}
	if !errors.Is(err, repository.ErrSlugNotFound) {
		return nil, fmt.Errorf("failed to resolve slug: %w", err)
	}

	// 3. Партнерские ссылки, без учета регистра
	link, err = s.storage.FindLinkBySlugFold(ctx, slug)
	if err == nil {
		return &Resolution{Type: EntityAffiliateLink, Link: link, CaseSensitive: false}, nil
	}
	if !errors.Is(err, repository.ErrSlugNotFound) {
		return nil, fmt.Errorf("failed to resolve slug: %w", err)
	}

	// 4. Подборки, без учета регистра
	list, err = s.storage.FindListBySlugFold(ctx, slug)
	if err == nil {
		return &Resolution{Type: EntityCuratedList, List: list, CaseSensitive: false}, nil
	}
	if !errors.Is(err, repository.ErrSlugNotFound) {
		return nil, fmt.Errorf("failed to resolve slug: %w", err)
	}

	return nil, repository.ErrSlugNotFound
}
