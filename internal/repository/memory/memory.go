package memory

import (
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStorage потокобезопасная in-memory реализация Storage для тестов
type MemStorage struct {
	mu           sync.RWMutex
	users        map[string]*domain.User
	links        map[string]*domain.AffiliateLink
	lists        map[int64]*domain.CuratedList
	customLinks  map[string]*domain.CustomLink
	clicks       []*domain.Click
	listClicks   []*domain.ListClick
	userCounter  int64
	linkCounter  int64
	listCounter  int64
	clickCounter int64
}

func New() *MemStorage {
	return &MemStorage{
		users:       make(map[string]*domain.User),
		links:       make(map[string]*domain.AffiliateLink),
		lists:       make(map[int64]*domain.CuratedList),
		customLinks: make(map[string]*domain.CustomLink),
	}
}

// --- User Methods ---

func (s *MemStorage) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return repository.ErrUserExists
	}

	s.userCounter++
	user.ID = s.userCounter
	user.CreatedAt = time.Now()
	s.users[user.Email] = user
	return nil
}

func (s *MemStorage) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok || !user.IsActive {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// --- Slug Namespace ---

func (s *MemStorage) SlugTaken(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTakenLocked(slug), nil
}

func (s *MemStorage) slugTakenLocked(slug string) bool {
	if _, exists := s.links[slug]; exists {
		return true
	}
	if _, exists := s.customLinks[slug]; exists {
		return true
	}
	for _, list := range s.lists {
		if list.Slug == slug {
			return true
		}
		if list.ShortSlug != nil && *list.ShortSlug == slug {
			return true
		}
	}
	return false
}

// --- Affiliate Link Methods ---

func (s *MemStorage) CreateLink(_ context.Context, link *domain.AffiliateLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTakenLocked(link.Slug) {
		return repository.ErrSlugExists
	}

	s.linkCounter++
	link.ID = s.linkCounter
	link.CreatedAt = time.Now()
	s.links[link.Slug] = link
	return nil
}

func (s *MemStorage) GetLinkBySlug(_ context.Context, slug string) (*domain.AffiliateLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[slug]
	if !ok {
		return nil, repository.ErrSlugNotFound
	}
	return link, nil
}

func (s *MemStorage) FindLinkBySlugFold(_ context.Context, slug string) (*domain.AffiliateLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for stored, link := range s.links {
		if strings.EqualFold(stored, slug) {
			return link, nil
		}
	}
	return nil, repository.ErrSlugNotFound
}

func (s *MemStorage) ListUserLinks(_ context.Context, userID int64) ([]*domain.AffiliateLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var userLinks []*domain.AffiliateLink
	for _, link := range s.links {
		if link.UserID == userID {
			userLinks = append(userLinks, link)
		}
	}
	sort.Slice(userLinks, func(i, j int) bool {
		return userLinks[i].CreatedAt.After(userLinks[j].CreatedAt)
	})
	return userLinks, nil
}

func (s *MemStorage) DeactivateLink(_ context.Context, userID int64, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[slug]
	if !ok || link.UserID != userID {
		return repository.ErrSlugNotFound
	}
	link.IsActive = false
	return nil
}

func (s *MemStorage) IncrementLinkClicks(_ context.Context, linkID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, link := range s.links {
		if link.ID == linkID {
			link.ClickCount++
			return nil
		}
	}
	return repository.ErrSlugNotFound
}

// --- Curated List Methods ---

func (s *MemStorage) CreateList(_ context.Context, list *domain.CuratedList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTakenLocked(list.Slug) {
		return repository.ErrSlugExists
	}
	if list.ShortSlug != nil && s.slugTakenLocked(*list.ShortSlug) {
		return repository.ErrSlugExists
	}

	s.listCounter++
	list.ID = s.listCounter
	list.CreatedAt = time.Now()
	for i := range list.URLs {
		s.clickCounter++
		list.URLs[i].ID = s.clickCounter
		list.URLs[i].ListID = list.ID
	}
	s.lists[list.ID] = list
	return nil
}

func (s *MemStorage) GetListByID(_ context.Context, id int64) (*domain.CuratedList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[id]
	if !ok {
		return nil, repository.ErrListNotFound
	}
	return list, nil
}

func (s *MemStorage) GetListBySlug(_ context.Context, slug string) (*domain.CuratedList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, list := range s.lists {
		if list.Slug == slug {
			return list, nil
		}
		if list.ShortSlug != nil && *list.ShortSlug == slug {
			return list, nil
		}
	}
	return nil, repository.ErrSlugNotFound
}

func (s *MemStorage) FindListBySlugFold(_ context.Context, slug string) (*domain.CuratedList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, list := range s.lists {
		if strings.EqualFold(list.Slug, slug) {
			return list, nil
		}
		if list.ShortSlug != nil && strings.EqualFold(*list.ShortSlug, slug) {
			return list, nil
		}
	}
	return nil, repository.ErrSlugNotFound
}

func (s *MemStorage) IncrementListClicks(_ context.Context, listID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[listID]
	if !ok {
		return repository.ErrListNotFound
	}
	list.ClickCount++
	return nil
}

// --- Custom Link Methods ---

func (s *MemStorage) CreateCustomLink(_ context.Context, link *domain.CustomLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTakenLocked(link.Slug) {
		return repository.ErrSlugExists
	}

	s.linkCounter++
	link.ID = s.linkCounter
	link.CreatedAt = time.Now()
	s.customLinks[link.Slug] = link
	return nil
}

// --- Click Methods ---

func (s *MemStorage) CreateClick(_ context.Context, click *domain.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clickCounter++
	click.ID = s.clickCounter
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}
	s.clicks = append(s.clicks, click)
	return nil
}

func (s *MemStorage) CreateListClick(_ context.Context, click *domain.ListClick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clickCounter++
	click.ID = s.clickCounter
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}
	s.listClicks = append(s.listClicks, click)
	return nil
}

func (s *MemStorage) GetClicksByDevice(_ context.Context, linkID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grouped := make(map[string]int64)
	for _, click := range s.clicks {
		if click.LinkID != linkID {
			continue
		}
		value := "unknown"
		if click.Device != nil {
			value = *click.Device
		}
		grouped[value]++
	}
	return grouped, nil
}

func (s *MemStorage) GetClicksByBrowser(_ context.Context, linkID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grouped := make(map[string]int64)
	for _, click := range s.clicks {
		if click.LinkID != linkID {
			continue
		}
		value := "unknown"
		if click.Browser != nil {
			value = *click.Browser
		}
		grouped[value]++
	}
	return grouped, nil
}

// --- Test Helpers ---

// Clicks возвращает копию записанных кликов (для проверок в тестах)
func (s *MemStorage) Clicks() []*domain.Click {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Click, len(s.clicks))
	copy(out, s.clicks)
	return out
}

// ListClicks возвращает копию записанных кликов по подборкам
func (s *MemStorage) ListClicks() []*domain.ListClick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ListClick, len(s.listClicks))
	copy(out, s.listClicks)
	return out
}
