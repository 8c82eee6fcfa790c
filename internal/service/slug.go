package service

import (
	"Linkboard-Backend/internal/config"
	"Linkboard-Backend/internal/repository"
	"Linkboard-Backend/pkg/random"
	"context"
	"errors"
	"fmt"
)

// ErrSlugExhausted генератор не нашел свободный slug за отведенное число
// попыток; создание сущности должно завершиться ошибкой, а не затереть
// чужой slug.
var ErrSlugExhausted = errors.New("could not generate a unique slug")

// SlugService отвечает за генерацию slug'ов и дисциплину их уникальности
// во всем пространстве имен (партнерские ссылки, подборки, произвольные
// ссылки).
type SlugService struct {
	storage repository.Storage
	config  *config.Slug
}

func NewSlugService(storage repository.Storage, cfg *config.Slug) *SlugService {
	return &SlugService{
		storage: storage,
		config:  cfg,
	}
}

// Generate подбирает свободный slug. Каждый кандидат проверяется на
// занятость; при исчерпании попыток возвращается ErrSlugExhausted без
// каких-либо записей в хранилище.
func (s *SlugService) Generate(ctx context.Context) (string, error) {
	for i := 0; i < s.config.MaxRetries; i++ {
		candidate, err := random.NewRandomString(s.config.Length)
		if err != nil {
			return "", fmt.Errorf("failed to generate slug candidate: %w", err)
		}

		taken, err := s.storage.SlugTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug uniqueness: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrSlugExhausted
}

// Claim возвращает slug для новой сущности: кастомный slug пользователя
// проходит ту же проверку уникальности (занятый - жесткая ошибка, никакого
// авто-суффикса), пустой - генерируется.
func (s *SlugService) Claim(ctx context.Context, customSlug string) (string, error) {
	if customSlug == "" {
		return s.Generate(ctx)
	}

	taken, err := s.storage.SlugTaken(ctx, customSlug)
	if err != nil {
		return "", fmt.Errorf("failed to check custom slug: %w", err)
	}
	if taken {
		return "", repository.ErrSlugExists
	}

	return customSlug, nil
}
