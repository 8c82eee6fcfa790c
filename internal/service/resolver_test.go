package service

import (
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository"
	"Linkboard-Backend/internal/repository/memory"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func newResolverFixture(t *testing.T) (*memory.MemStorage, *ResolverService) {
	t.Helper()
	storage := memory.New()
	return storage, NewResolver(storage, nil, zap.NewNop())
}

func TestResolver_Full_ExactLinkWins(t *testing.T) {
	storage, resolver := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateLink(ctx, &domain.AffiliateLink{
		UserID: 1, TargetURL: "https://example.com/a", Slug: "abc123", IsActive: true,
	}))

	res, err := resolver.Resolve(ctx, "abc123", PolicyFull)
	require.NoError(t, err)
	assert.Equal(t, EntityAffiliateLink, res.Type)
	assert.True(t, res.CaseSensitive)
	require.NotNil(t, res.Link)
	assert.Equal(t, "abc123", res.Link.Slug)
}

func TestResolver_Full_ExactListAfterLinks(t *testing.T) {
	storage, resolver := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateList(ctx, &domain.CuratedList{
		UserID: 1, Title: "Picks", Slug: "picks",
	}))

	res, err := resolver.Resolve(ctx, "picks", PolicyFull)
	require.NoError(t, err)
	assert.Equal(t, EntityCuratedList, res.Type)
	assert.True(t, res.CaseSensitive)
	require.NotNil(t, res.List)
	assert.Equal(t, "picks", res.List.Slug)
}

func TestResolver_Full_ListShortSlug(t *testing.T) {
	storage, resolver := newResolverFixture(t)
	ctx := context.Background()

	shortSlug := "pk"
	require.NoError(t, storage.CreateList(ctx, &domain.CuratedList{
		UserID: 1, Title: "Picks", Slug: "picks", ShortSlug: &shortSlug,
	}))

	res, err := resolver.Resolve(ctx, "pk", PolicyFull)
	require.NoError(t, err)
	assert.Equal(t, EntityCuratedList, res.Type)
	assert.True(t, res.CaseSensitive)
}

func TestResolver_Full_CaseInsensitiveLinkFallback(t *testing.T) {
	storage, resolver := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateLink(ctx, &domain.AffiliateLink{
		UserID: 1, TargetURL: "https://example.com/a", Slug: "AbC123", IsActive: true,
	}))

	res, err := resolver.Resolve(ctx, "abc123", PolicyFull)
	require.NoError(t, err)
	assert.Equal(t, EntityAffiliateLink, res.Type)
	assert.False(t, res.CaseSensitive, "fold match must be flagged as case-insensitive")
}

func TestResolver_Full_ExactMatchBeatsFoldMatch(t *testing.T) {
	storage, resolver := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateLink(ctx, &domain.AffiliateLink{
		UserID: 1, TargetURL: "https://example.com/upper", Slug: "SLUG", IsActive: true,
	}))
	require.NoError(t, storage.CreateLink(ctx, &domain.AffiliateLink{
		UserID: 1, TargetURL: "https://example.com/lower", Slug: "slug", IsActive: true,
	}))

	res, err := resolver.Resolve(ctx, "slug", PolicyFull)
	require.NoError(t, err)
	assert.True(t, res.CaseSensitive)
	assert.Equal(t, "https://example.com/lower", res.Link.TargetURL)
}

func TestResolver_Full_CaseInsensitiveListFallbackLast(t *testing.T) {
	storage, resolver := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateList(ctx, &domain.CuratedList{
		UserID: 1, Title: "Picks", Slug: "PICKS",
	}))

	res, err := resolver.Resolve(ctx, "picks", PolicyFull)
	require.NoError(t, err)
	assert.Equal(t, EntityCuratedList, res.Type)
	assert.False(t, res.CaseSensitive)
}

func TestResolver_Full_NotFound(t *testing.T) {
	_, resolver := newResolverFixture(t)

	_, err := resolver.Resolve(context.Background(), "missing", PolicyFull)
	assert.ErrorIs(t, err, repository.ErrSlugNotFound)
}

func TestResolver_Full_ReturnsInactiveLink(t *testing.T) {
	storage, resolver := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateLink(ctx, &domain.AffiliateLink{
		UserID: 1, TargetURL: "https://example.com/a", Slug: "gone", IsActive: false,
	}))

	// Resolution is a pure lookup: activity is the caller's concern
	res, err := resolver.Resolve(ctx, "gone", PolicyFull)
	require.NoError(t, err)
	assert.False(t, res.Link.IsActive)
}

func TestResolver_Strict_IgnoresLists(t *testing.T) {
	storage, resolver := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateList(ctx, &domain.CuratedList{
		UserID: 1, Title: "Picks", Slug: "picks",
	}))

	_, err := resolver.Resolve(ctx, "picks", PolicyStrict)
	assert.ErrorIs(t, err, repository.ErrSlugNotFound)
}

func TestResolver_Strict_IgnoresCaseFold(t *testing.T) {
	storage, resolver := newResolverFixture(t)
	ctx := context.Background()

	require.NoError(t, storage.CreateLink(ctx, &domain.AffiliateLink{
		UserID: 1, TargetURL: "https://example.com/a", Slug: "AbC123", IsActive: true,
	}))

	_, err := resolver.Resolve(ctx, "abc123", PolicyStrict)
	assert.ErrorIs(t, err, repository.ErrSlugNotFound)
}

func TestResolver_UnknownPolicy(t *testing.T) {
	_, resolver := newResolverFixture(t)

	_, err := resolver.Resolve(context.Background(), "abc123", Policy(42))
	assert.Error(t, err)
}
