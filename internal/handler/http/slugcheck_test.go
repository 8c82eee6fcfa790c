package http

import (
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository/memory"
	"Linkboard-Backend/internal/service"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func newSlugCheckFixture(t *testing.T) (*memory.MemStorage, *SlugCheckHandler) {
	t.Helper()
	storage := memory.New()
	resolver := service.NewResolver(storage, nil, zap.NewNop())
	return storage, NewSlugCheckHandler(resolver, zap.NewNop())
}

func checkSlug(t *testing.T, handler *SlugCheckHandler, slug string) (int, SlugCheckResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/check-slug/"+slug, nil)
	rec := httptest.NewRecorder()

	handler.CheckSlug(rec, req)

	var resp SlugCheckResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func TestCheckSlug_Free(t *testing.T) {
	_, handler := newSlugCheckFixture(t)

	code, resp := checkSlug(t, handler, "free42")
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Type)
}

func TestCheckSlug_AffiliateLink(t *testing.T) {
	storage, handler := newSlugCheckFixture(t)
	require.NoError(t, storage.CreateLink(context.Background(), &domain.AffiliateLink{
		UserID: 1, TargetURL: "https://example.com", Slug: "abc123", IsActive: true,
	}))

	code, resp := checkSlug(t, handler, "abc123")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Found)
	require.NotNil(t, resp.Type)
	assert.Equal(t, "affiliate-link", *resp.Type)
	require.NotNil(t, resp.CaseSensitive)
	assert.True(t, *resp.CaseSensitive)
	assert.NotNil(t, resp.Data)
}

func TestCheckSlug_CuratedListByShortSlug(t *testing.T) {
	storage, handler := newSlugCheckFixture(t)
	shortSlug := "pk"
	require.NoError(t, storage.CreateList(context.Background(), &domain.CuratedList{
		UserID: 1, Title: "Picks", Slug: "picks", ShortSlug: &shortSlug,
	}))

	code, resp := checkSlug(t, handler, "pk")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Found)
	require.NotNil(t, resp.Type)
	assert.Equal(t, "curated-list", *resp.Type)
}

func TestCheckSlug_CaseInsensitiveFallback(t *testing.T) {
	storage, handler := newSlugCheckFixture(t)
	require.NoError(t, storage.CreateLink(context.Background(), &domain.AffiliateLink{
		UserID: 1, TargetURL: "https://example.com", Slug: "AbC123", IsActive: true,
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/check-slug/abc123", nil)
	rec := httptest.NewRecorder()
	handler.CheckSlug(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// Raw body check: false must not be dropped from the response
	assert.Contains(t, rec.Body.String(), `"caseSensitive":false`)

	var resp SlugCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	require.NotNil(t, resp.CaseSensitive)
	assert.False(t, *resp.CaseSensitive, "fold match must be reported as case-insensitive")
}

func TestCheckSlug_FreeSlugOmitsCaseSensitive(t *testing.T) {
	_, handler := newSlugCheckFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/check-slug/free42", nil)
	rec := httptest.NewRecorder()
	handler.CheckSlug(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "caseSensitive")
}

func TestCheckSlug_EmptySlug(t *testing.T) {
	_, handler := newSlugCheckFixture(t)

	code, _ := checkSlug(t, handler, "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCheckSlug_MethodNotAllowed(t *testing.T) {
	_, handler := newSlugCheckFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/check-slug/abc123", nil)
	rec := httptest.NewRecorder()

	handler.CheckSlug(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
