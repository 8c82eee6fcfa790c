package http

import (
	"Linkboard-Backend/internal/analytics"
	"Linkboard-Backend/internal/config"
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository/memory"
	"Linkboard-Backend/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

type listsFixture struct {
	storage   *memory.MemStorage
	processor *analytics.Processor
	handler   *ListsHandler
}

func newListsFixture(t *testing.T) *listsFixture {
	t.Helper()

	storage := memory.New()
	slugService := service.NewSlugService(storage, &config.Slug{Length: 6, MaxRetries: 10})
	processor := analytics.NewProcessor(storage, nil, nil, zap.NewNop(), analytics.ProcessorConfig{
		WorkerCount:     1,
		BufferSize:      16,
		RetryAttempts:   2,
		RetryDelay:      10 * time.Millisecond,
		ShutdownTimeout: 2 * time.Second,
	})
	require.NoError(t, processor.Start())

	return &listsFixture{
		storage:   storage,
		processor: processor,
		handler:   NewListsHandler(storage, slugService, processor, zap.NewNop()),
	}
}

func (f *listsFixture) seedList(t *testing.T) *domain.CuratedList {
	t.Helper()
	list := &domain.CuratedList{
		UserID: 1,
		Title:  "Picks",
		Slug:   "picks",
		URLs:   []domain.ListURL{{Title: "First", TargetURL: "https://example.com/1"}},
	}
	require.NoError(t, f.storage.CreateList(context.Background(), list))
	return list
}

func postListClick(t *testing.T, f *listsFixture, listID int64, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/lists/%d/click", listID), reader)
	req.Header.Set("User-Agent", desktopChromeUA)
	rec := httptest.NewRecorder()

	f.handler.HandleListByID(rec, req)
	return rec
}

func TestListClick_Accepted(t *testing.T) {
	f := newListsFixture(t)
	list := f.seedList(t)

	rec := postListClick(t, f, list.ID, "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// Counter increment is awaited
	updated, err := f.storage.GetListByID(context.Background(), list.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ClickCount)

	// The click event itself lands asynchronously
	require.NoError(t, f.processor.Stop())
	listClicks := f.storage.ListClicks()
	require.Len(t, listClicks, 1)
	assert.Equal(t, list.ID, listClicks[0].ListID)
	assert.Nil(t, listClicks[0].ListURLID)
}

func TestListClick_WithListURL(t *testing.T) {
	f := newListsFixture(t)
	list := f.seedList(t)

	rec := postListClick(t, f, list.ID, fmt.Sprintf(`{"list_url_id":%d}`, list.URLs[0].ID))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	require.NoError(t, f.processor.Stop())
	listClicks := f.storage.ListClicks()
	require.Len(t, listClicks, 1)
	require.NotNil(t, listClicks[0].ListURLID)
	assert.Equal(t, list.URLs[0].ID, *listClicks[0].ListURLID)
}

func TestListClick_ForeignListURLDropped(t *testing.T) {
	f := newListsFixture(t)
	list := f.seedList(t)

	rec := postListClick(t, f, list.ID, `{"list_url_id":9999}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// The click still counts for the list, just without the URL reference
	require.NoError(t, f.processor.Stop())
	listClicks := f.storage.ListClicks()
	require.Len(t, listClicks, 1)
	assert.Nil(t, listClicks[0].ListURLID)
}

func TestListClick_UnknownList(t *testing.T) {
	f := newListsFixture(t)
	defer f.processor.Stop()

	rec := postListClick(t, f, 9999, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListClick_InvalidID(t *testing.T) {
	f := newListsFixture(t)
	defer f.processor.Stop()

	req := httptest.NewRequest(http.MethodPost, "/api/lists/not-a-number/click", nil)
	rec := httptest.NewRecorder()

	f.handler.HandleListByID(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListClick_MethodNotAllowed(t *testing.T) {
	f := newListsFixture(t)
	list := f.seedList(t)
	defer f.processor.Stop()

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/lists/%d/click", list.ID), nil)
	rec := httptest.NewRecorder()

	f.handler.HandleListByID(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCreateList_RequiresAuthContext(t *testing.T) {
	f := newListsFixture(t)
	defer f.processor.Stop()

	body, _ := json.Marshal(CreateListRequest{Title: "Picks"})
	req := httptest.NewRequest(http.MethodPost, "/api/lists", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	// No user in context: the auth middleware did not run
	f.handler.CreateList(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
