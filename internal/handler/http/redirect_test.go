package http

import (
	"Linkboard-Backend/internal/analytics"
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository/memory"
	"Linkboard-Backend/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

const desktopChromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type redirectFixture struct {
	storage   *memory.MemStorage
	processor *analytics.Processor
	handler   *RedirectHandler
}

func newRedirectFixture(t *testing.T) *redirectFixture {
	t.Helper()

	storage := memory.New()
	resolver := service.NewResolver(storage, nil, zap.NewNop())
	processor := analytics.NewProcessor(storage, nil, nil, zap.NewNop(), analytics.ProcessorConfig{
		WorkerCount:     2,
		BufferSize:      64,
		RetryAttempts:   2,
		RetryDelay:      10 * time.Millisecond,
		ShutdownTimeout: 2 * time.Second,
	})
	require.NoError(t, processor.Start())

	return &redirectFixture{
		storage:   storage,
		processor: processor,
		handler:   NewRedirectHandler(resolver, processor, storage, zap.NewNop(), "/404"),
	}
}

func (f *redirectFixture) seedLink(t *testing.T, slug string, active bool) *domain.AffiliateLink {
	t.Helper()
	link := &domain.AffiliateLink{
		UserID:    1,
		TargetURL: "https://example.com/product",
		Slug:      slug,
		IsActive:  active,
	}
	require.NoError(t, f.storage.CreateLink(context.Background(), link))
	return link
}

func TestRedirect_Success(t *testing.T) {
	f := newRedirectFixture(t)
	f.seedLink(t, "abc123", true)

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	req.Header.Set("User-Agent", desktopChromeUA)
	req.Header.Set("Referer", "https://blog.example.com")
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()

	f.handler.HandleRedirect(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/product", rec.Header().Get("Location"))

	// Counter increment is awaited by the redirect itself
	link, err := f.storage.GetLinkBySlug(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ClickCount)

	// The click row lands asynchronously
	require.NoError(t, f.processor.Stop())
	clicks := f.storage.Clicks()
	require.Len(t, clicks, 1)
	assert.Equal(t, link.ID, clicks[0].LinkID)
	require.NotNil(t, clicks[0].IPAddress)
	assert.Equal(t, "203.0.113.7", clicks[0].IPAddress.String())
	require.NotNil(t, clicks[0].Referrer)
	assert.Equal(t, "https://blog.example.com", *clicks[0].Referrer)
}

func TestRedirect_ShortPrefix(t *testing.T) {
	f := newRedirectFixture(t)
	f.seedLink(t, "abc123", true)
	defer f.processor.Stop()

	req := httptest.NewRequest(http.MethodGet, "/l/abc123", nil)
	rec := httptest.NewRecorder()

	f.handler.HandleRedirect(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/product", rec.Header().Get("Location"))
}

func TestRedirect_UnknownSlug(t *testing.T) {
	f := newRedirectFixture(t)
	defer f.processor.Stop()

	req := httptest.NewRequest(http.MethodGet, "/nope42", nil)
	rec := httptest.NewRecorder()

	f.handler.HandleRedirect(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/404", rec.Header().Get("Location"))
}

func TestRedirect_InactiveLink(t *testing.T) {
	f := newRedirectFixture(t)
	f.seedLink(t, "gone99", false)

	req := httptest.NewRequest(http.MethodGet, "/gone99", nil)
	rec := httptest.NewRecorder()

	f.handler.HandleRedirect(rec, req)

	// Indistinguishable from a missing slug: no click, no counter bump
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/404", rec.Header().Get("Location"))

	link, err := f.storage.GetLinkBySlug(context.Background(), "gone99")
	require.NoError(t, err)
	assert.Equal(t, int64(0), link.ClickCount)

	require.NoError(t, f.processor.Stop())
	assert.Empty(t, f.storage.Clicks())
}

func TestRedirect_CaseSensitive(t *testing.T) {
	f := newRedirectFixture(t)
	f.seedLink(t, "AbC123", true)
	defer f.processor.Stop()

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	rec := httptest.NewRecorder()

	f.handler.HandleRedirect(rec, req)

	// The public redirect never folds case
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/404", rec.Header().Get("Location"))
}

func TestRedirect_SystemPath(t *testing.T) {
	f := newRedirectFixture(t)
	defer f.processor.Stop()

	for _, path := range []string{"/health", "/metrics", "/api/links", "/404"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		f.handler.HandleRedirect(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code, "path %s", path)
		assert.Equal(t, "/404", rec.Header().Get("Location"), "path %s", path)
	}
}

func TestRedirect_ConcurrentCounterIncrements(t *testing.T) {
	f := newRedirectFixture(t)
	f.seedLink(t, "abc123", true)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
			req.Header.Set("User-Agent", desktopChromeUA)
			rec := httptest.NewRecorder()
			f.handler.HandleRedirect(rec, req)
			assert.Equal(t, http.StatusFound, rec.Code)
		}()
	}
	wg.Wait()

	link, err := f.storage.GetLinkBySlug(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(n), link.ClickCount)

	require.NoError(t, f.processor.Stop())
	assert.Len(t, f.storage.Clicks(), n)
}

func TestExtractIPAddress(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		expected   string
	}{
		{
			name:       "first X-Forwarded-For entry wins",
			forwarded:  "203.0.113.7, 10.0.0.1, 172.16.0.1",
			realIP:     "198.51.100.3",
			remoteAddr: "192.168.1.1:1234",
			expected:   "203.0.113.7",
		},
		{
			name:       "X-Real-IP when no forwarded header",
			realIP:     "198.51.100.3",
			remoteAddr: "192.168.1.1:1234",
			expected:   "198.51.100.3",
		},
		{
			name:       "remote addr host as fallback",
			remoteAddr: "192.168.1.1:1234",
			expected:   "192.168.1.1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.168.1.1",
			expected:   "192.168.1.1",
		},
		{
			name:     "unknown when nothing available",
			expected: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.expected, extractIPAddress(req))
		})
	}
}

func TestHandleNotFound(t *testing.T) {
	f := newRedirectFixture(t)
	defer f.processor.Stop()

	req := httptest.NewRequest(http.MethodGet, "/404", nil)
	rec := httptest.NewRecorder()

	f.handler.HandleNotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404")
}
