package http

import (
	"Linkboard-Backend/internal/auth"
	"Linkboard-Backend/internal/cache"
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository"
	"Linkboard-Backend/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LinksHandler обработчик админского API партнерских ссылок
type LinksHandler struct {
	storage     repository.Storage
	slugService *service.SlugService
	cache       *cache.ResolutionCache
	log         *zap.Logger
	baseURL     string
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(storage repository.Storage, slugService *service.SlugService, resolutionCache *cache.ResolutionCache, log *zap.Logger, baseURL string) *LinksHandler {
	return &LinksHandler{
		storage:     storage,
		slugService: slugService,
		cache:       resolutionCache,
		log:         log,
		baseURL:     baseURL,
	}
}

// CreateLinkRequest структура запроса создания партнерской ссылки
type CreateLinkRequest struct {
	TargetURL  string `json:"target_url"`
	Title      string `json:"title,omitempty"`
	CustomSlug string `json:"custom_slug,omitempty"`
}

// CreateLinkResponse структура ответа создания ссылки
type CreateLinkResponse struct {
	ID       int64  `json:"id"`
	Slug     string `json:"slug"`
	ShortURL string `json:"short_url,omitempty"`
}

// LinkInfo информация о ссылке
type LinkInfo struct {
	ID         int64  `json:"id"`
	Slug       string `json:"slug"`
	TargetURL  string `json:"target_url"`
	Title      string `json:"title,omitempty"`
	IsActive   bool   `json:"is_active"`
	ClickCount int64  `json:"click_count"`
	CreatedAt  string `json:"created_at"`
}

// ListLinksResponse структура ответа списка ссылок
type ListLinksResponse struct {
	Links []LinkInfo `json:"links"`
}

// GetStatsResponse структура ответа статистики по ссылке
type GetStatsResponse struct {
	ID              int64            `json:"id"`
	Slug            string           `json:"slug"`
	TargetURL       string           `json:"target_url"`
	Title           string           `json:"title,omitempty"`
	ClickCount      int64            `json:"click_count"`
	ClicksByDevice  map[string]int64 `json:"clicks_by_device"`
	ClicksByBrowser map[string]int64 `json:"clicks_by_browser"`
	CreatedAt       string           `json:"created_at"`
}

// CreateLink создает новую партнерскую ссылку
//
//	@Summary		Create an affiliate link
//	@Description	Create a new affiliate link with a generated or custom slug
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateLinkRequest	true	"Link creation request"
//	@Success		201		{object}	CreateLinkResponse	"Link created successfully"
//	@Failure		400		{object}	map[string]string	"Invalid request data"
//	@Failure		401		{object}	map[string]string	"Authentication required"
//	@Failure		409		{object}	map[string]string	"Slug already exists"
//	@Router			/api/links [post]
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create link request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := validateTargetURL(req.TargetURL); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	slug, err := h.slugService.Claim(r.Context(), strings.TrimSpace(req.CustomSlug))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlugExists):
			h.writeError(w, "Slug already exists", http.StatusConflict)
		case errors.Is(err, service.ErrSlugExhausted):
			// Исчерпание попыток - не конфликт с конкретным slug'ом,
			// повтор запроса почти наверняка поможет
			h.log.Error("slug generation exhausted", zap.Int64("user_id", userID))
			h.writeError(w, "Could not generate a unique slug, please retry", http.StatusInternalServerError)
		default:
			h.log.Error("failed to claim slug", zap.Int64("user_id", userID), zap.Error(err))
			h.writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	link := &domain.AffiliateLink{
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		TargetURL: req.TargetURL,
		Slug:      slug,
		IsActive:  true,
	}

	if err := h.storage.CreateLink(r.Context(), link); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			// Гонка между Claim и insert'ом: уникальный индекс решает
			h.writeError(w, "Slug already exists", http.StatusConflict)
			return
		}
		h.log.Error("failed to create link", zap.Int64("user_id", userID), zap.Error(err))
		h.writeError(w, "Failed to create link", http.StatusInternalServerError)
		return
	}

	h.log.Info("created affiliate link",
		zap.Int64("user_id", userID),
		zap.Int64("link_id", link.ID),
		zap.String("slug", link.Slug))

	h.writeJSON(w, CreateLinkResponse{
		ID:       link.ID,
		Slug:     link.Slug,
		ShortURL: h.shortURL(link.Slug),
	}, http.StatusCreated)
}

// ListLinks возвращает все ссылки текущего пользователя
//
//	@Summary		List affiliate links
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	ListLinksResponse
//	@Router			/api/links [get]
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	links, err := h.storage.ListUserLinks(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to list links", zap.Int64("user_id", userID), zap.Error(err))
		h.writeError(w, "Failed to list links", http.StatusInternalServerError)
		return
	}

	resp := ListLinksResponse{Links: make([]LinkInfo, 0, len(links))}
	for _, link := range links {
		resp.Links = append(resp.Links, LinkInfo{
			ID:         link.ID,
			Slug:       link.Slug,
			TargetURL:  link.TargetURL,
			Title:      link.Title,
			IsActive:   link.IsActive,
			ClickCount: link.ClickCount,
			CreatedAt:  link.CreatedAt.Format(time.RFC3339),
		})
	}

	h.writeJSON(w, resp, http.StatusOK)
}

// DeleteLink деактивирует ссылку пользователя (DELETE /api/links/{slug}).
// Запись остается ради истории кликов, slug навсегда занят.
//
//	@Summary		Deactivate an affiliate link
//	@Tags			Links
//	@Security		BearerAuth
//	@Param			slug	path	string	true	"Link slug"
//	@Success		204		"Link deactivated"
//	@Failure		404		{object}	map[string]string	"Link not found"
//	@Router			/api/links/{slug} [delete]
func (h *LinksHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/links/")
	if slug == "" || strings.Contains(slug, "/") {
		h.writeError(w, "Link slug is required", http.StatusBadRequest)
		return
	}

	if err := h.storage.DeactivateLink(r.Context(), userID, slug); err != nil {
		if errors.Is(err, repository.ErrSlugNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to deactivate link",
			zap.Int64("user_id", userID), zap.String("slug", slug), zap.Error(err))
		h.writeError(w, "Failed to deactivate link", http.StatusInternalServerError)
		return
	}

	// Кэш разрешения может еще хранить активную версию
	h.cache.Invalidate(r.Context(), slug)

	h.log.Info("deactivated link", zap.Int64("user_id", userID), zap.String("slug", slug))
	w.WriteHeader(http.StatusNoContent)
}

// GetStats возвращает статистику кликов по ссылке (GET /api/stats/{slug})
//
//	@Summary		Get link click statistics
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			slug	path		string	true	"Link slug"
//	@Success		200		{object}	GetStatsResponse
//	@Failure		404		{object}	map[string]string	"Link not found"
//	@Router			/api/stats/{slug} [get]
func (h *LinksHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/stats/")
	if slug == "" || strings.Contains(slug, "/") {
		h.writeError(w, "Link slug is required", http.StatusBadRequest)
		return
	}

	link, err := h.storage.GetLinkBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrSlugNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to get link for stats", zap.String("slug", slug), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if link.UserID != userID {
		// Чужая ссылка выглядит как отсутствующая
		h.writeError(w, "Link not found", http.StatusNotFound)
		return
	}

	byDevice, err := h.storage.GetClicksByDevice(r.Context(), link.ID)
	if err != nil {
		h.log.Error("failed to get clicks by device", zap.Int64("link_id", link.ID), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	byBrowser, err := h.storage.GetClicksByBrowser(r.Context(), link.ID)
	if err != nil {
		h.log.Error("failed to get clicks by browser", zap.Int64("link_id", link.ID), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, GetStatsResponse{
		ID:              link.ID,
		Slug:            link.Slug,
		TargetURL:       link.TargetURL,
		Title:           link.Title,
		ClickCount:      link.ClickCount,
		ClicksByDevice:  byDevice,
		ClicksByBrowser: byBrowser,
		CreatedAt:       link.CreatedAt.Format(time.RFC3339),
	}, http.StatusOK)
}

// CreateCustomLink создает произвольную короткую ссылку (POST /api/custom-links).
// Slug проходит общую проверку уникальности, но клики по таким ссылкам в
// аналитику не пишутся.
func (h *LinksHandler) CreateCustomLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := validateTargetURL(req.TargetURL); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	slug, err := h.slugService.Claim(r.Context(), strings.TrimSpace(req.CustomSlug))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlugExists):
			h.writeError(w, "Slug already exists", http.StatusConflict)
		case errors.Is(err, service.ErrSlugExhausted):
			h.writeError(w, "Could not generate a unique slug, please retry", http.StatusInternalServerError)
		default:
			h.log.Error("failed to claim slug", zap.Int64("user_id", userID), zap.Error(err))
			h.writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	link := &domain.CustomLink{
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		TargetURL: req.TargetURL,
		Slug:      slug,
		IsActive:  true,
	}

	if err := h.storage.CreateCustomLink(r.Context(), link); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			h.writeError(w, "Slug already exists", http.StatusConflict)
			return
		}
		h.log.Error("failed to create custom link", zap.Int64("user_id", userID), zap.Error(err))
		h.writeError(w, "Failed to create custom link", http.StatusInternalServerError)
		return
	}

	h.log.Info("created custom link", zap.Int64("user_id", userID), zap.String("slug", slug))
	h.writeJSON(w, CreateLinkResponse{
		ID:       link.ID,
		Slug:     link.Slug,
		ShortURL: h.shortURL(link.Slug),
	}, http.StatusCreated)
}

func (h *LinksHandler) shortURL(slug string) string {
	if h.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(h.baseURL, "/"), slug)
}

func validateTargetURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("target URL is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return errors.New("target URL must be a valid http(s) URL")
	}
	return nil
}

// Helper methods

func (h *LinksHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *LinksHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
