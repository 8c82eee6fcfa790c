package http

import (
	"Linkboard-Backend/internal/analytics"
	"Linkboard-Backend/internal/auth"
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository"
	"Linkboard-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ListsHandler обработчик подборок ссылок: админское создание и публичная
// регистрация кликов
type ListsHandler struct {
	storage     repository.Storage
	slugService *service.SlugService
	processor   *analytics.Processor
	log         *zap.Logger
}

// NewListsHandler создает новый обработчик подборок
func NewListsHandler(storage repository.Storage, slugService *service.SlugService, processor *analytics.Processor, log *zap.Logger) *ListsHandler {
	return &ListsHandler{
		storage:     storage,
		slugService: slugService,
		processor:   processor,
		log:         log,
	}
}

// CreateListRequest структура запроса создания подборки
type CreateListRequest struct {
	Title     string           `json:"title"`
	Slug      string           `json:"slug,omitempty"`
	ShortSlug string           `json:"short_slug,omitempty"`
	URLs      []ListURLRequest `json:"urls,omitempty"`
}

// ListURLRequest элемент подборки
type ListURLRequest struct {
	Title     string `json:"title,omitempty"`
	TargetURL string `json:"target_url"`
}

// ListInfo информация о подборке
type ListInfo struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	ShortSlug  *string `json:"short_slug,omitempty"`
	ClickCount int64   `json:"click_count"`
	CreatedAt  string  `json:"created_at"`
}

// ListClickRequest структура запроса регистрации клика по подборке
type ListClickRequest struct {
	ListURLID *int64 `json:"list_url_id,omitempty"`
}

// CreateList создает новую подборку
//
//	@Summary		Create a curated list
//	@Description	Create a curated list with a generated or custom slug and an optional short slug
//	@Tags			Lists
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateListRequest	true	"List creation request"
//	@Success		201		{object}	ListInfo			"List created successfully"
//	@Failure		400		{object}	map[string]string	"Invalid request data"
//	@Failure		409		{object}	map[string]string	"Slug already exists"
//	@Router			/api/lists [post]
func (h *ListsHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		h.writeError(w, "List title is required", http.StatusBadRequest)
		return
	}
	for _, u := range req.URLs {
		if err := validateTargetURL(u.TargetURL); err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	slug, err := h.slugService.Claim(r.Context(), strings.TrimSpace(req.Slug))
	if err != nil {
		h.writeClaimError(w, userID, err)
		return
	}

	// Короткий slug живет в том же пространстве имен, что и основной
	var shortSlug *string
	if s := strings.TrimSpace(req.ShortSlug); s != "" {
		claimed, err := h.slugService.Claim(r.Context(), s)
		if err != nil {
			h.writeClaimError(w, userID, err)
			return
		}
		shortSlug = &claimed
	}

	list := &domain.CuratedList{
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		Slug:      slug,
		ShortSlug: shortSlug,
	}
	for _, u := range req.URLs {
		list.URLs = append(list.URLs, domain.ListURL{
			Title:     strings.TrimSpace(u.Title),
			TargetURL: u.TargetURL,
		})
	}

	if err := h.storage.CreateList(r.Context(), list); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			h.writeError(w, "Slug already exists", http.StatusConflict)
			return
		}
		h.log.Error("failed to create list", zap.Int64("user_id", userID), zap.Error(err))
		h.writeError(w, "Failed to create list", http.StatusInternalServerError)
		return
	}

	h.log.Info("created curated list",
		zap.Int64("user_id", userID),
		zap.Int64("list_id", list.ID),
		zap.String("slug", list.Slug))

	h.writeJSON(w, ListInfo{
		ID:         list.ID,
		Title:      list.Title,
		Slug:       list.Slug,
		ShortSlug:  list.ShortSlug,
		ClickCount: list.ClickCount,
		CreatedAt:  list.CreatedAt.Format(time.RFC3339),
	}, http.StatusCreated)
}

// HandleListByID обрабатывает /api/lists/{id} и /api/lists/{id}/click
func (h *ListsHandler) HandleListByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/lists/")
	if idStr, found := strings.CutSuffix(rest, "/click"); found {
		h.recordClick(w, r, idStr)
		return
	}
	http.Error(w, "Not found", http.StatusNotFound)
}

// recordClick регистрирует клик по подборке (POST /api/lists/{id}/click).
// Вызывается фронтендом подборки, аутентификации не требует. Событие клика
// уходит в фоновый конвейер, дожидаемся только инкремента счетчика.
//
//	@Summary		Record a curated list click
//	@Tags			Lists
//	@Accept			json
//	@Param			id		path	int					true	"List ID"
//	@Param			request	body	ListClickRequest	false	"Optional clicked URL"
//	@Success		202		"Click accepted"
//	@Failure		404		{object}	map[string]string	"List not found"
//	@Router			/api/lists/{id}/click [post]
func (h *ListsHandler) recordClick(w http.ResponseWriter, r *http.Request, idStr string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	listID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || listID <= 0 {
		h.writeError(w, "Invalid list ID", http.StatusBadRequest)
		return
	}

	// Тело опционально: клик может указывать на конкретную ссылку подборки
	var req ListClickRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	list, err := h.storage.GetListByID(r.Context(), listID)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			h.writeError(w, "List not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to get list for click", zap.Int64("list_id", listID), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Чужой list_url_id молча отбрасываем, клик по подборке все равно валиден
	listURLID := req.ListURLID
	if listURLID != nil {
		belongs := false
		for _, u := range list.URLs {
			if u.ID == *listURLID {
				belongs = true
				break
			}
		}
		if !belongs {
			h.log.Debug("list click references foreign url",
				zap.Int64("list_id", listID), zap.Int64("list_url_id", *listURLID))
			listURLID = nil
		}
	}

	var referrer *string
	if ref := r.Referer(); ref != "" {
		referrer = &ref
	}

	job := &analytics.ClickJob{
		ListID:    list.ID,
		ListURLID: listURLID,
		IPAddress: extractIPAddress(r),
		UserAgent: r.UserAgent(),
		Referrer:  referrer,
		ClickedAt: time.Now(),
	}
	if err := h.processor.Submit(job); err != nil {
		h.log.Warn("failed to submit list click", zap.Int64("list_id", listID), zap.Error(err))
	}

	if err := h.storage.IncrementListClicks(r.Context(), list.ID); err != nil {
		h.log.Error("failed to increment list click count", zap.Int64("list_id", listID), zap.Error(err))
		h.writeError(w, "Failed to record click", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *ListsHandler) writeClaimError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, repository.ErrSlugExists):
		h.writeError(w, "Slug already exists", http.StatusConflict)
	case errors.Is(err, service.ErrSlugExhausted):
		h.writeError(w, "Could not generate a unique slug, please retry", http.StatusInternalServerError)
	default:
		h.log.Error("failed to claim slug", zap.Int64("user_id", userID), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Helper methods

func (h *ListsHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ListsHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
