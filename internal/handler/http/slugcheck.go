package http

import (
	"Linkboard-Backend/internal/repository"
	"Linkboard-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// SlugCheckHandler отвечает админке, кому принадлежит slug. В отличие от
// публичного редиректа использует полный порядок разрешения: ссылки строго,
// подборки строго, затем оба типа без учета регистра.
type SlugCheckHandler struct {
	resolver *service.ResolverService
	log      *zap.Logger
}

// NewSlugCheckHandler создает новый обработчик проверки slug'ов
func NewSlugCheckHandler(resolver *service.ResolverService, log *zap.Logger) *SlugCheckHandler {
	return &SlugCheckHandler{
		resolver: resolver,
		log:      log,
	}
}

// SlugCheckResponse результат проверки slug'а. Type равен null, если slug
// свободен; caseSensitive=false означает, что совпадение нашлось только
// без учета регистра. Указатель, чтобы false попадал в JSON для найденных
// slug'ов, а для свободных поле опускалось.
type SlugCheckResponse struct {
	Found         bool        `json:"found"`
	Type          *string     `json:"type"`
	CaseSensitive *bool       `json:"caseSensitive,omitempty"`
	Data          interface{} `json:"data,omitempty"`
}

// CheckSlug проверяет принадлежность slug'а (GET /api/check-slug/{slug})
//
//	@Summary		Check slug ownership
//	@Description	Resolve a slug across affiliate links and curated lists, including case-insensitive fallback
//	@Tags			Slugs
//	@Produce		json
//	@Security		BearerAuth
//	@Param			slug	path		string	true	"Slug to check"
//	@Success		200		{object}	SlugCheckResponse
//	@Router			/api/check-slug/{slug} [get]
func (h *SlugCheckHandler) CheckSlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/check-slug/")
	if slug == "" || strings.Contains(slug, "/") {
		h.writeJSON(w, map[string]string{"error": "Slug is required"}, http.StatusBadRequest)
		return
	}

	resolution, err := h.resolver.Resolve(r.Context(), slug, service.PolicyFull)
	if err != nil {
		if errors.Is(err, repository.ErrSlugNotFound) {
			h.writeJSON(w, SlugCheckResponse{Found: false, Type: nil}, http.StatusOK)
			return
		}
		h.log.Error("failed to check slug", zap.String("slug", slug), zap.Error(err))
		h.writeJSON(w, map[string]string{"error": "Internal server error"}, http.StatusInternalServerError)
		return
	}

	entityType := string(resolution.Type)
	caseSensitive := resolution.CaseSensitive
	resp := SlugCheckResponse{
		Found:         true,
		Type:          &entityType,
		CaseSensitive: &caseSensitive,
	}
	switch resolution.Type {
	case service.EntityAffiliateLink:
		resp.Data = resolution.Link
	case service.EntityCuratedList:
		resp.Data = resolution.List
	}

	h.writeJSON(w, resp, http.StatusOK)
}

func (h *SlugCheckHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
