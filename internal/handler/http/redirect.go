package http

import (
	"Linkboard-Backend/internal/analytics"
	"Linkboard-Backend/internal/repository"
	"Linkboard-Backend/internal/service"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RedirectHandler обработчик публичных редиректов по slug'у.
// Любой сбой на этом пути превращается в редирект на страницу 404 -
// публичный endpoint никогда не отвечает JSON-ошибкой или 5xx.
type RedirectHandler struct {
	resolver    *service.ResolverService
	processor   *analytics.Processor
	storage     repository.Storage
	log         *zap.Logger
	notFoundURL string
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(resolver *service.ResolverService, processor *analytics.Processor, storage repository.Storage, log *zap.Logger, notFoundURL string) *RedirectHandler {
	return &RedirectHandler{
		resolver:    resolver,
		processor:   processor,
		storage:     storage,
		log:         log,
		notFoundURL: notFoundURL,
	}
}

// HandleRedirect обрабатывает GET /{slug} и GET /l/{slug}.
// Разрешение строго по партнерским ссылкам (PolicyStrict): подборки и
// регистронезависимый fallback на публичном редиректе не участвуют.
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	// Системные пути не являются slug'ами
	if isSystemPath(r.URL.Path) {
		h.redirectNotFound(w, r)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/")
	slug = strings.TrimPrefix(slug, "l/")
	if slug == "" || strings.Contains(slug, "/") {
		h.redirectNotFound(w, r)
		return
	}

	resolution, err := h.resolver.Resolve(r.Context(), slug, service.PolicyStrict)
	if err != nil {
		if errors.Is(err, repository.ErrSlugNotFound) {
			h.log.Debug("slug not found", zap.String("slug", slug))
		} else {
			h.log.Error("failed to resolve slug", zap.String("slug", slug), zap.Error(err))
		}
		h.redirectNotFound(w, r)
		return
	}

	link := resolution.Link
	if !link.IsActive {
		// Неактивная ссылка неотличима от несуществующей: ни клика,
		// ни инкремента счетчика
		h.log.Debug("slug resolved to inactive link", zap.String("slug", slug))
		h.redirectNotFound(w, r)
		return
	}

	ipAddress := extractIPAddress(r)
	userAgent := r.UserAgent()

	var referrer *string
	if ref := r.Referer(); ref != "" {
		referrer = &ref
	}

	// Запись клика уходит в фоновый конвейер: геолокация и insert не
	// задерживают редирект. Потеря клика при переполнении очереди -
	// осознанный компромисс.
	job := &analytics.ClickJob{
		LinkID:    link.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Referrer:  referrer,
		ClickedAt: time.Now(),
	}
	if err := h.processor.Submit(job); err != nil {
		h.log.Warn("failed to submit click", zap.String("slug", slug), zap.Error(err))
	}

	// Инкремент счетчика - единственная запись, которую редирект ждет.
	// Событие клика и счетчик - две независимые записи без общей
	// транзакции: после сбоя между ними допустимо расхождение на единицу.
	if err := h.storage.IncrementLinkClicks(r.Context(), link.ID); err != nil {
		h.log.Error("failed to increment click count", zap.String("slug", slug), zap.Error(err))
		h.redirectNotFound(w, r)
		return
	}

	h.log.Info("successful redirect",
		zap.String("slug", slug),
		zap.String("target_url", link.TargetURL),
		zap.String("ip", ipAddress))

	http.Redirect(w, r, link.TargetURL, http.StatusFound)
}

// HandleNotFound отдает страницу 404, на которую ведут все неудачные
// редиректы
func (h *RedirectHandler) HandleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("<!DOCTYPE html><html><head><title>Not Found</title></head>" +
		"<body><h1>404</h1><p>This link does not exist or is no longer active.</p></body></html>"))
}

func (h *RedirectHandler) redirectNotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.notFoundURL, http.StatusFound)
}

// extractIPAddress извлекает IP адрес клиента с учетом прокси: первое
// значение X-Forwarded-For, затем X-Real-IP, затем RemoteAddr, иначе
// "unknown"
func extractIPAddress(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		if len(ips) > 0 && strings.TrimSpace(ips[0]) != "" {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	if r.RemoteAddr != "" {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return ip
	}

	return "unknown"
}
