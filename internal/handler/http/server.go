package http

import (
	"Linkboard-Backend/internal/analytics"
	"Linkboard-Backend/internal/auth"
	"Linkboard-Backend/internal/cache"
	"Linkboard-Backend/internal/repository"
	"Linkboard-Backend/internal/service"
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	authHandlers     *auth.AuthHandlers
	linksHandler     *LinksHandler
	listsHandler     *ListsHandler
	slugCheckHandler *SlugCheckHandler
	redirectHandler  *RedirectHandler
	healthHandler    *HealthHandler
	authMiddleware   *auth.Middleware
	log              *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	storage repository.Storage,
	slugService *service.SlugService,
	resolver *service.ResolverService,
	processor *analytics.Processor,
	resolutionCache *cache.ResolutionCache,
	jwtService *auth.JWTService,
	passwordService *auth.PasswordService,
	log *zap.Logger,
	baseURL string,
	notFoundURL string,
) *Server {
	// Создаем handlers
	authHandlers := auth.NewAuthHandlers(storage, jwtService, passwordService, log)
	linksHandler := NewLinksHandler(storage, slugService, resolutionCache, log, baseURL)
	listsHandler := NewListsHandler(storage, slugService, processor, log)
	slugCheckHandler := NewSlugCheckHandler(resolver, log)
	redirectHandler := NewRedirectHandler(resolver, processor, storage, log, notFoundURL)
	healthHandler := NewHealthHandler(storage, processor, log)

	// Создаем middleware
	authMiddleware := auth.NewMiddleware(jwtService, log)

	return &Server{
		authHandlers:     authHandlers,
		linksHandler:     linksHandler,
		listsHandler:     listsHandler,
		slugCheckHandler: slugCheckHandler,
		redirectHandler:  redirectHandler,
		healthHandler:    healthHandler,
		authMiddleware:   authMiddleware,
		log:              log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks (без аутентификации)
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/metrics", s.healthHandler.Metrics)

	// Swagger документация
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Auth endpoints (без аутентификации)
	mux.HandleFunc("/api/auth/register", s.withCORS(s.authHandlers.Register))
	mux.HandleFunc("/api/auth/login", s.withCORS(s.authHandlers.Login))

	// Проверка slug'а для админки (с аутентификацией)
	mux.HandleFunc("/api/check-slug/", s.withCORS(s.authMiddleware.RequireAuth(s.slugCheckHandler.CheckSlug)))

	// Links API (с аутентификацией)
	mux.HandleFunc("/api/links", s.withCORS(s.authMiddleware.RequireAuth(s.handleLinksAPI)))
	mux.HandleFunc("/api/links/", s.withCORS(s.authMiddleware.RequireAuth(s.handleLinksAPI)))
	mux.HandleFunc("/api/stats/", s.withCORS(s.authMiddleware.RequireAuth(s.linksHandler.GetStats)))
	mux.HandleFunc("/api/custom-links", s.withCORS(s.authMiddleware.RequireAuth(s.linksHandler.CreateCustomLink)))

	// Lists API: создание под аутентификацией, клик публичный -
	// его шлет страница подборки
	mux.HandleFunc("/api/lists", s.withCORS(s.authMiddleware.RequireAuth(s.listsHandler.CreateList)))
	mux.HandleFunc("/api/lists/", s.withCORS(s.listsHandler.HandleListByID))

	// Страница 404, на которую ведут неудачные редиректы
	mux.HandleFunc("/404", s.redirectHandler.HandleNotFound)

	// Redirect endpoints (без аутентификации) - должны быть последними
	mux.HandleFunc("/l/", s.redirectHandler.HandleRedirect)
	mux.HandleFunc("/", s.redirectHandler.HandleRedirect)

	return mux
}

// handleLinksAPI обрабатывает /api/links и /api/links/* с разными HTTP методами
func (s *Server) handleLinksAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.linksHandler.ListLinks(w, r)
	case http.MethodPost:
		s.linksHandler.CreateLink(w, r)
	case http.MethodDelete:
		s.linksHandler.DeleteLink(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// withCORS добавляет CORS headers к обработчику
func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(handler)
}

// Utility method для проверки системных путей
func isSystemPath(path string) bool {
	systemPaths := []string{
		"/api/",
		"/health",
		"/ready",
		"/metrics",
		"/swagger/",
		"/404",
	}

	for _, systemPath := range systemPaths {
		if strings.HasPrefix(path, systemPath) {
			return true
		}
	}

	return false
}
