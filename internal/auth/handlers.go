package auth

import (
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/repository"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AuthHandlers HTTP обработчики регистрации и входа в админку
type AuthHandlers struct {
	storage         repository.Storage
	jwtService      *JWTService
	passwordService *PasswordService
	log             *zap.Logger
}

// NewAuthHandlers создает новые обработчики аутентификации
func NewAuthHandlers(storage repository.Storage, jwtService *JWTService, passwordService *PasswordService, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		storage:         storage,
		jwtService:      jwtService,
		passwordService: passwordService,
		log:             log,
	}
}

// RegisterRequest структура запроса регистрации
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse структура ответа с токеном
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
}

// Register регистрирует нового пользователя админки
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		h.writeError(w, "Valid email is required", http.StatusBadRequest)
		return
	}
	if err := IsValidPassword(req.Password); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	passwordHash, err := h.passwordService.HashPassword(req.Password)
	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := h.storage.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			h.writeError(w, "User already exists", http.StatusConflict)
			return
		}
		h.log.Error("failed to create user", zap.Error(err))
		h.writeError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := h.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		h.log.Error("failed to generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("registered user", zap.Int64("user_id", user.ID))
	h.writeJSON(w, TokenResponse{AccessToken: token, UserID: user.ID, Email: user.Email}, http.StatusCreated)
}

// Login аутентифицирует пользователя и выдает токен
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.storage.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.writeError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		h.log.Error("failed to get user for login", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.passwordService.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.writeError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		h.log.Error("failed to generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user logged in", zap.Int64("user_id", user.ID))
	h.writeJSON(w, TokenResponse{AccessToken: token, UserID: user.ID, Email: user.Email}, http.StatusOK)
}

// Helper methods

func (h *AuthHandlers) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AuthHandlers) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
