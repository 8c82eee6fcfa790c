package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost сложность хеширования паролей админов дашборда
	DefaultBcryptCost = 12

	minPasswordLength = 6
	maxPasswordLength = 128
)

var (
	ErrInvalidPassword = errors.New("invalid password")
)

// PasswordService хеширует и проверяет пароли админского API
type PasswordService struct {
	cost int
}

// NewPasswordService создает сервис со стандартной сложностью bcrypt
func NewPasswordService() *PasswordService {
	return &PasswordService{
		cost: DefaultBcryptCost,
	}
}

// NewPasswordServiceWithCost создает сервис с заданной сложностью,
// в тестах используется пониженная
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{
		cost: cost,
	}
}

// HashPassword хеширует пароль через bcrypt, пустой пароль не допускается
func (s *PasswordService) HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", ErrInvalidPassword
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// VerifyPassword сверяет пароль с хешем
func (s *PasswordService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// IsValidPassword проверяет длину пароля при регистрации
func IsValidPassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 6 characters long")
	}

	if len(password) > maxPasswordLength {
		return errors.New("password must be no more than 128 characters long")
	}

	return nil
}
