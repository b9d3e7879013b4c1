// Package auth owns credential checks, password hashing and the signed
// session tokens that tie a browser cookie to a user identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"

	"movie-watchlist/pkg/models"
)

// Error kinds recovered at the handler boundary.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("username already taken")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("login required")
)

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service validates credentials and issues session tokens.
type Service struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func NewService(db *gorm.DB, secret string, ttl time.Duration) *Service {
	return &Service{db: db, secret: []byte(secret), ttl: ttl}
}

// Register creates a new account with role "user". The username must be free
// and both fields non-empty. The second attempt at a taken username performs
// no write.
func (s *Service) Register(username, password string) (*models.User, error) {
	if err := models.ValidateCredentials(username, password); err != nil {
		return nil, ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         username,
		Username:     username,
		PasswordHash: string(hash),
		Group:        models.GroupUser,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", username).First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !gorm.IsRecordNotFoundError(err) {
			return fmt.Errorf("check username: %w", err)
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks the password against the stored hash and returns a signed
// session token bound to the user.
func (s *Service) Login(username, password string) (string, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if gorm.IsRecordNotFoundError(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(user.Username)
}

func (s *Service) issueToken(username string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// CurrentIdentity resolves a session token to the user it was issued for.
// Any parse or lookup failure means the caller is anonymous.
func (s *Service) CurrentIdentity(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Username == "" {
		return nil, ErrUnauthorized
	}

	var user models.User
	err = s.db.Where("username = ?", claims.Username).First(&user).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return &user, nil
}

// UpdateName changes the display name of an account.
func (s *Service) UpdateName(username, name string) error {
	if err := models.ValidateName(name); err != nil {
		return ErrValidation
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("username = ?", username).Update("name", name)
		if res.Error != nil {
			return fmt.Errorf("update name: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
