package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/models"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = 12

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// InvalidCredentialsMessage is returned for every failed login, whether the
// username is unknown or the password is wrong.
const InvalidCredentialsMessage = "No active account found with the given credentials"

// JWTClaims represents the claims in a JWT token.
type JWTClaims struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Service handles authentication operations.
type Service struct {
	db         *bun.DB
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new auth service.
func NewService(db *bun.DB, cfg *config.Config) *Service {
	return &Service{
		db:         db,
		jwtSecret:  []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// Authenticate validates credentials and returns the user if valid.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Relation("Profile").
		Where("u.username = ? COLLATE NOCASE", username).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.Unauthorized(InvalidCredentialsMessage)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, errcodes.Unauthorized(InvalidCredentialsMessage)
	}

	return user, nil
}

// GenerateToken creates a signed token of the given type for the user.
func (s *Service) GenerateToken(user *models.User, tokenType string) (string, error) {
	ttl := s.accessTTL
	if tokenType == TokenTypeRefresh {
		ttl = s.refreshTTL
	}

	now := time.Now()
	claims := JWTClaims{
		UserID:    user.ID,
		Username:  user.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return signedToken, nil
}

// GenerateTokenPair returns a fresh access and refresh token.
func (s *Service) GenerateTokenPair(user *models.User) (string, string, error) {
	access, err := s.GenerateToken(user, TokenTypeAccess)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.GenerateToken(user, TokenTypeRefresh)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ValidateToken validates a JWT token and returns the claims. The token must
// be of the expected type.
func (s *Service) ValidateToken(tokenString, tokenType string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, errors.Errorf("expected %s token, got %q", tokenType, claims.TokenType)
	}

	return claims, nil
}

// GetUserByID retrieves a user by ID with its profile.
func (s *Service) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Relation("Profile").
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
