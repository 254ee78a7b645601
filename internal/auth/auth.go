package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionUser is the authenticated principal carried in request context: the
// user plus the effective module list resolved at request time.
type SessionUser struct {
	ID      int64    `json:"id"`
	Email   string   `json:"email"`
	Modules []string `json:"modules"`
}

func (u *SessionUser) HasModule(name string) bool {
	for _, m := range u.Modules {
		if m == name {
			return true
		}
	}
	return false
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse is the session bootstrap payload: tokens plus the initial
// module snapshot the client caches until it refreshes.
type LoginResponse struct {
	User    SessionUser `json:"user"`
	Tokens  AuthTokens  `json:"tokens"`
	Modules []string    `json:"modules"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID string, email string) (token string, err error)
	GenerateRefreshToken(userID string, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

type ctxKey string

const contextUserKey ctxKey = "authUser"

func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(contextUserKey).(*SessionUser)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
