package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type RepositoryAPI interface {
	// GetCredentials returns the stored password hash and user id for an
	// email address.
	GetCredentials(email string) (passwordHash string, userID int64, err error)
	GetSessionUser(userID int64) (*SessionUser, error)
}

// ModuleResolver supplies the effective module list for the session bootstrap
// and for per-request context loading.
type ModuleResolver interface {
	ResolveModules(userID int64) ([]string, error)
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (*LoginResponse, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetSessionUser(userID int64) (*SessionUser, error)
}

type Service struct {
	repo           RepositoryAPI
	modules        ModuleResolver
	tokenGenerator TokenGeneratorAPI
}

func NewService(repo RepositoryAPI, modules ModuleResolver, tokenGen TokenGeneratorAPI) *Service {
	return &Service{
		repo:           repo,
		modules:        modules,
		tokenGenerator: tokenGen,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials, issues tokens and resolves the initial
// module snapshot for the client session.
func (s *Service) Authenticate(dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	storedHash, userID, err := s.repo.GetCredentials(dto.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(storedHash, dto.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	sessionUser, err := s.repo.GetSessionUser(userID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	modules, err := s.modules.ResolveModules(userID)
	if err != nil {
		return nil, err
	}
	sessionUser.Modules = modules

	idStr := strconv.FormatInt(userID, 10)
	accessToken, err := s.tokenGenerator.GenerateAccessToken(idStr, sessionUser.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(idStr, sessionUser.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		User: *sessionUser,
		Tokens: AuthTokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
		Modules: modules,
	}, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	newRefreshToken, err := s.tokenGenerator.GenerateRefreshToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// GetSessionUser loads the user and re-resolves the effective module list.
func (s *Service) GetSessionUser(userID int64) (*SessionUser, error) {
	sessionUser, err := s.repo.GetSessionUser(userID)
	if err != nil {
		return nil, err
	}

	modules, err := s.modules.ResolveModules(userID)
	if err != nil {
		return nil, err
	}
	sessionUser.Modules = modules
	return sessionUser, nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID string, email string) (string, error) {
	return j.signToken(userID, email, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(userID string, email string) (string, error) {
	return j.signToken(userID, email, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) signToken(userID, email string, ttl time.Duration, secret []byte) (string, error) {
	expiresAt := time.Now().Add(ttl)

	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns claims. Refresh tokens are
// tried against the refresh secret when the access secret does not match.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := j.parseWithSecret(tokenString, j.AccessTokenSecret)
	if err == nil {
		return claims, nil
	}
	return j.parseWithSecret(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) parseWithSecret(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
