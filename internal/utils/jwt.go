package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prperemyshlev/autoimport/internal/domain"
)

const refreshTokenType = "refresh"

var (
	// ErrTokenExpired is returned when signature is fine but exp has passed
	ErrTokenExpired = errors.New("token is expired")

	// ErrTokenInvalid covers bad signatures, malformed tokens and wrong claims
	ErrTokenInvalid = errors.New("token is invalid")
)

type accessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies access and refresh tokens. The two token
// kinds use separate secrets so one can never be accepted as the other.
type JWTManager struct {
	accessSecret       []byte
	refreshSecret      []byte
	issuer             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	now                func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(accessSecret, refreshSecret, issuer string, accessTokenExpiry, refreshTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		accessSecret:       []byte(accessSecret),
		refreshSecret:      []byte(refreshSecret),
		issuer:             issuer,
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
		now:                time.Now,
	}
}

// GenerateAccessToken signs a short-lived token carrying identity and role.
func (j *JWTManager) GenerateAccessToken(userID, email string, role domain.Role) (string, error) {
	now := j.now()
	claims := accessClaims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTokenExpiry)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken signs a long-lived token carrying only the user id.
// It returns the absolute expiry that should be stored with it.
func (j *JWTManager) GenerateRefreshToken(userID string) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.refreshTokenExpiry)
	claims := refreshClaims{
		UserID: userID,
		Type:   refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateAccessToken verifies an access token and returns its claims.
// Errors wrap ErrTokenExpired or ErrTokenInvalid.
func (j *JWTManager) ValidateAccessToken(tokenString string) (*domain.TokenClaims, error) {
	claims := &accessClaims{}
	if err := j.parse(tokenString, claims, j.accessSecret); err != nil {
		return nil, err
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok || claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrTokenInvalid)
	}

	tokenClaims := &domain.TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   role,
	}
	if claims.ExpiresAt != nil {
		tokenClaims.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		tokenClaims.IssuedAt = claims.IssuedAt.Time
	}
	return tokenClaims, nil
}

// ValidateRefreshToken verifies a refresh token and returns the user id.
func (j *JWTManager) ValidateRefreshToken(tokenString string) (string, error) {
	claims := &refreshClaims{}
	if err := j.parse(tokenString, claims, j.refreshSecret); err != nil {
		return "", err
	}

	if claims.Type != refreshTokenType || claims.UserID == "" {
		return "", fmt.Errorf("%w: not a refresh token", ErrTokenInvalid)
	}
	return claims.UserID, nil
}

func (j *JWTManager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	}
	return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
}

// GetAccessTokenExpiry returns the access token lifetime in seconds
func (j *JWTManager) GetAccessTokenExpiry() int {
	return int(j.accessTokenExpiry.Seconds())
}

// GetRefreshTokenExpiry returns the refresh token lifetime in seconds
func (j *JWTManager) GetRefreshTokenExpiry() int {
	return int(j.refreshTokenExpiry.Seconds())
}
