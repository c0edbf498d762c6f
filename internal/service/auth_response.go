package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
)

const tokenTypeBearer = "Bearer"

// AuthResult is what register, login and refresh hand back to the transport layer
type AuthResult struct {
	User   *dto.UserResponse
	Tokens *domain.TokenPair
	// RefreshExpiresIn is the refresh token lifetime in seconds, used for the cookie
	RefreshExpiresIn int
}

// generateTokens signs a new pair for user and stores the refresh token hash
func (s *authService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, expiresAt, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = s.tokenRepo.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &AuthResult{
		User: dto.NewUserResponse(user),
		Tokens: &domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    tokenTypeBearer,
			ExpiresIn:    s.jwtManager.GetAccessTokenExpiry(),
		},
		RefreshExpiresIn: s.jwtManager.GetRefreshTokenExpiry(),
	}, nil
}

// hashToken hashes a token using SHA256
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
