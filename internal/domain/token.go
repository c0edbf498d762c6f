package domain

import "time"

// TokenClaims is the decoded payload of an access token.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// TokenPair is what clients receive after register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// RefreshToken is a server-side session row. Only the SHA-256 of the
// signed token is stored.
type RefreshToken struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// IsExpired checks the stored expiry against now.
func (t RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
