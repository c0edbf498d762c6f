package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TokenCleaner periodically removes expired refresh tokens
type TokenCleaner struct {
	auth     AuthService
	interval time.Duration
	logger   *zap.Logger
}

// NewTokenCleaner creates a cleaner that runs every interval
func NewTokenCleaner(auth AuthService, interval time.Duration, logger *zap.Logger) *TokenCleaner {
	return &TokenCleaner{auth: auth, interval: interval, logger: logger}
}

// Run sweeps once immediately and then on every tick until ctx is done
func (c *TokenCleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("token cleaner stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *TokenCleaner) sweep(ctx context.Context) {
	n, err := c.auth.CleanupExpiredTokens(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("expired token cleanup failed", zap.Error(err))
		}
		return
	}

	if n > 0 {
		c.logger.Info("expired refresh tokens removed", zap.Int64("count", n))
	}
}
