package domain

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleHierarchy(t *testing.T) {
	tests := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleAdmin, RoleCompany, true},
		{RoleCompany, RoleCompany, true},
		{RoleDriver, RoleGuide, true},
		{RoleGuide, RoleDriver, true},
		{RoleGuide, RoleCompany, false},
		{RoleUser, RoleGuide, false},
		{RoleUser, RoleUser, true},
		{Role("ROOT"), RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s>=%s", tt.role, tt.min), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.min))
		})
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("DRIVER")
	assert.True(t, ok)
	assert.Equal(t, RoleDriver, r)

	_, ok = ParseRole("driver")
	assert.False(t, ok)
}

func TestOrderStageMap(t *testing.T) {
	for i, st := range OrderStatuses {
		assert.Equal(t, i+1, st.Stage(), "stage of %s", st)
		parsed, ok := ParseOrderStatus(string(st))
		require.True(t, ok)
		assert.Equal(t, st, parsed)
	}

	_, ok := ParseOrderStatus("LOST")
	assert.False(t, ok)
	assert.Zero(t, OrderStatus("LOST").Stage())
}

func TestAppErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", ErrInvalidRefreshToken.WithMessage("token was already used"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, "token was already used", appErr.Message)
	assert.ErrorIs(t, wrapped, ErrInvalidRefreshToken)
	assert.NotErrorIs(t, wrapped, ErrRefreshTokenExpired)

	// the shared instance is never mutated
	assert.Equal(t, "Invalid refresh token", ErrInvalidRefreshToken.Message)
}

func TestAppErrorStatuses(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, ErrInsufficientRole.Status)
	assert.Equal(t, http.StatusForbidden, ErrAccountDeactivated.Status)
	assert.Equal(t, http.StatusConflict, ErrEmailExists.Status)
	assert.Equal(t, http.StatusNotFound, ErrOrderNotFound.Status)
	assert.Equal(t, http.StatusTooManyRequests, ErrRateLimitExceeded.Status)
	assert.Equal(t, http.StatusBadRequest, NewValidationError("bad", nil).Status)
}
