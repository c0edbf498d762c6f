package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/autoimport/internal/dto"
	"github.com/prperemyshlev/autoimport/internal/service"
)

// UserHandler handles account administration
type UserHandler struct {
	authService service.AuthService
}

func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// SetActive activates or deactivates an account. Deactivation logs the user
// out everywhere.
func (h *UserHandler) SetActive(c *gin.Context) {
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.authService.SetUserActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "User updated", dto.UserData{User: user})
}
