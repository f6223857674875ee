package handlers

import (
	"net/http"

	"garage_gateway/internal/models"

	"github.com/gin-gonic/gin"
)

type sessionLoginRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionLogoutRequest struct {
	ClientID string `json:"client_id" binding:"required"`
}

// @Summary      Log a bot client in
// @Description  Admin credentials open a time-limited elevated session; user credentials a persistent one.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body  sessionLoginRequest  true  "Client id and credentials"
// @Success      200  {object}  map[string]interface{}  "status, role, expires_at for admins"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/sessions/login [post]
func (h *Handler) sessionLogin(c *gin.Context) {
	var input sessionLoginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	u, err := h.services.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	if u.Role == models.RoleAdmin {
		expiresAt := h.services.LoginAdmin(input.ClientID)
		c.JSON(http.StatusOK, gin.H{"status": "ok", "role": u.Role, "expires_at": expiresAt})
		return
	}
	h.services.LoginUser(input.ClientID)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "role": u.Role})
}

// @Summary      Log a bot client out
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body  sessionLogoutRequest  true  "Client id"
// @Success      200  {object}  map[string]string
// @Router       /api/v1/sessions/logout [post]
func (h *Handler) sessionLogout(c *gin.Context) {
	var input sessionLogoutRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	h.services.Logout(input.ClientID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Session status for a bot client
// @Tags         sessions
// @Produce      json
// @Param        client_id  path  string  true  "Client id"
// @Success      200  {object}  map[string]bool  "logged_in, admin"
// @Router       /api/v1/sessions/{client_id} [get]
func (h *Handler) sessionStatus(c *gin.Context) {
	clientID := c.Param("client_id")
	c.JSON(http.StatusOK, gin.H{
		"logged_in": h.services.IsAuthorizedAny(clientID),
		"admin":     h.services.IsAuthorizedAdmin(clientID),
	})
}
