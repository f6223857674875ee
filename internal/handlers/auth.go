package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Single, shared credentials payload for sign-in and credential checks.
type authCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Sign in (bearer token)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  authCredentials  true  "Credentials"
// @Success      200  {object}  map[string]string  "token"
// @Failure      401  {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("sign_in_failed", "username", input.Username)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// @Summary      Check credentials
// @Description  Reports ok/error without distinguishing unknown user from bad password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  authCredentials  true  "Credentials"
// @Success      200  {object}  map[string]string  "status"
// @Router       /auth/check [post]
func (h *Handler) checkUser(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	if h.services.CheckUser(c.Request.Context(), input.Username, input.Password) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "error"})
}

type roleRequest struct {
	Username string `json:"username" binding:"required"`
}

// @Summary      Get a user's role
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  roleRequest  true  "Username"
// @Success      200  {object}  map[string]string  "role, or none for unknown users"
// @Router       /auth/role [post]
func (h *Handler) getRole(c *gin.Context) {
	var input roleRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	role, err := h.services.GetRole(c.Request.Context(), input.Username)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}
