package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" binding:"required"`
	AdminMode   bool   `json:"admin_mode"`
}

// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, users (name to role)"
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/users [get]
// @Security     BasicAuth
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.services.ListUsers(c.Request.Context(), currentUser(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "users": users})
}

// @Summary      Add a user
// @Description  New accounts always get the user role.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  addUserRequest  true  "New account"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/users [post]
// @Security     BasicAuth
func (h *Handler) addUser(c *gin.Context) {
	var input addUserRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	if err := h.services.AddUser(c.Request.Context(), currentUser(c), input.Username, input.Password); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Remove a user
// @Tags         users
// @Produce      json
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/users/{username} [delete]
// @Security     BasicAuth
func (h *Handler) removeUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.services.RemoveUser(c.Request.Context(), currentUser(c), username); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "User " + username + " removed"})
}

// @Summary      Change a password
// @Description  admin_mode=true lets an admin (or the deployment API key) skip the old-password proof; otherwise the correct old_password is required.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  changePasswordRequest  true  "Password change"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/users/password [post]
// @Security     BasicAuth
func (h *Handler) changePassword(c *gin.Context) {
	var input changePasswordRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	err := h.services.ChangePassword(
		c.Request.Context(),
		currentUser(c),
		input.Username,
		input.OldPassword,
		input.NewPassword,
		input.AdminMode,
	)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
