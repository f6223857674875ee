package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultEventCount = 50

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  h.services.Snapshot(),
	})
}

// @Summary      Current device state
// @Tags         system
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Router       /status [get]
func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Snapshot())
}

// @Summary      List recent events
// @Description  Newest first; n clamped to 1–200.
// @Tags         events
// @Produce      json
// @Param        n  query  int  false  "Number of events"  default(50)
// @Success      200  {array}  models.Event
// @Failure      400  {object}  map[string]string
// @Router       /events [get]
func (h *Handler) recentEvents(c *gin.Context) {
	n := defaultEventCount
	if qs := c.Query("n"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be an integer"})
			return
		}
		n = v
	}
	c.JSON(http.StatusOK, h.services.Recent(n))
}
