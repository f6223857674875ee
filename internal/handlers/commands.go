package handlers

import (
	"net/http"

	"garage_gateway/internal/models"

	"github.com/gin-gonic/gin"
)

// gpsIngestRequest is the external position payload. Value is left untyped
// so 0/1 and true/false are both accepted; anything else is rejected by
// the gateway as unprocessable.
type gpsIngestRequest struct {
	Value any      `json:"value"`
	Lat   *float64 `json:"lat,omitempty"`
	Lon   *float64 `json:"lon,omitempty"`
}

// @Summary      Open the door
// @Tags         door
// @Produce      json
// @Success      200  {object}  map[string]string  "status, cmd"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/door/open [post]
// @Security     BasicAuth
func (h *Handler) openDoor(c *gin.Context) {
	h.sendCommand(c, models.DoorOpen, "open")
}

// @Summary      Close the door
// @Tags         door
// @Produce      json
// @Success      200  {object}  map[string]string  "status, cmd"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/door/close [post]
// @Security     BasicAuth
func (h *Handler) closeDoor(c *gin.Context) {
	h.sendCommand(c, models.DoorClosed, "close")
}

func (h *Handler) sendCommand(c *gin.Context, value int, cmd string) {
	if err := h.services.SendCommand(value); err != nil {
		h.serviceError(c, err)
		return
	}
	if h.log != nil {
		if u := currentUser(c); u != nil {
			h.log.Infow("door_command", "cmd", cmd, "by", u.Username)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent", "cmd": cmd})
}

// @Summary      Ingest an external position update
// @Description  Re-publishes the event on the bus and updates the gps channel synchronously.
// @Tags         gps
// @Accept       json
// @Produce      json
// @Param        body  body  gpsIngestRequest  true  "Position payload"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/v1/gps [post]
// @Security     BasicAuth
func (h *Handler) ingestGPS(c *gin.Context) {
	var req gpsIngestRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.IngestPosition(req.Value, req.Lat, req.Lon); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
