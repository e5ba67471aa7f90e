package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxCaptureDurations = 4096

// CaptureRequest carries one raw RF burst.
type CaptureRequest struct {
	// Signed pulse durations in microseconds; positive is a mark, negative a space
	Durations []int `json:"durations" binding:"required,min=1"`
}

// @Summary      Submit a capture
// @Description  Decodes one burst with the configured protocol and dispatches the command
// @Tags         receiver
// @Accept       json
// @Produce      json
// @Param        body  body   CaptureRequest  true  "Capture payload"
// @Success      200   {object}  map[string]interface{}  "protocol, command, packet"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/receiver/capture [post]
// @Security     BearerAuth
func (h *Handler) capture(c *gin.Context) {
	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if len(req.Durations) > maxCaptureDurations {
		c.JSON(http.StatusBadRequest, gin.H{"error": "capture too long"})
		return
	}
	res, err := h.services.Receiver.HandleCapture(c.Request.Context(), req.Durations)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errControlFailed, "receiver_dispatch_failed", err,
			"command", res.Command.String())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"protocol": h.services.Receiver.Protocol(),
		"command":  res.Command,
		"packet":   res.Packet,
	})
}

// @Summary      Receiver statistics
// @Tags         receiver
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "protocol, stats, accept_rate"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/receiver/stats [get]
// @Security     BearerAuth
func (h *Handler) receiverStats(c *gin.Context) {
	st := h.services.Receiver.Stats()
	c.JSON(http.StatusOK, gin.H{
		"protocol":    h.services.Receiver.Protocol(),
		"stats":       st,
		"accept_rate": st.AcceptRate(),
	})
}

// @Summary      Reset receiver statistics
// @Tags         receiver
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "protocol, stats, accept_rate"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/receiver/stats/reset [post]
// @Security     BearerAuth
func (h *Handler) resetReceiverStats(c *gin.Context) {
	h.services.Receiver.ResetStats()
	h.receiverStats(c)
}
