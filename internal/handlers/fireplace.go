package handlers

import (
	"errors"
	"net/http"

	"fireplace_rf/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK         = "ok"
	statusTurnedOn   = "turned_on"
	statusTurnedOff  = "turned_off"
	statusToggled    = "toggled"
	statusPerformed  = "performed"
	statusPowerCycle = "power_cycled"

	errControlFailed   = "failed to control fireplace"
	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// CallRequest stages a fireplace call. Omitted fields are left unchanged.
type CallRequest struct {
	// Target on/off state
	State *bool `json:"state,omitempty" example:"true"`
	// Power level, clamped into [1, power_count]
	Power *int `json:"power,omitempty" example:"3"`
	// Preset mode name; unknown names are ignored
	PresetMode string `json:"preset_mode,omitempty" example:"eco"`
}

// CyclePowerRequest controls what happens after the highest level.
type CyclePowerRequest struct {
	// Turn off instead of wrapping to level 1
	OffCycle bool `json:"off_cycle" example:"false"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get fireplace state
// @Tags         fireplace
// @Produce      json
// @Success      200  {object}  models.FireplaceSnapshot
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/fireplace/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "fireplace_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Turn fireplace on
// @Tags         fireplace
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/fireplace/turn_on [post]
// @Security     BearerAuth
func (h *Handler) turnOn(c *gin.Context) {
	if err := h.services.Fireplace.TurnOn(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errControlFailed, "fireplace_turn_on_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusTurnedOn, nil)
}

// @Summary      Turn fireplace off
// @Tags         fireplace
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/fireplace/turn_off [post]
// @Security     BearerAuth
func (h *Handler) turnOff(c *gin.Context) {
	if err := h.services.Fireplace.TurnOff(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errControlFailed, "fireplace_turn_off_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusTurnedOff, nil)
}

// @Summary      Toggle fireplace
// @Tags         fireplace
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/fireplace/toggle [post]
// @Security     BearerAuth
func (h *Handler) toggle(c *gin.Context) {
	if err := h.services.Fireplace.Toggle(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errControlFailed, "fireplace_toggle_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusToggled, nil)
}

// @Summary      Perform a call
// @Description  Unsupported power or unknown presets are dropped, not rejected
// @Tags         fireplace
// @Accept       json
// @Produce      json
// @Param        body  body   CallRequest  true  "Call payload"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/fireplace/call [post]
// @Security     BearerAuth
func (h *Handler) performCall(c *gin.Context) {
	var req CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	err := h.services.Fireplace.Perform(c.Request.Context(), service.CallParams{
		State:      req.State,
		Power:      req.Power,
		PresetMode: req.PresetMode,
	})
	switch {
	case errors.Is(err, service.ErrEmptyCall):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errControlFailed, "fireplace_call_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusPerformed, nil)
}

// @Summary      Cycle power level
// @Description  Steps to the next power level; past the last level wraps to 1 or turns off when off_cycle is set
// @Tags         fireplace
// @Accept       json
// @Produce      json
// @Param        body  body   CyclePowerRequest  false  "Cycle options"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/fireplace/cycle_power [post]
// @Security     BearerAuth
func (h *Handler) cyclePower(c *gin.Context) {
	var req CyclePowerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return
		}
	}
	if err := h.services.Fireplace.CyclePower(c.Request.Context(), req.OffCycle); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errControlFailed, "fireplace_cycle_power_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusPowerCycle, gin.H{"off_cycle": req.OffCycle})
}
