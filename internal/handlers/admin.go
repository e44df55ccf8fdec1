package handlers

import (
	"errors"
	"net/http"

	"coffeebot/internal/models"
	"coffeebot/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusReset    = "reset"
	errReset       = "failed to reset"
	errLoadDelay   = "failed to load brew delay"
	errSaveDelay   = "failed to save brew delay"
	errInvalidBody = "invalid body: "
)

// BrewDelayRequest is the payload of PUT /api/v1/brew-delay.
type BrewDelayRequest struct {
	// Delay is a natural language duration.
	Delay string `json:"delay" binding:"required" example:"4 minutes"`
}

// BrewDelayResponse reports the configured delay and its parsed length.
type BrewDelayResponse struct {
	Delay   string `json:"delay" example:"4 minutes"`
	Seconds int64  `json:"seconds" example:"240"`
}

// logAndJSONError logs err under logKey and writes userMsg.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Forget the pot
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/reset [post]
// @Security     BearerAuth
func (h *Handler) reset(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Coffee.Reset(ctx, models.SourceAdmin); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errReset, "admin_reset_failed", err,
			"subject", c.GetString(ctxAdminSubject))
		return
	}
	h.log.Infow("admin_reset", "subject", c.GetString(ctxAdminSubject))

	resp := gin.H{"status": statusReset}
	if st, err := h.services.Monitoring.GetState(ctx); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Get brew delay
// @Tags         admin
// @Produce      json
// @Success      200  {object}  BrewDelayResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/brew-delay [get]
// @Security     BearerAuth
func (h *Handler) getBrewDelay(c *gin.Context) {
	text, d, err := h.services.Settings.BrewDelay(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadDelay, "admin_brew_delay_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, BrewDelayResponse{Delay: text, Seconds: int64(d.Seconds())})
}

// @Summary      Set brew delay
// @Description  Takes effect on the next brew. The pot currently brewing keeps its ready time.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  BrewDelayRequest  true  "delay"
// @Success      200  {object}  BrewDelayResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/brew-delay [put]
// @Security     BearerAuth
func (h *Handler) setBrewDelay(c *gin.Context) {
	var req BrewDelayRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	d, err := h.services.Settings.SetBrewDelay(c.Request.Context(), req.Delay)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDelay) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody + err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSaveDelay, "admin_brew_delay_save_failed", err,
			"delay", req.Delay)
		return
	}
	h.log.Infow("admin_brew_delay_set", "delay", req.Delay, "subject", c.GetString(ctxAdminSubject))
	c.JSON(http.StatusOK, BrewDelayResponse{Delay: req.Delay, Seconds: int64(d.Seconds())})
}
