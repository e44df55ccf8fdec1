package handlers

import (
	"net/http"

	"coffeebot"
	"coffeebot/internal/dispatcher"

	"github.com/gin-gonic/gin"
)

const statusOK = "ok"

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

// @Summary      Start a brew
// @Description  Sets the ready time to now plus the brew delay. Refused while a pot is still brewing.
// @Tags         coffee
// @Produce      plain
// @Success      200  {string}  string  "Thanks!"
// @Failure      503  {string}  string  "Already brewing"
// @Failure      500  {string}  string
// @Router       /brew [get]
func (h *Handler) brew(c *gin.Context) {
	out := h.actions.Do(c.Request.Context(), dispatcher.ActionBrew, "")
	switch out.Code {
	case dispatcher.CodeAccepted:
		c.String(http.StatusOK, coffeebot.BodyThanks)
	case dispatcher.CodeConflict:
		c.String(http.StatusServiceUnavailable, coffeebot.BodyAlreadyBrewing)
	default:
		c.String(http.StatusInternalServerError, coffeebot.BodyInternalError)
	}
}

// @Summary      Mark the pot fresh
// @Description  Records that fresh coffee is available now, or at the optional natural language time.
// @Tags         coffee
// @Produce      plain
// @Param        when  query  string  false  "When the coffee was or will be ready"  example(5 minutes ago)
// @Success      200  {string}  string  "Thanks!"
// @Failure      500  {string}  string
// @Router       /fresh [get]
func (h *Handler) fresh(c *gin.Context) {
	out := h.actions.Do(c.Request.Context(), dispatcher.ActionFresh, c.Query("when"))
	if out.Code != dispatcher.CodeAccepted {
		c.String(http.StatusInternalServerError, coffeebot.BodyInternalError)
		return
	}
	c.String(http.StatusOK, coffeebot.BodyThanks)
}

// @Summary      Last coffee
// @Description  last_coffee is null when nothing has been recorded.
// @Tags         coffee
// @Produce      json
// @Success      200  {object}  coffeebot.StatusResponse
// @Failure      500  {string}  string
// @Router       /status [get]
func (h *Handler) status(c *gin.Context) {
	out := h.actions.Do(c.Request.Context(), dispatcher.ActionStatus, "")
	if out.Code != dispatcher.CodeAccepted {
		c.String(http.StatusInternalServerError, coffeebot.BodyInternalError)
		return
	}
	c.JSON(http.StatusOK, coffeebot.NewStatusResponse(out.ReadyAt))
}
