package handlers

import (
	"errors"
	"net/http"

	"coffeebot/internal/service"

	"github.com/gin-gonic/gin"
)

// TokenRequest exchanges the shared admin secret for a bearer token.
type TokenRequest struct {
	Subject string `json:"subject" binding:"required" example:"barista"`
	Secret  string `json:"secret" binding:"required"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("http_bad_request_body", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary      Issue admin token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  TokenRequest  true  "subject and admin secret"
// @Success      200  {object}  map[string]string  "token"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /auth/token [post]
func (h *Handler) signIn(c *gin.Context) {
	var input TokenRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.SignIn(input.Subject, input.Secret)
	switch {
	case errors.Is(err, service.ErrAuthDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "admin API disabled"})
		return
	case err != nil:
		h.log.Infow("auth_sign_in_failed", "subject", input.Subject, "err", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.log.Infow("auth_token_issued", "subject", input.Subject)
	c.JSON(http.StatusOK, gin.H{"token": token})
}
