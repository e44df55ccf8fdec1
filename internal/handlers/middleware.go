package handlers

import (
	"net/http"
	"strings"
	"time"

	"coffeebot"

	"github.com/gin-gonic/gin"
)

const ctxAdminSubject = "adminSubject"

// pathGuard drops traversal attempts before routing sees them.
func (h *Handler) pathGuard(c *gin.Context) {
	uri := c.Request.RequestURI
	if strings.Contains(uri, "..") || strings.Contains(uri, "~") {
		h.log.Infow("http_path_rejected", "uri", uri, "remote", c.ClientIP())
		c.String(http.StatusNotFound, coffeebot.BodyNotFound)
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.log.Debugw("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

func (h *Handler) adminMiddleware(c *gin.Context) {
	if !h.services.Authorization.Enabled() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "admin API disabled",
		})
		return
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	subject, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(ctxAdminSubject, subject)
	c.Next()
}
