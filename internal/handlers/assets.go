package handlers

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"coffeebot"

	"github.com/gin-gonic/gin"
)

const indexFile = "front.html"

func (h *Handler) front(c *gin.Context) {
	h.serveAsset(c, indexFile)
}

// asset serves everything under the prefix that no route claimed. One
// trailing slash is dropped and the request routed again, so /brew/ is /brew.
func (h *Handler) asset(c *gin.Context) {
	p := c.Request.URL.Path
	if trimmed := strings.TrimSuffix(p, "/"); trimmed != p && trimmed != "" && !strings.HasSuffix(trimmed, "/") {
		c.Request.URL.Path = trimmed
		c.Request.URL.RawPath = ""
		h.engine.HandleContext(c)
		return
	}
	prefix := h.opts.Prefix + "/"
	if !strings.HasPrefix(p, prefix) || c.Request.Method != http.MethodGet {
		c.String(http.StatusNotFound, coffeebot.BodyNotFound)
		return
	}
	name := strings.TrimPrefix(p, prefix)
	if name == "" {
		name = indexFile
	}
	h.serveAsset(c, name)
}

func (h *Handler) serveAsset(c *gin.Context, name string) {
	root := h.opts.AssetsDir
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		h.log.Errorw("assets_missing", "dir", root, "err", err)
		c.String(http.StatusInternalServerError, coffeebot.BodyAssetsMissing)
		return
	}

	clean := path.Clean("/" + name)
	body, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(clean)))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.log.Infow("asset_read_failed", "name", clean, "err", err)
		}
		c.String(http.StatusNotFound, coffeebot.BodyNotFound)
		return
	}
	c.Data(http.StatusOK, contentType(clean), body)
}

// contentType picks the response type from the file name.
func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".js.map"):
		return "application/json"
	case strings.HasSuffix(name, ".js"):
		return "application/javascript"
	case strings.HasSuffix(name, ".html"):
		return "text/html"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
