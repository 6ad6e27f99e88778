package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListFolders lists one level of directories below the browsing root
func (h *Handlers) ListFolders(c *gin.Context) {
	listing, err := h.folders.List(c.Request.Context(), c.Query("path"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}
