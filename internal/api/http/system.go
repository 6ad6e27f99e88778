package http

import (
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

const certDownloadName = "claude-remote-hub.crt"

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": "claude-remote-hub",
		"tls":     h.tls,
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// Metrics serves Prometheus metrics
func (h *Handlers) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Cert offers the hub's TLS certificate for installation on devices
func (h *Handlers) Cert(c *gin.Context) {
	data, err := os.ReadFile(h.install.Cert())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "no certificate installed"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+certDownloadName)
	c.Data(http.StatusOK, "application/x-x509-ca-cert", data)
}

// Icon serves the home-screen icon from the install directory
func (h *Handlers) Icon(c *gin.Context) {
	data, err := os.ReadFile(h.install.Icon())
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
