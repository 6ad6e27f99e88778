package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/remotehub/internal/domain/capture"
	"github.com/GriffinCanCode/remotehub/internal/shared/utils"
)

// ListCapturable lists CLI processes running outside managed sessions
func (h *Handlers) ListCapturable(c *gin.Context) {
	procs, err := h.discoverer.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if procs == nil {
		procs = []capture.Process{}
	}
	c.Header("Cache-Control", "no-cache, no-store")
	c.JSON(http.StatusOK, procs)
}

// Capture forks the conversation of ?pid= into a new managed session
func (h *Handlers) Capture(c *gin.Context) {
	var err error
	done := h.track.Track("capture")
	defer func() { done(err) }()

	pid, err := utils.ParsePID(c.Query("pid"))
	if err != nil {
		err = fmt.Errorf("%w: %v", errBadRequest, err)
		h.fail(c, err)
		return
	}

	s, err := h.capturer.Capture(c.Request.Context(), pid)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{
		"session": s,
		"url":     h.sessionURL(c, s.Port),
	})
}
