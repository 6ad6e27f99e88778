package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/remotehub/internal/domain/folders"
	"github.com/GriffinCanCode/remotehub/internal/domain/session"
)

// ListSessions returns the registry snapshot
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.registry.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	c.Header("Cache-Control", "no-cache, no-store")
	c.JSON(http.StatusOK, sessions)
}

// StartSession starts or resumes a session. The optional dir query is
// resolved against the browsing root.
func (h *Handlers) StartSession(c *gin.Context) {
	var err error
	done := h.track.Track("start")
	defer func() { done(err) }()

	opts := session.StartOptions{
		SkipPermissions: c.Query("skip_permissions") == "1",
	}
	if dir := c.Query("dir"); dir != "" {
		opts.Dir, err = h.folders.Resolve(dir)
		if err != nil {
			if !errors.Is(err, folders.ErrPathTraversal) {
				err = fmt.Errorf("%w: %v", session.ErrInvalidDirectory, err)
			}
			h.fail(c, err)
			return
		}
	}

	s, err := h.sessions.Start(c.Request.Context(), c.Param("name"), opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{
		"session": s,
		"url":     h.sessionURL(c, s.Port),
	})
}

// StopSession tears a session down. Stopping an absent session succeeds.
func (h *Handlers) StopSession(c *gin.Context) {
	var err error
	done := h.track.Track("stop")
	defer func() { done(err) }()

	name := c.Param("name")
	if err = h.sessions.Stop(c.Request.Context(), name); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"name": name})
}

// Readiness reports whether the session's bridge accepts connections
func (h *Handlers) Readiness(c *gin.Context) {
	ready, err := h.sessions.Readiness(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache, no-store")
	c.JSON(http.StatusOK, ready)
}

type keyRequest struct {
	Key string `json:"key"`
}

type textRequest struct {
	Text string `json:"text"`
}

type scrollRequest struct {
	Direction string `json:"direction"`
}

// SendKeys relays one whitelisted key
func (h *Handlers) SendKeys(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := h.sessions.SendKeys(c.Request.Context(), c.Param("name"), req.Key); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, nil)
}

// SendText pastes text into the session
func (h *Handlers) SendText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := h.sessions.SendText(c.Request.Context(), c.Param("name"), req.Text); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, nil)
}

// Scroll pages the session's scrollback
func (h *Handlers) Scroll(c *gin.Context) {
	var req scrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := h.sessions.Scroll(c.Request.Context(), c.Param("name"), req.Direction); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, nil)
}

// sessionURL points at the session's bridge on the host the client used
// to reach the hub.
func (h *Handlers) sessionURL(c *gin.Context, port int) string {
	host := c.Request.Host
	if hostname, _, err := net.SplitHostPort(host); err == nil {
		host = hostname
	}
	host = strings.Trim(host, "[]")
	if host == "" {
		host = "localhost"
	}
	scheme := "http"
	if h.tls {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/"
}
