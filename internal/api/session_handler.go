package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gsarma/codeit/internal/code"
	"github.com/gsarma/codeit/internal/profile"
	"github.com/gsarma/codeit/internal/workflow"
)

// CreateSession opens a new editor session for the client.
func (h *Handler) CreateSession(c *gin.Context) {
	p := profile.FromContext(c)
	e, err := h.sessions.Create(c.Request.Context(), p)
	if err != nil {
		h.storageError(c, "failed to create session", err)
		return
	}
	writeSession(c, http.StatusCreated, e, nil)
}

func (h *Handler) GetSession(c *gin.Context) {
	e, ok := h.session(c)
	if !ok {
		return
	}
	writeSession(c, http.StatusOK, e, nil)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	e, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.sessions.Delete(e.Owner, e.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// SelectLanguage switches the session language, loading saved source or the
// starter template.
func (h *Handler) SelectLanguage(c *gin.Context) {
	e, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := e.Session.SelectLanguage(c.Request.Context(), body.Language); err != nil {
		if isBadRequest(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.storageError(c, "failed to load source", err)
		return
	}
	writeSession(c, http.StatusOK, e, nil)
}

// SetSource replaces and persists the editor text.
func (h *Handler) SetSource(c *gin.Context) {
	e, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		Source *string `json:"source" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := e.Session.SetSource(c.Request.Context(), *body.Source); err != nil {
		h.storageError(c, "failed to save source", err)
		return
	}
	writeSession(c, http.StatusOK, e, nil)
}

func (h *Handler) SetStdin(c *gin.Context) {
	e, ok := h.session(c)
	if !ok {
		return
	}
	var body struct {
		Stdin *string `json:"stdin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e.Session.SetStdin(*body.Stdin)
	writeSession(c, http.StatusOK, e, nil)
}

// Run executes the session source and returns the resulting state.
//
// The run is detached from the request: a client disconnect does not abort
// it, so the outcome still reaches other listeners. The provider's own
// timeout bounds it.
func (h *Handler) Run(c *gin.Context) {
	e, ok := h.session(c)
	if !ok {
		return
	}
	err := e.Session.Run(context.WithoutCancel(c.Request.Context()))

	var svcErr *code.ServiceError
	switch {
	case err == nil:
		writeSession(c, http.StatusOK, e, nil)
	case errors.Is(err, workflow.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrUnsupportedLanguage):
		writeSession(c, http.StatusUnprocessableEntity, e, err)
	case errors.As(err, &svcErr):
		writeSession(c, http.StatusBadGateway, e, svcErr)
	default:
		h.logger.Warn("run failed", zap.Stringer("session", e.ID), zap.Error(err))
		writeSession(c, http.StatusBadGateway, e, errors.New("execution service unreachable"))
	}
}

// Download returns the source as a code.<ext> attachment.
func (h *Handler) Download(c *gin.Context) {
	e, ok := h.session(c)
	if !ok {
		return
	}
	f := e.Session.Download()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Name))
	c.Data(http.StatusOK, f.ContentType, f.Content)
}
