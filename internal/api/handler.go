package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gsarma/codeit/internal/language"
	"github.com/gsarma/codeit/internal/profile"
	"github.com/gsarma/codeit/internal/session"
	"github.com/gsarma/codeit/internal/workflow"
)

type Handler struct {
	sessions *session.Manager
	profiles *profile.Service
	logger   *zap.Logger
}

func NewHandler(sessions *session.Manager, profiles *profile.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, profiles: profiles, logger: logger}
}

// sessionResponse is the JSON form of a session.
type sessionResponse struct {
	ID uuid.UUID `json:"id"`
	workflow.Snapshot
	Error string `json:"error,omitempty"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListLanguages returns the selectable languages with their pinned versions.
func (h *Handler) ListLanguages(c *gin.Context) {
	versions := h.sessions.Versions()
	out := make([]gin.H, 0, len(language.All()))
	for _, d := range language.All() {
		out = append(out, gin.H{
			"id":        d.ID,
			"label":     d.Label,
			"extension": d.Ext,
			"version":   versions.Version(d.ID),
		})
	}
	c.JSON(http.StatusOK, out)
}

// session resolves the :id parameter to a session of the calling client.
// On failure the response has been written.
func (h *Handler) session(c *gin.Context) (*session.Entry, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return nil, false
	}
	p := profile.FromContext(c)
	e, err := h.sessions.Get(p.ID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return e, true
}

func writeSession(c *gin.Context, status int, e *session.Entry, err error) {
	resp := sessionResponse{ID: e.ID, Snapshot: e.Session.Snapshot()}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}

// storageError logs err and writes a 500.
func (h *Handler) storageError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func isBadRequest(err error) bool {
	return errors.Is(err, workflow.ErrUnknownLanguage) ||
		errors.Is(err, profile.ErrUnknownTheme) ||
		errors.Is(err, profile.ErrBlankName)
}
