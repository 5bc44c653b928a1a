package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gsarma/codeit/internal/profile"
	"github.com/gsarma/codeit/internal/theme"
)

// ListThemes returns the selectable themes.
func (h *Handler) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, theme.Names())
}

func (h *Handler) GetTheme(c *gin.Context) {
	name := profile.FromContext(c).Theme.Get()
	c.JSON(http.StatusOK, gin.H{"theme": name, "editor_theme": theme.EditorTheme(name)})
}

// SetTheme persists the theme and applies it to every open session of the
// client.
func (h *Handler) SetTheme(c *gin.Context) {
	var body struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := profile.FromContext(c)
	if err := p.SetTheme(c.Request.Context(), body.Theme); err != nil {
		if errors.Is(err, profile.ErrUnknownTheme) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.storageError(c, "failed to save theme", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": body.Theme, "editor_theme": theme.EditorTheme(body.Theme)})
}
