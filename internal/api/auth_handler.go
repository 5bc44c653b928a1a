package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gsarma/codeit/internal/profile"
)

// Login records a display name for the client. No password is checked.
func (h *Handler) Login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name, err := profile.FromContext(c).Login(c.Request.Context(), body.Username)
	if err != nil {
		if errors.Is(err, profile.ErrBlankName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.storageError(c, "failed to log in", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": name, "logged_in": true})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := profile.FromContext(c).Logout(c.Request.Context()); err != nil {
		h.storageError(c, "failed to log out", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_in": false})
}

// Me reports the client's login state and theme.
func (h *Handler) Me(c *gin.Context) {
	p := profile.FromContext(c)
	name, ok, err := p.User(c.Request.Context())
	if err != nil {
		h.storageError(c, "failed to load user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":  name,
		"logged_in": ok,
		"theme":     p.Theme.Get(),
	})
}
