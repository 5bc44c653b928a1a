package api

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)
	r.GET("/languages", h.ListLanguages)
	r.GET("/themes", h.ListThemes)

	// Client routes: the profile comes from the identity cookie.
	client := r.Group("/", h.profiles.Middleware())
	{
		client.GET("/theme", h.GetTheme)
		client.PUT("/theme", h.SetTheme)

		client.POST("/login", h.Login)
		client.POST("/logout", h.Logout)
		client.GET("/me", h.Me)

		client.POST("/sessions", h.CreateSession)
		client.GET("/sessions/:id", h.GetSession)
		client.DELETE("/sessions/:id", h.DeleteSession)
		client.PUT("/sessions/:id/language", h.SelectLanguage)
		client.PUT("/sessions/:id/source", h.SetSource)
		client.PUT("/sessions/:id/stdin", h.SetStdin)
		client.POST("/sessions/:id/run", h.Run)
		client.GET("/sessions/:id/download", h.Download)
		client.GET("/sessions/:id/events", h.Events)
	}
}
