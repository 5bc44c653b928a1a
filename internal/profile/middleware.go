package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ctxKey = "profile"

	// CookieName holds the sealed client id.
	CookieName = "codeit_client"
	cookieAge  = 365 * 24 * 60 * 60
)

// Middleware resolves the client from its identity cookie and sets the
// profile in context. Clients without a valid cookie get a new identity.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.Nil
		if value, err := c.Cookie(CookieName); err == nil {
			if parsed, err := s.openID(value); err == nil {
				id = parsed
			} else {
				s.logger.Debug("discarding invalid client cookie", zap.Error(err))
			}
		}

		if id == uuid.Nil {
			id = uuid.New()
			sealed, err := s.sealID(id)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to issue client id"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, sealed, cookieAge, "/", "", c.Request.TLS != nil, true)
		}

		p, err := s.Get(c.Request.Context(), id)
		if err != nil {
			s.logger.Error("load profile", zap.Stringer("client", id), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			return
		}

		c.Set(ctxKey, p)
		c.Next()
	}
}

// FromContext retrieves the client profile from the Gin context.
func FromContext(c *gin.Context) *Profile {
	p, _ := c.Get(ctxKey)
	profile, _ := p.(*Profile)
	return profile
}

// WithProfile stores p in c; used when the middleware is not in the chain.
func WithProfile(c *gin.Context, p *Profile) {
	c.Set(ctxKey, p)
}
