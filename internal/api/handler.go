package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"request-approval-backend/internal/maintenance"
	"request-approval-backend/internal/mw"
	"request-approval-backend/internal/notification"
	"request-approval-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store         store.Store
	notifier      *notification.Notifier
	dispatcher    *notification.Dispatcher
	maintenance   *maintenance.Service
	loginLimiter  *mw.LoginLimiter
	adminPassword string
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, notifier *notification.Notifier, dispatcher *notification.Dispatcher, maint *maintenance.Service, limiter *mw.LoginLimiter, adminPassword string) *Handler {
	return &Handler{
		store:         s,
		notifier:      notifier,
		dispatcher:    dispatcher,
		maintenance:   maint,
		loginLimiter:  limiter,
		adminPassword: adminPassword,
	}
}

// bearerToken extracts the credential from an Authorization header.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) >= 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return auth[7:]
	}
	return ""
}

// isAdmin reports whether the request carries the admin password.
func (h *Handler) isAdmin(c *gin.Context) bool {
	if h.adminPassword == "" {
		return false
	}
	token := bearerToken(c)
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminPassword)) == 1
}

// RequireAdmin rejects requests lacking the admin bearer password.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.isAdmin(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
