package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"request-approval-backend/config"
	"request-approval-backend/internal/maintenance"
	"request-approval-backend/internal/mw"
	"request-approval-backend/internal/notification"
	"request-approval-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, notifier *notification.Notifier, dispatcher *notification.Dispatcher, maint *maintenance.Service) *gin.Engine {
	r := gin.Default()

	r.Use(mw.SecurityHeaders())
	if len(cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.Server.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:       24 * time.Hour,
		}))
	}

	loginLimiter := mw.NewLoginLimiter(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	handler := NewHandler(s, notifier, dispatcher, maint, loginLimiter, cfg.Auth.AdminPassword)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst))
	{
		api.GET("/requests", handler.ListRequests)
		api.POST("/requests", handler.CreateRequest)

		api.POST("/admin/auth", handler.Login)

		admin := api.Group("", handler.RequireAdmin())
		{
			admin.PATCH("/requests/:id", handler.UpdateRequest)
			admin.DELETE("/requests/:id", handler.DeleteRequest)

			admin.POST("/admin/tokens", handler.UpsertToken)

			admin.POST("/admin/maintenance/backup", handler.RunBackup)
			admin.POST("/admin/maintenance/sync", handler.RunStatusSync)
		}
	}

	return r
}
