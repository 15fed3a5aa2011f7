package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studycrew/presence/internal/config"
	"github.com/studycrew/presence/internal/presence"
)

// healthHandler is a pure read: service liveness plus the online
// gauge and the timing contract clients should follow.
func healthHandler(cfg *config.Config, facade *presence.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":            "presence",
			"status":             "running",
			"timestamp":          time.Now().UTC(),
			"online_users":       facade.OnlineCount(c.Request.Context()),
			"session_ttl":        cfg.SessionTTL.String(),
			"heartbeat_interval": cfg.HeartbeatInterval.String(),
		})
	}
}
