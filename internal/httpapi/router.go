// Package httpapi assembles the gin router: the websocket endpoint
// plus the read-only ICE configuration and health surfaces.
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/config"
	"github.com/studycrew/presence/internal/gateway"
	"github.com/studycrew/presence/internal/presence"
)

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *gateway.Controller, facade *presence.Facade) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(ctx, c)
	})

	api := r.Group("/api")
	api.GET("/webrtc/ice-servers", iceServersHandler(cfg))
	api.GET("/ws/health", healthHandler(cfg, facade))

	log.Info().Str("module", "httpapi").Msg("router setup")
	return r
}
