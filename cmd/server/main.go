package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/broadcast"
	"github.com/studycrew/presence/internal/config"
	"github.com/studycrew/presence/internal/gateway"
	"github.com/studycrew/presence/internal/httpapi"
	"github.com/studycrew/presence/internal/identity"
	"github.com/studycrew/presence/internal/presence"
	"github.com/studycrew/presence/internal/signaling"
	"github.com/studycrew/presence/internal/store/redisstore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable")
	}

	// Presence state lives in the shared store; every instance behind
	// the gateway coordinates through it.
	st := redisstore.New(rdb)
	sessions := presence.NewSessionRegistry(st, cfg.SessionTTL)
	rooms := presence.NewRoomTracker(st, sessions, cfg.SessionTTL)
	facade := presence.NewFacade(sessions, rooms)

	gw := broadcast.NewGateway(broadcast.NewRedisPublisher(rdb), facade)
	rooms.AttachAnnouncer(broadcast.NewEvents(gw))

	limiter := signaling.NewRateLimiter(cfg.SignalRateLimit, cfg.SignalRateWindow)
	relay := signaling.NewRelay(signaling.NewValidator(rooms), gw, limiter)

	hub := gateway.NewHub()
	verifier := identity.NewHMACVerifier(cfg.Secret)
	ctl := gateway.NewController(cfg, verifier, facade, relay, limiter, hub)

	// Bridge the shared pub/sub bus into this instance's connections.
	sub := broadcast.NewRedisSubscriber(rdb)
	go sub.Run(ctx, hub.Deliver)

	r := httpapi.SetupRouter(ctx, cfg, ctl, facade)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("presence server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
