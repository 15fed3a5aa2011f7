package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/broadcast"
	"github.com/studycrew/presence/internal/config"
	"github.com/studycrew/presence/internal/domain"
	"github.com/studycrew/presence/internal/identity"
	"github.com/studycrew/presence/internal/presence"
	"github.com/studycrew/presence/internal/signaling"
)

const writeDeadline = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller owns the websocket endpoint: identity verification,
// session registration, pump lifecycle and inbound dispatch.
type Controller struct {
	cfg      *config.Config
	verifier identity.Verifier
	facade   *presence.Facade
	relay    *signaling.Relay
	limiter  *signaling.RateLimiter
	hub      *Hub
}

func NewController(
	cfg *config.Config,
	verifier identity.Verifier,
	facade *presence.Facade,
	relay *signaling.Relay,
	limiter *signaling.RateLimiter,
	hub *Hub,
) *Controller {
	return &Controller{
		cfg:      cfg,
		verifier: verifier,
		facade:   facade,
		relay:    relay,
		limiter:  limiter,
		hub:      hub,
	}
}

// HandleWS upgrades the request and runs the connection until it
// closes. Registration failure is fatal to the connection: a client
// without a session record is told so and dropped.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	userID, err := ctl.verifier.Verify(c.Query("token"))
	if err != nil {
		log.Warn().Err(err).Str("module", "gateway").Msg("rejected unverified connection")
		c.JSON(http.StatusUnauthorized, gin.H{"code": domain.ErrorCode(err), "message": "identity verification failed"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	connID := domain.ConnectionID(uuid.NewString())
	log.Info().Str("module", "gateway").
		Str("user_id", string(userID)).
		Str("conn_id", string(connID)).
		Msg("new WS connection")

	if err := ctl.facade.Connect(ctx, userID, connID); err != nil {
		log.Error().Err(err).Str("module", "gateway").
			Str("user_id", string(userID)).
			Msg("session registration failed")
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "registration failed"),
			time.Now().Add(writeDeadline))
		_ = ws.Close()
		return
	}

	conn := newConn(connID, userID, ctl.cfg.SendBuffer)
	ctl.hub.Subscribe(broadcast.UserChannel(userID, broadcast.DestSignaling), conn)
	ctl.hub.Subscribe(broadcast.UserChannel(userID, broadcast.DestErrors), conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, ws, conn)
	go ctl.readPump(ctx, cancel, ws, conn)
}

func (ctl *Controller) writePump(ctx context.Context, ws *websocket.Conn, c *Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := ws.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				log.Error().Err(err).Str("module", "gateway").Msg("writePump set deadline")
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "gateway").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, c *Conn) {
	defer func() {
		cancel()
		ctl.teardown(c)
		c.close()
		_ = ws.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "gateway").
						Str("conn_id", string(c.id)).
						Msg("readPump abnormal close")
				}
				return
			}
			ctl.dispatch(ctx, c, data)
		}
	}
}

// teardown runs the disconnect path. Everything here is best effort:
// the connection is gone either way, and a half-cleaned room heals on
// the next read.
func (ctl *Controller) teardown(c *Conn) {
	ctl.hub.UnsubscribeAll(c)
	ctl.limiter.Forget(c.userID)

	// The parent context may already be canceled (shutdown); cleanup
	// still deserves a bounded window.
	ctx, cancel := context.WithTimeout(context.Background(), writeDeadline)
	defer cancel()
	if err := ctl.facade.Disconnect(ctx, c.id); err != nil {
		log.Error().Err(err).Str("module", "gateway").
			Str("conn_id", string(c.id)).
			Msg("disconnect cleanup failed")
	}
	log.Info().Str("module", "gateway").
		Str("conn_id", string(c.id)).
		Str("user_id", string(c.userID)).
		Msg("connection closed")
}
