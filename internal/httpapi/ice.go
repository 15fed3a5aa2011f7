package httpapi

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/config"
)

// iceServerConfig is the client-facing ICE bundle.
type iceServerConfig struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

// iceServersHandler serves the STUN list plus, when TURN is
// configured, a time-limited TURN credential: username is the expiry
// unix timestamp and credential is base64(HMAC-SHA1(username, secret)),
// the long-term credential scheme TURN servers like coturn verify
// without a database. Missing TURN config degrades the response to
// STUN-only rather than failing the request.
func iceServersHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		servers := make([]webrtc.ICEServer, 0, len(cfg.ICE.STUNURLs)+1)
		for _, url := range cfg.ICE.STUNURLs {
			servers = append(servers, webrtc.ICEServer{URLs: []string{url}})
		}

		if cfg.ICE.TURNServerIP != "" && cfg.ICE.TURNSecret != "" {
			username, credential := mintTURNCredential(cfg.ICE.TURNSecret, cfg.ICE.TURNCredTTL)
			servers = append(servers, webrtc.ICEServer{
				URLs:       []string{"turn:" + cfg.ICE.TURNServerIP + ":3478"},
				Username:   username,
				Credential: credential,
			})
		}

		log.Debug().Str("module", "httpapi").Int("servers", len(servers)).Msg("ice config served")
		c.JSON(http.StatusOK, iceServerConfig{ICEServers: servers})
	}
}

func mintTURNCredential(secret string, ttl time.Duration) (username, credential string) {
	expiry := time.Now().Add(ttl).Unix()
	username = strconv.FormatInt(expiry, 10)

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(username))
	credential = base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return username, credential
}
