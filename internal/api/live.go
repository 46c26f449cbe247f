package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/live"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

// LiveHandler streams a user's change events over a websocket.
type LiveHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewLiveHandler accepts upgrades from allowedOrigins; "*" allows any.
func NewLiveHandler(hub *live.Hub, allowedOrigins []string, log logrus.FieldLogger) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log.WithField("handler", "live"),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

func (h *LiveHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/live", h.Stream)
}

// collections parses ?c=tasks,menu. An empty list follows everything.
func collections(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Stream upgrades the request and forwards events until either side closes.
func (h *LiveHandler) Stream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(userID, collections(c.Query("c"))...)
	sub.Start()
	defer sub.Stop()

	log := h.log.WithField("user_id", userID)
	log.Debug("live stream opened")

	// The read loop only watches for the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.WithError(err).Debug("live write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			log.WithField("dropped", sub.Dropped()).Debug("live stream closed")
			return
		}
	}
}
