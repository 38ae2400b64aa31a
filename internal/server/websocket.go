package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oggyb/matchbox/internal/domain"
	"github.com/oggyb/matchbox/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// MessageFeed opens a live stream of newly sent messages.
type MessageFeed interface {
	Subscribe(ctx context.Context) (<-chan domain.Message, func(), error)
}

// WSHandler pushes message-created events to browsers over a websocket.
type WSHandler struct {
	feed           MessageFeed
	allowedOrigins []string
	upgrader       websocket.Upgrader
	log            *slog.Logger
}

func NewWSHandler(feed MessageFeed, allowedOrigins []string, log *slog.Logger) *WSHandler {
	h := &WSHandler{
		feed:           feed,
		allowedOrigins: allowedOrigins,
		log:            log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed || allowed == "*" {
			return true
		}
	}
	return false
}

// Connect handles GET /ws/messages[?userId=]. With userId set only messages
// that user sent or received are pushed.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	ctx, cancel := context.WithCancel(context.Background())
	feed, stop, err := h.feed.Subscribe(ctx)
	if err != nil {
		cancel()
		h.log.Error("message feed unavailable", "err", err)
		http.Error(w, "message feed unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		stop()
		cancel()
		return
	}

	done := metrics.SubscriptionOpened("websocket")
	h.log.Debug("websocket subscribed", "user", userID)

	go h.readPump(conn, cancel)
	go func() {
		defer done()
		defer stop()
		defer cancel()
		h.writePump(ctx, conn, feed, userID)
	}()
}

// readPump discards client frames and cancels the subscription once the
// peer goes away.
func (h *WSHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) writePump(ctx context.Context, conn *websocket.Conn, feed <-chan domain.Message, userID string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case m, ok := <-feed:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, //nolint:errcheck
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "message feed closed"))
				return
			}
			if !m.Involves(userID) {
				continue
			}
			if err := conn.WriteJSON(m); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
