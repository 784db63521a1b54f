package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"sheet-news/backend/internal/stocks"
)

// StreamEvent describes websocket payloads emitted while a batch runs.
type StreamEvent struct {
	Type      string                  `json:"type"`
	SessionID string                  `json:"session_id"`
	Stock     string                  `json:"stock,omitempty"`
	Total     int                     `json:"total,omitempty"`
	Succeeded int                     `json:"succeeded,omitempty"`
	Failed    int                     `json:"failed,omitempty"`
	Result    *stocks.StockNewsResult `json:"result,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

const (
	eventStarted = "started"
	eventResult  = "result"
	eventError   = "error"
	eventDone    = "done"
)

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}

func (c *wsClient) send(event StreamEvent) error {
	event.Timestamp = time.Now().UTC()
	return c.writeJSON(event)
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = c.conn.Close()
	c.conn = nil
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}
}

// handleStockNewsStream runs a batch lookup and pushes each name's outcome
// as soon as it completes, followed by a done event.
func (s *Server) handleStockNewsStream(c *gin.Context) {
	names := streamNames(c)
	if len(names) == 0 {
		s.renderError(c, http.StatusBadRequest, stocks.Validation("Stocks array required"))
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}
	client := &wsClient{conn: conn}
	defer client.close()

	sessionID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{
		"session_id": sessionID,
		"remote":     conn.RemoteAddr().String(),
		"stocks":     len(names),
	})
	log.Info("stock news stream connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		// A read error means the peer went away.
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.WithError(err).Warn("stock news stream unexpected close")
				}
				return
			}
		}
	}()

	if err := client.send(StreamEvent{Type: eventStarted, SessionID: sessionID, Total: len(names)}); err != nil {
		log.WithError(err).Warn("write stream event")
		return
	}

	var succeeded, failed int
	s.stocks.StreamStockNews(ctx, names, func(item stocks.BatchItem) {
		event := StreamEvent{SessionID: sessionID, Stock: item.Name}
		if item.Err != nil {
			failed++
			event.Type = eventError
			event.Message = item.Err.Error()
		} else {
			succeeded++
			event.Type = eventResult
			event.Result = item.Result
		}
		if ctx.Err() != nil {
			return
		}
		if err := client.send(event); err != nil {
			log.WithError(err).Warn("write stream event")
			cancel()
		}
	})

	if ctx.Err() != nil {
		log.Info("stock news stream closed before completion")
		return
	}
	if err := client.send(StreamEvent{
		Type:      eventDone,
		SessionID: sessionID,
		Total:     len(names),
		Succeeded: succeeded,
		Failed:    failed,
	}); err != nil {
		log.WithError(err).Warn("write stream event")
		return
	}
	log.WithFields(logrus.Fields{"succeeded": succeeded, "failed": failed}).Info("stock news stream finished")
}

// streamNames accepts repeated ?stocks= parameters as well as comma lists.
func streamNames(c *gin.Context) []string {
	var names []string
	for _, raw := range c.QueryArray("stocks") {
		for _, part := range strings.Split(raw, ",") {
			if name := strings.TrimSpace(part); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}
