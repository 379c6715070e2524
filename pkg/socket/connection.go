package socket

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/metrics"
	"github.com/cuemby/pairstream/pkg/types"
)

// welcomeMessage is the first frame sent to every connecting client.
type welcomeMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	logger := s.logger.With().Str("client_id", clientID).Logger()
	logger.Info().Msg("websocket client connected")

	sub := s.hub.Subscribe(clientID, events.Filter{})
	s.clientCount.Add(1)
	metrics.SubscribersConnected.WithLabelValues("websocket").Inc()
	defer func() {
		s.hub.Unsubscribe(sub)
		s.clientCount.Add(-1)
		metrics.SubscribersConnected.WithLabelValues("websocket").Dec()
		logger.Info().Msg("websocket client disconnected")
	}()

	welcome := welcomeMessage{
		Type:     "welcome",
		ClientID: clientID,
		Message:  "connected, streaming live swap and position updates",
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(welcome); err != nil {
		logger.Warn().Err(err).Msg("failed to send welcome frame")
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	closed := make(chan struct{})
	go readPump(conn, closed)

	msgCh, recvDone := relayMessages(sub, closed)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-recvDone:
			logger.Warn().Msg("client too slow, evicted")
			return
		case msg := <-msgCh:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn().Err(err).Msg("failed to forward message")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

// readPump drains and discards everything the client sends. This
// endpoint is server-to-client only, but a read loop is required to
// process control frames (pong, close) and notice the client hanging
// up: gorilla/websocket only surfaces those through Read.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// relayMessages pumps hub messages matching sub's filter onto msgCh
// until the subscriber is evicted for lag (closing recvDone) or closed
// fires. It keeps the websocket connection's only write loop in the
// caller, since gorilla/websocket permits one concurrent writer.
func relayMessages(sub *events.Subscriber, closed <-chan struct{}) (<-chan types.OutboundMessage, <-chan struct{}) {
	msgCh := make(chan types.OutboundMessage)
	recvDone := make(chan struct{})
	go func() {
		for {
			msg, ok, err := sub.Receive(closed)
			if err != nil {
				close(recvDone)
				return
			}
			if !ok {
				return
			}
			select {
			case msgCh <- msg:
			case <-closed:
				return
			}
		}
	}()
	return msgCh, recvDone
}
