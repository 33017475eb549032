package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gwillem/hexapod/pkg/metric"
)

const maxMessageSize = 512

// WebSocketHandler answers each text message with one text message.
type WebSocketHandler struct {
	dispatcher Dispatcher
	metrics    *metric.Metrics
	upgrader   websocket.Upgrader
}

// NewWebSocketHandler creates a handler. m may be nil.
func NewWebSocketHandler(d Dispatcher, m *metric.Metrics) *WebSocketHandler {
	return &WebSocketHandler{
		dispatcher: d,
		metrics:    m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.WithFields(logrus.Fields{
		"session": uuid.NewString(),
		"remote":  r.RemoteAddr,
	})
	logger.Info("websocket client connected")
	opened(h.metrics, "websocket")
	defer closed(h.metrics, "websocket")

	conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Warn("websocket read failed")
			}
			break
		}

		resp := h.dispatcher.Dispatch(r.Context(), string(data))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(resp)); err != nil {
			logger.WithError(err).Warn("websocket write failed")
			break
		}
	}
	logger.Info("websocket client disconnected")
}
