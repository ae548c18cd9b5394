package bridge

import (
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/yuanying/sketch2penpot/internal/plugin"
)

// TypeBridgeError is sent when a frame cannot be decoded as a message.
const TypeBridgeError = "bridge-error"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The UI is served from the host application, not from this server.
		return true
	},
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

// wsConn serializes writes to one connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg plugin.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// handleWebSocket upgrades the connection and handles every text frame as
// one inbound message until the client goes away.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ws := &wsConn{conn: conn}
	logger := s.log.With("remote", c.RealIP())
	logger.Info("websocket client connected")

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket connection error", "error", err)
			}
			break
		}
		if kind != websocket.TextMessage {
			continue
		}

		msg, err := plugin.DecodeMessage(data)
		if err != nil {
			logger.Warn("invalid websocket frame", "error", err)
			reply, _ := plugin.NewMessage(TypeBridgeError, plugin.Failure{Error: err.Error()})
			if err := ws.send(reply); err != nil {
				break
			}
			continue
		}

		if err := s.dispatch(c.Request().Context(), msg, ws.send); err != nil {
			logger.Warn("message handling failed", "type", msg.Type, "error", err)
		}
	}

	logger.Info("websocket client disconnected")
	return nil
}
