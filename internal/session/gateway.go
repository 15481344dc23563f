package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/taratriia/market-analyzer/internal/domain"
)

// ErrPeerClosed reports that the client went away. It is a reason to stop
// sending, never a condition to report back.
var ErrPeerClosed = errors.New("peer closed connection")

// Transport is the session's view of the bidirectional connection. Every
// read and send returns an explicit result; disconnects surface as
// ErrPeerClosed rather than as an out-of-band signal.
type Transport interface {
	ReadMessage() ([]byte, error)
	Send(domain.Event) error
}

// Gateway adapts one websocket connection to Transport. One instance per
// connection; stateless across sessions.
type Gateway struct {
	conn *websocket.Conn
}

func NewGateway(conn *websocket.Conn) *Gateway {
	return &Gateway{conn: conn}
}

func (g *Gateway) ReadMessage() ([]byte, error) {
	_, data, err := g.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeerClosed, err)
	}
	return data, nil
}

func (g *Gateway) Send(ev domain.Event) error {
	if err := g.conn.WriteJSON(ev); err != nil {
		return fmt.Errorf("%w: %v", ErrPeerClosed, err)
	}
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades each request to a websocket and runs one session on it.
func Handler(orc *Orchestrator, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()
		orc.Run(r.Context(), NewGateway(conn))
	}
}
