package peer

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// Conn is a duplex connection to one peer's communication server, carrying
// JSON-encoded Envelopes in both directions.
type Conn struct {
	ws *websocket.Conn
}

// Dial opens a client connection to a peer's communication endpoint, e.g.
// "ws://peer.internal:9000/v1/comm/events".
func Dial(url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing peer %s: %w", url, err)
	}
	return &Conn{ws: ws}, nil
}

// upgrader accepts connections from any origin: peers identify themselves
// by the envelope's SenderID, not by request origin.
var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// Accept upgrades an incoming HTTP request to a Conn. Call it from the
// handler mounted at the communication server's events route.
func Accept(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrading peer connection: %w", err)
	}
	return &Conn{ws: ws}, nil
}

// Send writes env to the connection.
func (c *Conn) Send(env Envelope) error {
	return c.ws.WriteJSON(env)
}

// Receive blocks until the next envelope arrives.
func (c *Conn) Receive() (Envelope, error) {
	var env Envelope
	if err := c.ws.ReadJSON(&env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// WSDialer dials a peer's communication endpoint over gorilla/websocket. It
// implements comm.Dialer without comm needing to be imported here, keeping
// the dependency edge pointing from comm down to peer.
type WSDialer struct {
	scheme string
}

// NewWSDialer builds a WSDialer using ws:// URLs. Pass scheme "wss" for a
// TLS-terminated deployment.
func NewWSDialer(scheme string) WSDialer {
	if scheme == "" {
		scheme = "ws"
	}
	return WSDialer{scheme: scheme}
}

// DialPeer opens a connection to p's communication server.
func (d WSDialer) DialPeer(p Peer) (*Conn, error) {
	return Dial(fmt.Sprintf("%s://%s/v1/comm/events", d.scheme, p.Address))
}
