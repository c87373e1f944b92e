package server

import (
	"sync"
	"time"

	"volatility-scanner/src/helpers"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client is one connected viewer. It implements interfaces.IEventSink for
// the session that owns it: events are queued on send and written by
// writePump.
type Client struct {
	gateway *GatewayServer
	conn    *websocket.Conn
	send    chan interface{}

	closeOnce sync.Once
	closed    chan struct{}
}

// -----------------------------------------------------------------------------

func newClient(gateway *GatewayServer, conn *websocket.Conn) *Client {
	return &Client{
		gateway: gateway,
		conn:    conn,
		// Buffered so bursts of signals don't block the ingestion loop
		send:   make(chan interface{}, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Send queues one outbound event. A closed connection or a full buffer
// (viewer too slow to matter) is a DeliveryFailure.
func (c *Client) Send(event interface{}) error {
	select {
	case <-c.closed:
		return helpers.NewDeliveryFailure("viewer disconnected", nil)
	default:
	}

	select {
	case c.send <- event:
		return nil
	case <-c.closed:
		return helpers.NewDeliveryFailure("viewer disconnected", nil)
	default:
		return helpers.NewDeliveryFailure("viewer send buffer full", nil)
	}
}

// -----------------------------------------------------------------------------

// shutdown marks the client dead; safe to call from any goroutine, any
// number of times.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// -----------------------------------------------------------------------------
// readPump - handles incoming commands from the viewer
// Acts as the watchdog for the connection
// -----------------------------------------------------------------------------

// readPump blocks until the viewer disconnects, feeding each raw message
// to onMessage.
func (c *Client) readPump(onMessage func([]byte)) {
	defer c.shutdown()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.gateway.Logger.Info("Viewer socket error: %v", err)
			}
			return
		}
		onMessage(message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends events to the viewer
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case event := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				c.gateway.Logger.Info("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
