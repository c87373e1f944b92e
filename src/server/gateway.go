package server

import (
	"context"
	"encoding/json"
	"net/http"

	"volatility-scanner/src/helpers"
	"volatility-scanner/src/models"
	"volatility-scanner/src/scanner"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

// handleWebSocket wires one viewer connection to its own session and
// ingestion loop.
func (s *GatewayServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn)
	s.addClient(client)
	s.Logger.Info("Viewer connected (%d total)", s.clientCount())

	session := scanner.NewSession(s.Store, s.ScanState, client, s.Config.LogLevel)

	// The first viewer turns scanning on; the flag is never cleared here
	if s.ScanState.Activate(session) {
		s.Logger.Info("Scanning activated")
	}

	// Initial status and config push
	client.Send(models.NewStatusEvent(s.ScanState.Active()))
	client.Send(models.NewConfigEvent(s.Store.Get()))

	// Ingestion loop, cancelled the moment the viewer goes away
	ctx, cancel := context.WithCancel(context.Background())
	ingestor := scanner.NewIngestor(session, s.Selector, s.Dialer, s.Config.LogLevel)
	go ingestor.Run(ctx)

	go client.writePump()
	client.readPump(func(raw []byte) {
		s.handleCommand(session, raw)
	})

	// readPump returned: viewer is gone
	cancel()
	s.removeClient(client)
	s.Logger.Info("Viewer disconnected (%d total)", s.clientCount())
}

// -----------------------------------------------------------------------------
// Command Dispatch
// -----------------------------------------------------------------------------

func (s *GatewayServer) handleCommand(session *scanner.Session, raw []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		s.Logger.Info("Unparsable viewer command: %v", err)
		return
	}

	if err := session.HandleCommand(cmd); err != nil {
		if helpers.IsInvalidConfiguration(err) {
			s.Logger.Warning("Rejected viewer command: %v", err)
			return
		}
		// Delivery failures resolve themselves via readPump exit
		s.Logger.Debug("Command not acknowledged: %v", err)
	}
}
