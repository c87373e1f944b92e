package server

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"volatility-scanner/src/config"
	"volatility-scanner/src/interfaces"
	"volatility-scanner/src/logger"
	"volatility-scanner/src/models"
	"volatility-scanner/src/scanner"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Gateway Server
// -----------------------------------------------------------------------------

type GatewayServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Store     *config.Store
	ScanState *scanner.State
	Selector  interfaces.ISymbolSelector
	Dialer    interfaces.IStreamDialer
	Storage   interfaces.IRankingStore

	engine *gin.Engine

	// Connected viewers
	clients   map[*Client]struct{}
	clientsMu sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewGatewayServer(
	cfg *models.MConfig,
	log *logger.Logger,
	store *config.Store,
	state *scanner.State,
	selector interfaces.ISymbolSelector,
	dialer interfaces.IStreamDialer,
	storage interfaces.IRankingStore,
) *GatewayServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &GatewayServer{
		Config:    cfg,
		Logger:    log,
		Store:     store,
		ScanState: state,
		Selector:  selector,
		Dialer:    dialer,
		Storage:   storage,
		engine:    gin.Default(),
		clients:   make(map[*Client]struct{}),
	}

	// CORS for local front ends
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *GatewayServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/universe", s.getUniverse)

	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *GatewayServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting gateway on %s", addr)
	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------
// Client Registry
// -----------------------------------------------------------------------------

func (s *GatewayServer) addClient(c *Client) {
	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) removeClient(c *Client) {
	s.clientsMu.Lock()
	delete(s.clients, c)
	s.clientsMu.Unlock()
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) clientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *GatewayServer) getHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":      "ok",
		"connections": s.clientCount(),
		"active":      s.ScanState.Active(),
	})
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"config": s.Store.Get(),
	})
}

// -----------------------------------------------------------------------------

// getUniverse returns the latest instrument-selection snapshot.
func (s *GatewayServer) getUniverse(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.Storage.LatestRanking(limit)
	if err != nil {
		s.Logger.Error("Failed to load ranking snapshot: %v", err)
		c.JSON(500, gin.H{"error": "ranking snapshot unavailable"})
		return
	}

	c.JSON(200, gin.H{"universe": entries})
}
