package main

import (
	"flag"
	"fmt"
	"os"

	"volatility-scanner/src/config"
	"volatility-scanner/src/interfaces"
	"volatility-scanner/src/logger"
	"volatility-scanner/src/market"
	"volatility-scanner/src/network"
	"volatility-scanner/src/scanner"
	"volatility-scanner/src/server"
	"volatility-scanner/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load bootstrap config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// Storage for selection snapshots
	var store interfaces.IRankingStore
	switch cfg.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresRankingStore(cfg.MConfig, appLogger)
	default:
		store, err = storage.NewSQLiteRankingStore(cfg.MConfig, appLogger)
	}
	if err != nil {
		appLogger.Critical("Failed to init storage: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate storage: %v", err)
	}
	defer store.Close()

	// Market access
	netMgr := network.NewManager(cfg.MConfig, appLogger)
	selector := market.NewSelector(cfg.MConfig, netMgr, store)
	dialer := market.NewStreamDialer(cfg.MConfig)

	// Shared scan configuration and process state
	scanStore := config.NewStore(cfg.Scan)
	scanState := scanner.NewState()

	// Gateway
	srv := server.NewGatewayServer(cfg.MConfig, appLogger, scanStore, scanState, selector, dialer, store)
	if err := srv.Start(); err != nil {
		appLogger.Critical("Server stopped: %v", err)
	}
}
