package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"satwatch/cache"
	"satwatch/chaincfg"
	"satwatch/collector"
	"satwatch/config"
	"satwatch/database"
	"satwatch/projection"
	"satwatch/rpcserver"
	"satwatch/socks"
	"satwatch/upstream"
)

func parseLogLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logrus.SetOutput(file)
			defer file.Close()
		} else {
			logrus.Warnf("Failed to open log file %s: %v", cfg.LogFile, err)
		}
	}

	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logrus.SetLevel(parseLogLevel(cfg.LogLevel))

	logrus.WithFields(logrus.Fields{
		"listen_addr":   cfg.ListenAddr,
		"poll_interval": cfg.PollInterval,
	}).Info("Starting satwatch")

	params := &chaincfg.MainNetParams

	// Initialize outbound proxy
	proxyClient, err := socks.NewClient(socks.Config{
		Enabled:   cfg.ProxyEnabled,
		ProxyAddr: cfg.ProxyAddr,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize SOCKS proxy: %v", err)
	}

	proxyStatus := "disabled"
	if proxyClient.IsEnabled() {
		proxyStatus = fmt.Sprintf("enabled (%s)", proxyClient.GetProxyAddr())
	}

	// Wire upstream chain-stat sources in priority order
	var sources []upstream.Source
	if cfg.BlockchainInfoEnabled {
		sources = append(sources, upstream.NewBlockchainInfoSource(cfg.BlockchainInfoURL, cfg.RequestTimeout, proxyClient))
	}
	if cfg.MempoolSpaceEnabled {
		sources = append(sources, upstream.NewMempoolSpaceSource(cfg.MempoolSpaceURL, params, cfg.RequestTimeout, proxyClient))
	}
	if len(sources) == 0 {
		logrus.Fatal("No upstream sources enabled")
	}
	aggregator := upstream.NewAggregator(sources...)

	var priceSource upstream.PriceSource
	if cfg.PriceEnabled {
		priceSource = upstream.NewCoinGeckoSource(cfg.CoinGeckoURL, cfg.RequestTimeout, proxyClient)
	}

	// Open snapshot database
	store, err := database.NewStorage(cfg.DataDir)
	if err != nil {
		logrus.Fatalf("Failed to open snapshot database: %v", err)
	}
	defer store.Close()

	// Response cache
	respCache, err := cache.New(cfg.CacheTTL)
	if err != nil {
		logrus.Fatalf("Failed to create response cache: %v", err)
	}
	defer respCache.Close()

	calc := projection.NewCalculator(params)

	// Single startup info line
	fmt.Printf("satwatch [%s] | Proxy: %s | Poll: %s | Sources: %d | Halving every %d blocks\n",
		params.Name, proxyStatus, cfg.PollInterval, len(sources), params.HalvingInterval)

	// Start the refresh loop
	coll := collector.New(calc, aggregator, priceSource, store, cfg.PollInterval, cfg.RequestTimeout)
	coll.Start()

	// Start the API server
	server := rpcserver.NewServer(coll, respCache, cfg.ListenAddr, cfg.RateLimitMax)
	go func() {
		if err := server.Start(); err != nil {
			logrus.Printf("API server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the service
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logrus.Info("Shutdown signal received, initiating graceful shutdown...")
	fmt.Println("\nShutting down gracefully...")

	// Stop components in reverse order
	logrus.Info("Stopping API server...")
	if err := server.Stop(); err != nil {
		logrus.Errorf("Error stopping API server: %v", err)
	}

	logrus.Info("Stopping collector...")
	coll.Stop()

	logrus.Info("Closing snapshot database...")
	store.Close()

	logrus.Info("Shutdown complete")
	fmt.Println("Shutdown complete")
}
