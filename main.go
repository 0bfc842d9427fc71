package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	av "github.com/fundbuilder/saver/api/alphavantage"
	c "github.com/fundbuilder/saver/core"
	r "github.com/fundbuilder/saver/repos"
)

type Config struct {
	Addr            string   `envconfig:"ADDR" default:":8080"`
	DatabaseUrl     string   `envconfig:"DATABASE_URL" required:"true"`
	AlphaVantageKey string   `envconfig:"ALPHAVANTAGE_API_KEY"`
	SyncSymbols     []string `envconfig:"SYNC_SYMBOLS" default:"SPY"`
}

func main() {
	// listen for interrupt and term signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load in environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("saver", &cfg); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// get alpha vantage client
	avClient := av.GetClient(cfg.AlphaVantageKey)

	// get postgres connection
	postgresConnection, err := r.GetPostgresConnection(ctx, cfg.DatabaseUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer postgresConnection.Close()

	sc := &c.ServiceContext{
		Context:            ctx,
		PostgresConnection: postgresConnection,
		MarketDataClient:   avClient,
	}

	// refresh the configured symbols in the background so the first analyze
	// request does not pay for a full alpha vantage download
	go syncStartupSymbols(sc, cfg.SyncSymbols)

	// get http server, makes all of the endpoints and routes
	s := c.GetHttpServer(sc, cfg.Addr)

	// start http server in goroutine
	go func() {
		log.Printf("Starting saver server on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// golang channel, will wait here until the context is closed (ie, ctrl+C)
	<-ctx.Done()
	log.Println("Received shutdown signal, shutting down gracefully...")

	// this gives the server 10 seconds to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped successfully")
}

func syncStartupSymbols(sc *c.ServiceContext, symbols []string) {
	for _, symbol := range symbols {
		if _, _, err := sc.SyncSymbolSeries(symbol); err != nil {
			if errors.Is(err, c.ErrRecentlyRefreshed) {
				log.Printf("startup sync: %v", err)
				continue
			}
			log.Printf("startup sync of %s failed: %v", symbol, err)
		}
	}
}
