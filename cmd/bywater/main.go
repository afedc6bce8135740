package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/bywater/internal/database"
	"github.com/dukerupert/bywater/internal/logging"
	"github.com/dukerupert/bywater/internal/push"
	"github.com/dukerupert/bywater/internal/server"
)

func main() {
	port := os.Getenv("BYWATER_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("BYWATER_DB_PATH")
	if dbPath == "" {
		dbPath = "bywater.db"
	}

	logger := logging.Setup(os.Getenv("BYWATER_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("BYWATER_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("BYWATER_VAPID_PRIVATE_KEY"),
	}
	if pushCfg.VAPIDPublicKey == "" || pushCfg.VAPIDPrivateKey == "" {
		logger.Info("VAPID keys not configured, push notifications disabled")
	}

	srv := server.New(db, pushCfg, logger)

	httpServer := &http.Server{
		Addr:        ":" + port,
		Handler:     srv.Router(),
		ReadTimeout: 5 * time.Second,
		// No WriteTimeout: the change feed holds its response open for the
		// connection's lifetime.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	go func() {
		fmt.Printf("Bywater running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
