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

	"github.com/tdyer/loadshare/internal/database"
	"github.com/tdyer/loadshare/internal/logging"
	"github.com/tdyer/loadshare/internal/server"
)

func main() {
	port := os.Getenv("LOADSHARE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("LOADSHARE_DB_PATH")
	if dbPath == "" {
		dbPath = "loadshare.db"
	}

	logger := logging.Setup(os.Getenv("LOADSHARE_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, logger)

	if err := srv.Scheduler().Start(os.Getenv("LOADSHARE_GEN_SCHEDULE")); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer srv.Scheduler().Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Loadshare running at http://localhost:%s\n", port)
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
