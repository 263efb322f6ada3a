package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fitcoach-client/internal/devserver"
	"fitcoach-client/internal/logger"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "address to bind the stub API to")
	secret := flag.String("secret", "devserver-secret", "HS256 signing secret")
	ttl := flag.Duration("token-ttl", 24*time.Hour, "issued token lifetime")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	if v := os.Getenv("DEVSERVER_ADDR"); v != "" {
		*addr = v
	}
	if v := os.Getenv("DEVSERVER_SECRET"); v != "" {
		*secret = v
	}

	log, err := logger.New(*level)
	if err != nil {
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	server := devserver.New(*addr, *secret, *ttl, log)

	go func() {
		if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("devserver failed", "error", err)
		}
	}()

	log.Infow("devserver started", "addr", *addr)

	<-ctx.Done()

	log.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("graceful shutdown failed", "error", err)
	}

	log.Infow("devserver stopped cleanly")
}
