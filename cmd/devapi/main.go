package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hongminglow/all-in-dash/internal/config"
	"github.com/hongminglow/all-in-dash/internal/server"
	"github.com/hongminglow/all-in-dash/internal/storage/memory"
	"github.com/joho/godotenv"
)

func main() {
	loadLocalEnv()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	seed, err := server.DemoUsers(cfg.SeedPassword)
	if err != nil {
		log.Fatalf("seed users: %v", err)
	}
	users := memory.NewUsers(seed...)

	srv := server.New(cfg, users)

	go func() {
		log.Printf("dashboard dev API listening on %s", cfg.HTTPAddress())
		for _, u := range seed {
			log.Printf("seeded %s (%s)", u.Username, u.Role)
		}
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
