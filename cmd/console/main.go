package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hongminglow/all-in-dash/internal/api"
	"github.com/hongminglow/all-in-dash/internal/config"
	"github.com/hongminglow/all-in-dash/internal/console"
	"github.com/hongminglow/all-in-dash/internal/endpoints"
	"github.com/hongminglow/all-in-dash/internal/guard"
	"github.com/hongminglow/all-in-dash/internal/notify"
	"github.com/hongminglow/all-in-dash/internal/routes"
	"github.com/hongminglow/all-in-dash/internal/session"
	"github.com/hongminglow/all-in-dash/internal/storage"
	"github.com/hongminglow/all-in-dash/internal/storage/memory"
	"github.com/hongminglow/all-in-dash/internal/storage/postgres"
	"github.com/hongminglow/all-in-dash/internal/storage/redis"
	"github.com/hongminglow/all-in-dash/internal/storage/sqlite"
)

func main() {
	start := flag.String("path", routes.Home, "page to open on start")
	flag.Parse()

	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slot, closeSlot, err := openSlot(ctx, cfg)
	if err != nil {
		log.Fatalf("open session slot: %v", err)
	}
	defer closeSlot()

	out := console.Locked(os.Stdout)
	logger := log.New(out, "", log.LstdFlags)

	store := session.NewStore(slot, session.WithLogger(logger))
	history := guard.NewHistory(*start)
	table := routes.DefaultTable()

	client := api.New(cfg.APIBaseURL, store,
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		api.WithNotifier(notify.Logger{Log: logger}),
		api.WithLogger(logger),
		api.WithLocale(cfg.LanguageTag()),
	)

	shell := &console.Shell{
		Store:   store,
		History: history,
		Client:  client,
		Auth:    endpoints.NewAuth(client, store, logger),
		Users:   endpoints.NewUsers(client, store, logger),
		Table:   table,
		Sidebar: routes.Sidebar(),
		Out:     out,
	}
	shell.Guard = guard.New(table, history, guard.WithLogger(logger), guard.WithObserver(shell.Observe))

	go func() {
		if err := shell.Guard.Run(ctx, store, history); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("guard stopped: %v", err)
		}
	}()
	store.Hydrate(ctx)

	if err := shell.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("console: %v", err)
	}
}

func openSlot(ctx context.Context, cfg config.Config) (storage.Slot, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendPostgres:
		slot, err := postgres.NewSlot(ctx, cfg.DatabaseURL, cfg.SessionKey)
		if err != nil {
			return nil, nil, err
		}
		return slot, slot.Close, nil
	case config.BackendRedis:
		slot, err := redis.Dial(ctx, cfg.RedisURL, cfg.SessionKey)
		if err != nil {
			return nil, nil, err
		}
		return slot, func() { _ = slot.Close() }, nil
	case config.BackendMemory:
		return &memory.Slot{}, func() {}, nil
	default:
		slot, err := sqlite.Open(ctx, cfg.SessionPath, cfg.SessionKey)
		if err != nil {
			return nil, nil, err
		}
		return slot, func() { _ = slot.Close() }, nil
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
