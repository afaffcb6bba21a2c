package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/auth"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/chain"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/config"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/events/kafka"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/middleware"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/notify"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/service"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/storage"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/storage/postgres"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/storage/sqlite"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/watcher"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence: postgres when a DSN is configured, sqlite otherwise.
	var kv storage.Store
	if cfg.PostgresDSN != "" {
		kv, err = postgres.New(cfg.PostgresDSN)
		slog.Info("Using postgres storage")
	} else {
		kv, err = sqlite.New(cfg.SQLitePath)
		slog.Info("Using sqlite storage", "path", cfg.SQLitePath)
	}
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	store := notify.NewStore(kv)

	// Chain watcher, unless running API-only.
	if cfg.RPCURL != "" {
		sub, err := chain.Dial(cfg.RPCURL, common.HexToAddress(cfg.ContractAddress),
			chain.WithStartBlock(cfg.StartBlock))
		if err != nil {
			slog.Error("Failed to connect to chain", "rpc", cfg.RPCURL, "error", err)
			os.Exit(1)
		}
		defer sub.Close()

		opts := []watcher.Option{watcher.WithInterval(cfg.PollInterval)}
		if len(cfg.KafkaBrokers) > 0 {
			publisher := kafka.NewPublisher(cfg.KafkaBrokers)
			defer publisher.Close()
			opts = append(opts, watcher.WithSink(publisher))
			slog.Info("Kafka sink enabled", "brokers", cfg.KafkaBrokers)
		}

		w := watcher.New(sub, store, opts...)
		go w.Run(ctx)
		slog.Info("Watching contract", "address", cfg.ContractAddress, "interval", cfg.PollInterval)
	} else {
		slog.Warn("RPC_URL not set, running API without chain watcher")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenDuration)
	router := service.NewRouter(
		service.NewAuthService(auth.NewWalletAuthenticator(), jwtManager),
		service.NewSplitService(),
		service.NewNotificationService(store),
		jwtManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.Logging(middleware.CORS(router)),
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
