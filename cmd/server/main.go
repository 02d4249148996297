package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"antaran-be/internal/config"
	"antaran-be/internal/db"
	"antaran-be/internal/directory"
	"antaran-be/internal/httpapi"
	"antaran-be/internal/inventory"
	"antaran-be/internal/logger"
	"antaran-be/internal/notify"
	"antaran-be/internal/order"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Seams for tests.
var (
	initDBFunc = db.InitDB
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	router := newServer(cfg, database, rdb)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server listening", zap.String("port", cfg.AppPort))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.L().Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func newServer(cfg *config.Config, database *sql.DB, rdb *redis.Client) http.Handler {
	ledger := inventory.NewLedger(database)
	invSvc := inventory.NewService(ledger)

	dir := directory.NewRepository(database)
	notifier := notify.NewNotifier(notify.NewRedisPublisher(rdb))

	orderRepo := order.NewRepository(database, ledger)
	orderSvc := order.NewService(orderRepo, dir, notifier)

	h := httpapi.NewHandler(orderSvc, invSvc)
	return httpapi.NewRouter(h, []byte(cfg.SecretKey))
}
