package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"coffee-pos/internal/barista"
	"coffee-pos/internal/catalog"
	"coffee-pos/internal/config"
	"coffee-pos/internal/db"
	"coffee-pos/internal/ids"
	"coffee-pos/internal/logger"
	"coffee-pos/internal/mq"
	"coffee-pos/internal/order"
	"coffee-pos/internal/payment"
	"coffee-pos/internal/repository"
	"coffee-pos/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	mode := flag.String("mode", "", "pos-server | barista-worker")
	workerName := flag.String("worker-name", "barista-1", "barista-worker: unique consumer name")
	prefetch := flag.Int("prefetch", 1, "barista-worker: RabbitMQ prefetch")
	flag.Parse()

	log, err := logger.New(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "pos-server":
		if err := runServer(ctx, log); err != nil {
			log.Fatal("pos-server stopped", zap.Error(err))
		}
	case "barista-worker":
		if err := runWorker(ctx, log, *workerName, *prefetch); err != nil {
			log.Fatal("barista-worker stopped", zap.Error(err))
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: pos-server | barista-worker")
		os.Exit(2)
	}
	log.Info("shutdown complete")
}

func runServer(ctx context.Context, log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.MenuPath)
	if err != nil {
		return err
	}
	log.Info("menu loaded",
		zap.String("store", cat.Settings.StoreName),
		zap.Int("items", len(cat.Items)))

	conn, err := db.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := repository.Migrate(ctx, conn); err != nil {
		return err
	}

	tickets, err := mq.Dial(ctx, cfg.RabbitURL())
	if err != nil {
		return err
	}
	defer tickets.Close()
	if err := tickets.DeclareTopology(); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
	}

	src := ids.New()
	srv := server.New(server.Deps{
		Catalog:   cat,
		Menu:      catalog.NewCache(rdb, cat, cfg.MenuCacheTTL, log),
		Assembler: order.NewAssembler(cat.Settings, src, nil),
		Settler:   payment.NewTerminal(cfg.SettlementDelay, log),
		Orders:    repository.NewOrdersPG(conn),
		Tickets:   tickets,
		IDs:       src,
		Log:       log,
	})

	log.Info("pos-server listening", zap.Int("port", cfg.HTTPPort))
	return srv.Run(ctx, cfg.HTTPPort)
}

func runWorker(ctx context.Context, log *zap.Logger, name string, prefetch int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := mq.Dial(ctx, cfg.RabbitURL())
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.DeclareTopology(); err != nil {
		return err
	}
	return barista.Run(ctx, client, barista.Config{Name: name, Prefetch: prefetch}, log)
}
