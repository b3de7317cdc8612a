package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-orders-api/internal/config"
	"github.com/ariefcatur/go-orders-api/internal/invalidator"
	kafkax "github.com/ariefcatur/go-orders-api/internal/kafka"
	"github.com/ariefcatur/go-orders-api/internal/logx"
	"github.com/ariefcatur/go-orders-api/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	log := logx.New("order-cache-invalidator", cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &invalidator.Service{
		Cache: redisx.NewOrderCache(rdb),
		Redis: rdb,
		Name:  cfg.InvalidatorGroup,
		Log:   log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.InvalidatorGroup, invalidator.Topics, cfg.InvalidatorWorkers, log)
	log.Info().
		Str("group", cfg.InvalidatorGroup).
		Strs("topics", invalidator.Topics).
		Int("workers", cfg.InvalidatorWorkers).
		Msg("invalidator started")

	if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
		log.Error().Err(err).Msg("consumer exit")
		return
	}
	log.Info().Msg("invalidator stopped")
}
