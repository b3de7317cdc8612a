package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-orders-api/internal/auth"
	"github.com/ariefcatur/go-orders-api/internal/config"
	"github.com/ariefcatur/go-orders-api/internal/httpx"
	kafkax "github.com/ariefcatur/go-orders-api/internal/kafka"
	"github.com/ariefcatur/go-orders-api/internal/logx"
	"github.com/ariefcatur/go-orders-api/internal/orders"
	"github.com/ariefcatur/go-orders-api/internal/postgres"
	"github.com/ariefcatur/go-orders-api/internal/products"
	"github.com/ariefcatur/go-orders-api/internal/redisx"
	"github.com/ariefcatur/go-orders-api/internal/users"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAPI()
	log := logx.New("order-api", cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = logx.New(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
	}

	// DB
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer pool.Close()
	gw := postgres.NewGateway(pool, cfg.TxTimeout)

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log.With().Str("component", "producer").Logger())
	prod.Start()

	hasher := auth.Hasher{}
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)
	userRepo := &users.Repo{DB: gw, Log: log, Hasher: hasher}

	router := httpx.NewRouter(httpx.Deps{
		Orders: &httpx.OrdersHandler{
			Repo:    &orders.Repo{DB: gw, Log: log},
			Cache:   redisx.NewOrderCache(rdb),
			Events:  prod,
			Service: cfg.ServiceName,
			Log:     log,
		},
		Users:          &httpx.UsersHandler{Repo: userRepo, Log: log},
		Products:       &httpx.ProductsHandler{Repo: &products.Repo{DB: gw, Log: log}, Log: log},
		Auth:           &httpx.AuthHandler{Users: userRepo, Hasher: hasher, Tokens: issuer, Log: log},
		Authn:          &httpx.Authenticator{Tokens: issuer},
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exit")
	}
	prod.Close()      // no more publishes once the server is down
	prod.WaitClosed() // flush queued events
}
