package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"

	"clinic-api/internal/account"
	"clinic-api/internal/auth"
	"clinic-api/internal/config"
	"clinic-api/internal/handler"
	"clinic-api/internal/logger"
	"clinic-api/internal/metrics"
	"clinic-api/internal/middleware"
	"clinic-api/internal/model"
	"clinic-api/internal/rpc"
	"clinic-api/internal/schedule"
	"clinic-api/internal/store"
	"clinic-api/internal/store/memory"
	"clinic-api/internal/worker/cleanup"
)

// backend is everything the services need from storage; both the postgres
// and the in-memory store satisfy it.
type backend interface {
	auth.IdentityStore
	auth.SessionStore
	schedule.Store
	account.Store
	cleanup.SessionPurger
	handler.Pinger
}

func main() {
	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openBackend(ctx, cfg)
	if err != nil {
		log.Error("store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	if cfg.SeedEmail != "" {
		created, err := account.Ensure(ctx, st, account.NewIdentity{
			Email:    cfg.SeedEmail,
			Password: cfg.SeedPassword,
			Name:     cfg.SeedName,
			Role:     model.Role(cfg.SeedRole),
		})
		if err != nil {
			log.Error("seed account", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if created {
			log.Info("seed account created", slog.String("email", cfg.SeedEmail))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mc := metrics.NewCollector(reg)

	sessions := auth.NewSessions(st, st, auth.SessionConfig{TTL: cfg.SessionTTL, Metrics: mc})
	authSvc := auth.NewService(st, sessions, mc)
	gate := auth.NewGate(sessions)
	schedSvc := schedule.NewService(st)

	rl := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	go rl.Run(ctx)

	// grpc server
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl),
			middleware.Auth(gate),
		),
	)
	rpc.Register(srv, rpc.NewServer(authSvc, schedSvc))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Error("listen", slog.String("error", err.Error()))
		os.Exit(1)
	}
	go func() {
		log.Info("grpc listening", slog.String("port", cfg.GRPCPort))
		if err := srv.Serve(lis); err != nil {
			log.Error("grpc", slog.String("error", err.Error()))
		}
	}()

	// http api
	router := handler.NewRouter(handler.RouterDeps{
		Handler:     handler.New(authSvc, schedSvc, handler.Config{CookieSecure: cfg.Production(), SessionTTL: cfg.SessionTTL}),
		Gate:        gate,
		Limiter:     rl,
		Store:       st,
		Logger:      log,
		HTTPMetrics: mc,
		Metrics:     metrics.Handler(reg),
	})
	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http listening", slog.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http", slog.String("error", err.Error()))
		}
	}()

	// expired-session sweep
	sweeper, err := cleanup.NewJob(st, log, mc).Schedule(ctx, cfg.SessionSweepSpec)
	if err != nil {
		log.Error("cron", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sweeper.Start()

	<-ctx.Done()
	log.Info("shutting down")

	<-sweeper.Stop().Done()
	srv.GracefulStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", slog.String("error", err.Error()))
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return memory.New(), func() {}, nil
	}

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	slog.Info("connected to postgres")
	return st, st.Close, nil
}
