package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"go.alis.build/alog"
	"golang.org/x/sync/errgroup"

	"github.com/atlekbai/wallet_search/internal/cache"
	"github.com/atlekbai/wallet_search/internal/config"
	"github.com/atlekbai/wallet_search/internal/handler"
	"github.com/atlekbai/wallet_search/internal/middleware"
	"github.com/atlekbai/wallet_search/internal/schema"
	"github.com/atlekbai/wallet_search/internal/server"
	"github.com/atlekbai/wallet_search/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		alog.Fatalf(ctx, "failed to load config: %v", err)
	}
	level, _ := cfg.Level()
	alog.SetLevel(level)

	schemas := schema.NewCache()
	if err := schemas.Load(schema.Wallets()); err != nil {
		alog.Fatalf(ctx, "failed to load schema cache: %v", err)
	}
	alog.Infof(ctx, "schema cache loaded: %d objects", schemas.ObjectCount())

	g, gctx := errgroup.WithContext(ctx)

	opts := []service.Option{
		service.WithDefaultStyle(cfg.PlaceholderStyle),
		service.WithMaxDepth(cfg.MaxDepth),
	}
	if cfg.RedisURL != "" {
		store, err := cache.Dial(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			alog.Fatalf(ctx, "failed to connect to redis: %v", err)
		}
		defer store.Close()
		opts = append(opts, service.WithStore(store))
		alog.Infof(ctx, "redis statement cache enabled (ttl %s)", cfg.CacheTTL)
	} else if cfg.CacheTTL > 0 {
		store := cache.NewMemory(cfg.CacheTTL)
		g.Go(func() error { return store.Run(gctx, cfg.CacheTTL) })
		opts = append(opts, service.WithStore(store))
		alog.Infof(ctx, "in-process statement cache enabled (ttl %s)", cfg.CacheTTL)
	}
	search := service.NewSearchService(schemas, cfg.BaseStatement, opts...)

	interceptors := []connect.Interceptor{
		server.ValidationInterceptor(),
		server.LoggingInterceptor(),
	}

	mux := http.NewServeMux()
	handler.New(search, cfg.MaxBodyBytes).Routes(mux)
	for _, path := range server.Mount(mux, []server.ConnectService{search}, interceptors...) {
		alog.Infof(ctx, "mounted %s", path)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Logging,
			middleware.Recovery,
			middleware.Gzip,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		alog.Infof(ctx, "listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		alog.Infof(ctx, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		alog.Fatalf(ctx, "server error: %v", err)
	}
}
