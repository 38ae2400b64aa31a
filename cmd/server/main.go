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

	"github.com/oggyb/matchbox/internal/app"
	"github.com/oggyb/matchbox/internal/config"
	"github.com/oggyb/matchbox/internal/db"
	"github.com/oggyb/matchbox/internal/domain"
	"github.com/oggyb/matchbox/internal/events"
	paymenthandler "github.com/oggyb/matchbox/internal/handler/payment"
	"github.com/oggyb/matchbox/internal/logger"
	"github.com/oggyb/matchbox/internal/server"
	"github.com/oggyb/matchbox/internal/service/dating"
	"github.com/oggyb/matchbox/internal/service/messaging"
	"github.com/oggyb/matchbox/internal/service/payment"
	"github.com/oggyb/matchbox/internal/storage"
	"gorm.io/gorm"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Message-created bus (in-process, or fanned out through Redis)
	bus, closeBus, err := newMessageBus(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init message bus", "backend", cfg.Events.Backend, "err", err)
		return
	}
	defer closeBus()

	// Inject logger into app context
	appCtx := app.New(database, bus, log)

	if cfg.App.ENV == "development" {
		seedIfEmpty(database, log)
	}

	// gRPC: DatingService
	images := storage.NewImageStore(cfg)
	if images == nil {
		log.Info("profile image uploads disabled", "reason", "S3_BUCKET_NAME not set")
	}
	grpcServer := server.NewGRPCServer(log, dating.NewRegistrar(appCtx, images))

	// HTTP: payments, websocket feed, health, metrics
	limiter := server.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, log)
	limiter.StartCleanup(time.Minute, ctx.Done())

	ws := server.NewWSHandler(messaging.NewMessagingService(appCtx), cfg.HTTP.CORSOrigins, log)
	payments := paymenthandler.NewHandler(payment.NewClient(cfg, log), log)
	router := server.NewRouter(cfg, log, limiter, ws,
		server.Mount{
			Prefix:  "/payments",
			Routes:  payments,
			Limited: true,
			Exempt:  []string{paymenthandler.WebhookRoute},
		},
	)
	httpServer := server.NewHTTPServer(cfg, router)

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		errCh <- server.StartGRPCServer(cfg, grpcServer)
	}()
	go func() {
		log.Info("starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server stopped", "err", err)
	}

	// Closing the bus ends open subscriptions so GracefulStop can finish.
	closeBus()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	grpcServer.GracefulStop()
}

// newMessageBus builds the bus selected by EVENTS_BACKEND. The returned
// close func is safe to call more than once.
func newMessageBus(ctx context.Context, cfg *config.Config, log *slog.Logger) (events.Bus[domain.Message], func(), error) {
	buffer := events.WithBuffer(cfg.Events.Buffer)
	if cfg.Events.Backend != "redis" {
		bus := events.NewLocalBus[domain.Message](log, buffer)
		return bus, func() { _ = bus.Close() }, nil
	}

	client := events.NewRedisClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	bus, err := events.NewRedisBus[domain.Message](ctx, client, cfg.Events.Channel, log, buffer)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	closed := false
	return bus, func() {
		if closed {
			return
		}
		closed = true
		_ = bus.Close()
		_ = client.Close()
	}, nil
}

// seedIfEmpty loads demo data into a fresh development database.
func seedIfEmpty(database *gorm.DB, log *slog.Logger) {
	var n int64
	if err := database.Model(&db.User{}).Count(&n).Error; err != nil {
		log.Error("failed to count users", "err", err)
		return
	}
	if n > 0 {
		return
	}
	if err := db.SeedDemoData(database, log); err != nil {
		log.Error("failed to seed", "err", err)
	}
}
