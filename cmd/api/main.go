package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"rentals/internal/config"
	"rentals/internal/database"
	"rentals/internal/lock"
	"rentals/internal/middleware"
	"rentals/internal/modules/booking"
	"rentals/internal/modules/catalog"
	"rentals/internal/notify"
	jwtsvc "rentals/internal/pkg/jwt"
	"rentals/internal/pricing"
	"rentals/internal/repository"
	"rentals/internal/scheduler"
	"rentals/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, !cfg.IsProd() && gin.Mode() == gin.DebugMode)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	locker, closeLocker, err := newLocker(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closeLocker()

	productRepo := repository.NewProductRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTokenTTL, cfg.JWTIssuer)

	hub := notify.NewHub()
	defer hub.Close()

	engine := pricing.NewEngine(cfg.Pricing())
	bookingService := booking.NewService(bookingRepo, productRepo, locker, engine, notify.NewNotifier(hub), cfg.BookingLockTTL)
	catalogService := catalog.NewService(productRepo)

	lifecycle := scheduler.NewLifecycleScheduler(bookingService, locker, cfg.LifecycleSchedule)
	if err := lifecycle.Start(); err != nil {
		return err
	}
	defer lifecycle.Stop()

	r := server.New(server.Deps{
		JWT:              j,
		Catalog:          catalog.NewHandler(catalogService),
		Booking:          booking.NewHandler(bookingService),
		Notify:           notify.NewHandler(hub, j, middleware.AllowedOrigin(cfg.CORSOrigins)),
		Sweeper:          lifecycle,
		CORSOrigins:      cfg.CORSOrigins,
		InternalAPIToken: cfg.InternalAPIToken,
		AccessLog:        true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("http_shutdown_failed error=%v", err)
		}
	}()

	log.Printf("API listening on %s (env=%s)", cfg.HTTPAddr, cfg.AppEnv)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.Println("API stopped gracefully")
	return nil
}

// newLocker uses redis when configured so every API instance shares product
// locks. Without REDIS_URL the lock only covers this process.
func newLocker(ctx context.Context, redisURL string) (lock.Locker, func(), error) {
	if redisURL == "" {
		log.Println("REDIS_URL not set, using in-process booking locks")
		return lock.NewLocalLocker(), func() {}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	log.Printf("Connected to Redis at %s", opts.Addr)
	return lock.NewRedisLocker(client), func() { _ = client.Close() }, nil
}
