package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/theatre-booking/internal/config"
	"github.com/iliyamo/theatre-booking/internal/database"
	"github.com/iliyamo/theatre-booking/internal/handler"
	"github.com/iliyamo/theatre-booking/internal/middleware"
	"github.com/iliyamo/theatre-booking/internal/queue"
	"github.com/iliyamo/theatre-booking/internal/repository"
	"github.com/iliyamo/theatre-booking/internal/router"
	"github.com/iliyamo/theatre-booking/internal/service"
)

func main() {
	log := logrus.New()
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	setupLogger(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("bye")
}

func setupLogger(log *logrus.Logger, cfg config.Config) {
	if cfg.IsProd() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	db, err := database.Open(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// Redis is optional: without it the cache and the rate limiter pass through.
	var rdb *redis.Client
	if rc, err := config.NewRedisClient(ctx, config.LoadRedisConfig()); err != nil {
		log.WithError(err).Warn("redis unavailable; cache and rate limit disabled")
	} else {
		rdb = rc
		defer rdb.Close()
	}

	publisher := queue.NewPublisher(cfg.AMQPURL, log)
	defer publisher.Close()
	consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingLogDir, log)

	shows := repository.NewShowRepo(db)
	seats := repository.NewSeatBookingRepo(db)
	bookings := repository.NewBookingRepo(db)
	booker := service.NewBookingService(db, shows, seats, bookings, log,
		service.WithPublisher(publisher),
		service.WithMaxSeats(cfg.MaxSeatsPerBooking),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID(), middleware.Logger(log))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db), log), cfg.JWTSecret)
	router.RegisterPublic(e, &handler.PublicHandler{
		Shows:    shows,
		Seats:    seats,
		Movies:   repository.NewMovieRepo(db),
		Theatres: repository.NewTheatreRepo(db),
		Screens:  repository.NewScreenRepo(db),
		Log:      log,
	}, middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log))
	router.RegisterCustomer(e, handler.NewBookingHandler(booker, bookings, log), cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))
	router.RegisterAdmin(e, &handler.AdminHandler{
		Movies:     repository.NewMovieRepo(db),
		Theatres:   repository.NewTheatreRepo(db),
		Screens:    repository.NewScreenRepo(db),
		Shows:      shows,
		Bookings:   bookings,
		Reconciler: booker,
		Log:        log,
	}, cfg.JWTSecret)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
