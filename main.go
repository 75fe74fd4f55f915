package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/juju/loggo"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/fullreservas/reservas-api/config"
	"github.com/fullreservas/reservas-api/internal/consumer"
	"github.com/fullreservas/reservas-api/internal/events"
	"github.com/fullreservas/reservas-api/internal/handler"
	"github.com/fullreservas/reservas-api/internal/middleware"
	"github.com/fullreservas/reservas-api/internal/repository"
	"github.com/fullreservas/reservas-api/internal/service"
	"github.com/fullreservas/reservas-api/pkg/database"
	"github.com/fullreservas/reservas-api/pkg/mailer"
	"github.com/fullreservas/reservas-api/pkg/rabbitmq"
	"github.com/fullreservas/reservas-api/pkg/storage"
)

var logger = loggo.GetLogger("fullreservas")

func main() {
	cfg := config.Load()
	if err := loggo.ConfigureLoggers("<root>=" + cfg.LogLevel); err != nil {
		logger.Warningf("invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	httpLog := loggo.GetLogger("fullreservas.http")

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		logger.Criticalf("failed to connect to database: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// RabbitMQ: booking events out, customer notifications in.
	var publisher events.Publisher
	if mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL); err != nil {
		logger.Warningf("rabbitmq unavailable, booking events disabled: %v", err)
	} else {
		defer mqPublisher.Close()
		publisher = mqPublisher
	}

	if cfg.SMTPHost != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, events.BookingConfirmed, events.BookingCancelled)
		if err != nil {
			logger.Warningf("rabbitmq unavailable, notifications disabled: %v", err)
		} else {
			defer mqConsumer.Close()
			msgs, err := mqConsumer.Consume()
			if err != nil {
				logger.Criticalf("failed to start consuming: %v", err)
				os.Exit(1)
			}
			sender := mailer.NewSMTPSender(mailer.SMTPConfig{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUsername,
				Password: cfg.SMTPPassword,
				From:     cfg.MailFrom,
			})
			consumer.NewNotificationConsumer(sender).Start(msgs)
		}
	}

	var uploads storage.Uploader
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3PublicBaseURL)
		if err != nil {
			logger.Criticalf("failed to configure s3: %v", err)
			os.Exit(1)
		}
		uploads = s3Store
	}

	var rdb redis.Cmdable
	if cfg.RedisURL != "" && cfg.RateLimitEnabled {
		if client, err := newRedis(ctx, cfg.RedisURL); err != nil {
			logger.Warningf("redis unavailable, rate limiting disabled: %v", err)
		} else {
			defer client.Close()
			rdb = client
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	shopRepo := repository.NewShopRepository(db)
	subcategoryRepo := repository.NewSubcategoryRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	tableRepo := repository.NewTableRepository(db)
	closedDayRepo := repository.NewClosedDayRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)

	// Services
	identitySvc := service.NewIdentityService(userRepo, service.IdentityConfig{
		JWTSecret:  cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		BcryptCost: cfg.BcryptCost,
	}, clock.WallClock)
	catalogSvc := service.NewCatalogService(shopRepo, subcategoryRepo, scheduleRepo, userRepo, uploads)
	inventorySvc := service.NewInventoryService(shopRepo, slotRepo, tableRepo, closedDayRepo)
	bookingSvc := service.NewBookingService(service.BookingDeps{
		Bookings:   bookingRepo,
		Shops:      shopRepo,
		Slots:      slotRepo,
		Tables:     tableRepo,
		ClosedDays: closedDayRepo,
		Users:      userRepo,
		Ratings:    ratingRepo,
		Publisher:  publisher,
		Clock:      clock.WallClock,
	})
	ratingSvc := service.NewRatingService(ratingRepo)
	membershipSvc := service.NewMembershipService(membershipRepo, userRepo, clock.WallClock)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewValidator()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			httpLog.Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "reservas-api"})
	})

	api := e.Group("/api", middleware.RateLimit(rdb, middleware.RateLimitConfig{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	}))
	authn := middleware.JWTAuth(cfg.JWTSecret)

	handler.NewAuthHandler(identitySvc).RegisterRoutes(api)
	handler.NewUserHandler(identitySvc, bookingSvc, membershipSvc).RegisterRoutes(api, authn)
	handler.NewShopHandler(catalogSvc, bookingSvc, ratingSvc).RegisterRoutes(api, authn)
	handler.NewInventoryHandler(inventorySvc, bookingSvc, catalogSvc).RegisterRoutes(api, authn)
	handler.NewBookingHandler(bookingSvc, catalogSvc).RegisterRoutes(api, authn)
	handler.NewRatingHandler(ratingSvc).RegisterRoutes(api, authn)

	go func() {
		logger.Infof("reservas-api starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Criticalf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

func newRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
