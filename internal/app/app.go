package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"studiodesk/internal/config"
	"studiodesk/internal/database"
	"studiodesk/internal/events"
	"studiodesk/internal/live"
	"studiodesk/internal/lookup"
	"studiodesk/internal/middleware"
	"studiodesk/internal/modules/booking"
	"studiodesk/internal/modules/calendar"
	lookuphttp "studiodesk/internal/modules/lookup"
	"studiodesk/internal/pkg/jwt"
	"studiodesk/internal/repository"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	router     *gin.Engine
	httpServer *http.Server
	hub        *live.Hub
	bookings   *booking.Service
	publisher  events.Publisher
	stopLive   func()
	closeCache func() error
}

// New connects storage, migrates the schema and builds the router. The live
// status job is started here; Close stops it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Connect(cfg.DatabaseURL, database.Options{Quiet: cfg.AppEnv == "test"})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a := &App{cfg: cfg, db: db, closeCache: func() error { return nil }}

	var store lookup.Store = lookup.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb, err := lookup.NewRedisClient(ctx, lookup.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		store = lookup.NewRedisStore(rdb)
		a.closeCache = rdb.Close
	}

	bookingRepo := repository.NewBookingRepository(db)
	enumRepo := repository.NewEnumRepository(db)
	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	loc := cfg.Location()

	lookupService := lookup.NewService(enumRepo, store, cfg.LookupTTL)
	a.publisher = events.New(cfg.Kafka.Brokers, cfg.Kafka.BookingTopic)

	a.hub = live.NewHub()
	broadcaster := live.NewBroadcaster(a.hub, bookingRepo, loc, cfg.RequestTimeout)
	a.stopLive, err = broadcaster.Start(cfg.LiveTick)
	if err != nil {
		return nil, fmt.Errorf("failed to start live updates: %w", err)
	}

	a.bookings = booking.NewService(bookingRepo, a.publisher, broadcaster, booking.Config{
		Location: loc,
		Timeout:  cfg.RequestTimeout,
	})
	calendarService := calendar.NewService(bookingRepo, loc, cfg.RequestTimeout)

	a.router = newRouter(cfg, jwtService, routes{
		booking:  booking.NewHandler(a.bookings),
		calendar: calendar.NewHandler(calendarService),
		lookup:   lookuphttp.NewHandler(lookupService),
		live:     live.NewHandler(a.hub, broadcaster, jwtService, cfg.CORSOrigins),
	})

	a.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

type routes struct {
	booking  *booking.Handler
	calendar *calendar.Handler
	lookup   *lookuphttp.Handler
	live     *live.Handler
}

func newRouter(cfg *config.Config, jwtService *jwt.Service, h routes) *gin.Engine {
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// websocket auth uses the token query parameter
	h.live.RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtService))
	v1.Use(middleware.Timeout(cfg.RequestTimeout))
	{
		h.booking.RegisterRoutes(v1)
		h.calendar.RegisterRoutes(v1)
		h.lookup.RegisterRoutes(v1)
	}

	return r
}

// Handler exposes the router, mainly for in-process tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down and releases resources.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("http server listening addr=%s env=%s", a.cfg.HTTPAddr, a.cfg.AppEnv)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Printf("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if cerr := a.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close stops the live job, waits for pending booking notifications, closes
// websocket connections and releases the event publisher, cache and database.
func (a *App) Close() error {
	if a.stopLive != nil {
		a.stopLive()
		a.stopLive = nil
	}
	a.bookings.Wait()
	a.hub.Close()

	var errs []error
	if err := a.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if err := a.closeCache(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
