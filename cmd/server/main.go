package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/counselnote/counsel-api/internal/config"
	"github.com/counselnote/counsel-api/internal/database"
	"github.com/counselnote/counsel-api/internal/handler"
	"github.com/counselnote/counsel-api/internal/logger"
	"github.com/counselnote/counsel-api/internal/middleware"
	"github.com/counselnote/counsel-api/internal/queue"
	"github.com/counselnote/counsel-api/internal/repository"
	"github.com/counselnote/counsel-api/internal/router"
	"github.com/counselnote/counsel-api/internal/service"
)

const serviceName = "counsel-api"

func main() {
	// A missing .env is fine; the environment may be set by the runtime.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(serviceName, cfg.Env)

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("migrate schema")
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unavailable; response cache disabled")
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := queue.NewPublisher(cfg.RabbitMQURL, cfg.QueueEnabled)
	if cfg.QueueEnabled {
		consumer := queue.NewConsumer(cfg.RabbitMQURL, log.Logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	}

	store := repository.NewStore(db)
	authSvc := service.NewAuthService(store, publisher, cfg.JWTSecret, cfg.SessionTTL)
	counselorSvc := service.NewCounselorService(store)
	emotionSvc := service.NewEmotionService(store, publisher)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, authSvc), cfg.JWTSecret)
	router.RegisterCounselor(e, handler.NewCounselorHandler(counselorSvc), cfg.JWTSecret, cache)
	router.RegisterEmotionRecords(e, handler.NewEmotionRecordHandler(emotionSvc), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
