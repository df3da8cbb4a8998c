package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propertydesk/internal/config"
	"propertydesk/internal/database"
	"propertydesk/internal/modules/board"
	"propertydesk/internal/pkg/events"
	"propertydesk/internal/pkg/idempotency"
	jwtsvc "propertydesk/internal/pkg/jwt"
	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/repository"
	"propertydesk/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log, closer := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, JSON: cfg.IsProduction()})
	defer closer.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	var idem idempotency.Store = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	if cfg.RedisAddr != "" {
		rdb := idempotency.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTLS)
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.WithError(err).Warn("redis unavailable, idempotency keys kept in memory")
		} else {
			idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
			log.WithField("addr", cfg.RedisAddr).Info("idempotency store: redis")
		}
		cancel()
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.AMQPURL, log)
		if err != nil {
			log.WithError(err).Warn("amqp unavailable, domain events disabled")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	hub := board.NewHub()
	defer hub.Close()

	app := server.New(server.Deps{
		DB:                  db,
		JWT:                 jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		Publisher:           publisher,
		Idempotency:         idem,
		Hub:                 hub,
		Log:                 log,
		CORSOrigins:         cfg.CORSAllowedOrigins,
		InternalToken:       cfg.InternalToken,
		InternalAllowedIPs:  cfg.InternalAllowedIPs,
		DefaultExchangeRate: cfg.DefaultExchangeRate,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "env": cfg.AppEnv}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
