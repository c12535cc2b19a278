package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/skovorodin/mini_shop/internal/config"
	"github.com/skovorodin/mini_shop/internal/db"
	"github.com/skovorodin/mini_shop/internal/es"
	"github.com/skovorodin/mini_shop/internal/handlers"
	"github.com/skovorodin/mini_shop/internal/logging"
	authmw "github.com/skovorodin/mini_shop/internal/middleware/auth"
	loggingmw "github.com/skovorodin/mini_shop/internal/middleware/logging"
	"github.com/skovorodin/mini_shop/internal/mykafka"
	"github.com/skovorodin/mini_shop/internal/service/search"
	"github.com/skovorodin/mini_shop/internal/session"
	httpserver "github.com/skovorodin/mini_shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)

	database, err := db.Open(context.Background(), configuration.DatabaseURL)
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatal(err)
	}

	var store session.Store
	redisClient := config.NewRedisClient(configuration.RedisAddr)
	if redisClient != nil {
		store = &session.RedisStore{Client: redisClient}
	} else {
		logger.Warn("redis unavailable, falling back to in-process session store")
		store = session.NewMemoryStore()
	}
	sessions := session.NewManager(
		[]byte(configuration.SessionSecret),
		time.Duration(configuration.SessionTTLHours)*time.Hour,
		store,
	)

	var prod *mykafka.Producer
	if configuration.KafkaAddress != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KafkaAddress})
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("kafka not configured, events disabled")
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}
	searchSvc := &search.Service{ES: esClient, Index: "product", Log: logger}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	guard := &authmw.SessionGuard{DB: database, Sessions: sessions}
	deps := httpserver.Deps{
		Guard:          guard,
		AuthHandler:    &handlers.AuthHandler{DB: database, Sessions: sessions, Producer: prod, SecureCookie: configuration.SecureCookies},
		ProductHandler: &handlers.ProductHandler{DB: database, Producer: prod, Search: searchSvc},
		CartHandler:    &handlers.CartHandler{DB: database, Producer: prod},
		SearchHandler:  &handlers.SearchHandler{Search: searchSvc},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.Addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
