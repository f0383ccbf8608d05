package main

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/goldwen/matching-service/internal/app"
	"github.com/goldwen/matching-service/internal/cache"
	"github.com/goldwen/matching-service/internal/config"
	"github.com/goldwen/matching-service/internal/db"
	"github.com/goldwen/matching-service/internal/handlers"
	"github.com/goldwen/matching-service/internal/logger"
	"github.com/goldwen/matching-service/internal/server"
	matchingsvc "github.com/goldwen/matching-service/internal/service/matching"
	userssvc "github.com/goldwen/matching-service/internal/service/users"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	if cfg.App.ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(cfg, database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	router := server.NewRouter(server.RouterConfig{
		MatchingHandler: handlers.NewMatchingHandler(matchingsvc.NewMatchingService(appCtx)),
		UsersHandler:    handlers.NewUsersHandler(userssvc.NewUsersService(appCtx)),
	})

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, router); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
