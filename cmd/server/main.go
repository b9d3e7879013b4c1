package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"movie-watchlist/cmd/config"
	"movie-watchlist/pkg/auth"
	"movie-watchlist/pkg/database"
	"movie-watchlist/pkg/handlers"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := database.Seed(db); err != nil {
		logger.Fatalf("Failed to seed database: %v", err)
	}

	authSvc := auth.NewService(db, cfg.SessionSecret, cfg.SessionTTL)
	h := handlers.New(db, authSvc, logger)

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(logger))
	h.Register(r)

	logger.Infof("Starting server on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
