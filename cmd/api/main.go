package main

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/config"
	"github.com/crustntrust/site-api/internal/server"
)

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}

	app, err := server.New(ctx, cfg, client, logger)
	if err != nil {
		logger.Fatal("server setup failed", zap.Error(err))
	}
	if err := app.Run(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
