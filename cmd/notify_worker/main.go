package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"group_chat_service/internal/chat/repository"
	"group_chat_service/internal/delivery"
	"group_chat_service/pkg/config"
	"group_chat_service/pkg/database"
	"group_chat_service/pkg/logger"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.NotifyWorker, config.EnvConfig.NotifyWorkerLogPath)
	cfg := config.LoadConfig[config.NotifyWorker](config.EnvConfig.NotifyWorker, config.EnvConfig.NotifyWorkerYAMLPath)

	// 1. 建立 PostgreSQL 連線 (查投遞紀錄的收件人)
	sqlParams := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    sqlParams,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", sqlParams)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	// 2. 建立 Redis 連線 (未讀計數)
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	badges := database.NewRedisRepository[int64](redisClient)

	// 3. 建立 RabbitMQ 連線 (notify queue)
	conn, err := database.ConnectRabbitMQWithRetry(database.RabbitConnection{
		URL:           cfg.RabbitMQ.URL,
		Queue:         cfg.RabbitMQ.Queue,
		RetryCount:    cfg.RabbitMQ.RetryCount,
		RetryInterval: time.Duration(cfg.RabbitMQ.RetryInterval),
	})
	if err != nil {
		log.Fatalf("RabbitMQ 連線失敗: %v", err)
	}
	defer conn.Close()

	rabbitChannel, err := database.GetRabbitMQChannelWithRetry(conn, cfg.RabbitMQ.RetryCount, time.Duration(cfg.RabbitMQ.RetryInterval))
	if err != nil {
		log.Fatalf("取得 RabbitMQ Channel 失敗: %v", err)
	}
	defer rabbitChannel.Close()

	if _, err := rabbitChannel.QueueDeclare(
		cfg.RabbitMQ.Queue, // queue name
		true,               // durable
		false,              // autoDelete
		false,              // exclusive
		false,              // noWait
		nil,                // arguments
	); err != nil {
		log.Fatalf("Queue Declare failed: %v", err)
	}

	msgRepo := repository.NewMessageRepository(pool)
	consumer := delivery.NewNotifyConsumer(rabbitChannel, cfg.RabbitMQ.Queue, msgRepo, badges)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Log.Info("notify worker started")
	consumer.StartConsumer(ctx)
}
