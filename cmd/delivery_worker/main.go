package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"group_chat_service/internal/chat/repository"
	"group_chat_service/internal/delivery"
	"group_chat_service/pkg/config"
	"group_chat_service/pkg/database"
	"group_chat_service/pkg/logger"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.DeliveryWorker, config.EnvConfig.DeliveryWorkerLogPath)
	cfg := config.LoadConfig[config.DeliveryWorker](config.EnvConfig.DeliveryWorker, config.EnvConfig.DeliveryWorkerYAMLPath)

	// 1. 建立 Kafka Reader (delivery queue)
	kafkaReader, err := database.NewKafkaReaderWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		GroupID:       cfg.Kafka.GroupID,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("Kafka Reader 建立失敗: %v", err))
	}
	defer kafkaReader.Close()

	// 2. 建立 Redis 連線 (即時推播 sink)
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// 3. 建立 RabbitMQ 連線 (未讀通知工作)
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

	// 先初始化 notify queue
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

	notifier := delivery.NewRabbitNotifyProducer(database.NewRabbitRepository(rabbitChannel), cfg.RabbitMQ.Queue)
	consumer := delivery.NewConsumer(kafkaReader, repository.NewRedisPubSub(redisClient), notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Log.Info("delivery worker started")
	consumer.Run(ctx)
}
