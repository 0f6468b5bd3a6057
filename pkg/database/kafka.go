package database

import (
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"group_chat_service/pkg/logger"
)

// NewKafkaWriterWithRetry 嘗試連線 broker 後建立 Kafka Writer
// Balancer 採用 Hash：同一個 key 永遠落在同一個 partition
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	if err := dialKafkaWithRetry(k); err != nil {
		return nil, err
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  k.Brokers,
		Topic:    k.Topic,
		Balancer: &kafka.Hash{},
	})
	return writer, nil
}

// NewKafkaReaderWithRetry 嘗試連線 broker 後建立 Kafka group Reader
func NewKafkaReaderWithRetry(k KafkaConnection) (*kafka.Reader, error) {
	if err := dialKafkaWithRetry(k); err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.Brokers,
		Topic:    k.Topic,
		GroupID:  k.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return reader, nil
}

// dialKafkaWithRetry 確認 broker 連線是否成功
func dialKafkaWithRetry(k KafkaConnection) error {
	var err error

	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		var conn *kafka.Conn
		conn, err = kafka.Dial("tcp", k.Brokers[0])
		if err == nil {
			conn.Close()
			logger.Log.Info(fmt.Sprintf("Kafka 連線成功 (嘗試 %d 次)", attempt))
			return nil
		}

		logger.Log.Warn(fmt.Sprintf("Kafka 連線失敗 (嘗試 %d/%d): %v", attempt, k.RetryCount, err))
		time.Sleep(k.RetryInterval * time.Second)
	}

	return fmt.Errorf("無法連線 Kafka[%v]，經過 %d 次嘗試: %v", k.Brokers, k.RetryCount, err)
}
