package delivery

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"group_chat_service/pkg/errprocess"
)

// Producer 在訊息落地後發佈投遞單
type Producer interface {
	Publish(ctx context.Context, rec Record) error
}

// KafkaWriter 提出 kafka.Writer 需要的方法，方便測試替換
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type kafkaProducer struct {
	writer KafkaWriter
}

// NewKafkaProducer create a Producer backed by a kafka writer
func NewKafkaProducer(w KafkaWriter) Producer {
	return &kafkaProducer{writer: w}
}

// Publish 發佈一筆投遞單，key 固定為 conversation id
// 失敗屬於投遞層錯誤，caller 不會因此回滾已建立的訊息
func (p *kafkaProducer) Publish(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errprocess.DeliveryFault("marshal delivery record", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.ConversationID),
		Value: data,
	})
	if err != nil {
		return errprocess.DeliveryFault("kafka publish", err)
	}
	return nil
}
