package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"group_chat_service/pkg/database"
	"group_chat_service/pkg/logger"
)

// NotifyJob 一筆待展開的通知工作
// 收件人集合不在 wire 上，由 notify worker 用 message id 回查快照
type NotifyJob struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	SenderID       string `json:"sender_id"`
	Timestamp      int64  `json:"timestamp"`
}

// NotifyProducer 把通知工作排入 RabbitMQ
type NotifyProducer interface {
	Notify(ctx context.Context, job NotifyJob) error
}

type rabbitNotifyProducer struct {
	rabbit database.RabbitRepo
	queue  string
}

// NewRabbitNotifyProducer create NotifyProducer backed by rabbitmq
func NewRabbitNotifyProducer(rabbit database.RabbitRepo, queue string) NotifyProducer {
	return &rabbitNotifyProducer{rabbit: rabbit, queue: queue}
}

func (p *rabbitNotifyProducer) Notify(_ context.Context, job NotifyJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.rabbit.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// RecipientLookup 用 message id 回查收件人快照
type RecipientLookup interface {
	RecipientIDs(ctx context.Context, messageID string) ([]string, error)
}

// BadgeStore 未讀角標計數器
type BadgeStore interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// NotifyConsumer 消費通知工作，為每個收件人累加未讀角標
type NotifyConsumer struct {
	rabbitChannel *amqp.Channel
	queueName     string
	recipients    RecipientLookup
	badges        BadgeStore
}

// NewNotifyConsumer 建構 NotifyConsumer 實例
func NewNotifyConsumer(ch *amqp.Channel, queueName string, recipients RecipientLookup, badges BadgeStore) *NotifyConsumer {
	return &NotifyConsumer{
		rabbitChannel: ch,
		queueName:     queueName,
		recipients:    recipients,
		badges:        badges,
	}
}

// BadgeKey 未讀角標的 redis key
func BadgeKey(memberID, conversationID string) string {
	return fmt.Sprintf("unread:%s:%s", memberID, conversationID)
}

// StartConsumer 開始消費通知工作
func (c *NotifyConsumer) StartConsumer(ctx context.Context) {
	msgs, err := c.rabbitChannel.Consume(
		c.queueName,
		"",    // consumer tag，留空由系統分配
		false, // autoAck 為 false，使用手動確認
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // arguments
	)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("無法開始消費 RabbitMQ 訊息: %v", err))
	}

	logger.Log.Info("notify consumer 已啟動，等待通知工作...")

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				logger.Log.Info("RabbitMQ 消費 channel 已關閉")
				return
			}

			var job NotifyJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				logger.Log.Errorf("解析通知工作失敗:", err)
				// 解析失敗沒有重試價值，直接丟棄
				if err := d.Nack(false, false); err != nil {
					logger.Log.Errorf("Nack 訊息失敗:", err)
				}
				continue
			}

			if err := c.processNotifyJob(ctx, job); err != nil {
				logger.Log.Errorf("處理通知工作失敗:", err)
				// 處理失敗時重新排入佇列
				if err := d.Nack(false, true); err != nil {
					logger.Log.Errorf("Nack 訊息失敗:", err)
				}
				continue
			}

			if err := d.Ack(false); err != nil {
				logger.Log.Errorf("確認訊息失敗:", err)
			}
		case <-ctx.Done():
			logger.Log.Info("notify consumer 收到停止訊號")
			return
		}
	}
}

// processNotifyJob 回查收件人快照並逐一累加未讀角標
func (c *NotifyConsumer) processNotifyJob(ctx context.Context, job NotifyJob) error {
	ids, err := c.recipients.RecipientIDs(ctx, job.MessageID)
	if err != nil {
		return fmt.Errorf("回查收件人失敗: %w", err)
	}

	for _, memberID := range ids {
		if _, err := c.badges.Incr(ctx, BadgeKey(memberID, job.ConversationID)); err != nil {
			return fmt.Errorf("累加未讀角標失敗 member=%s: %w", memberID, err)
		}
	}
	return nil
}
