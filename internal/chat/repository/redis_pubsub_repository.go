package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"group_chat_service/internal/chat/domain"
	"group_chat_service/internal/delivery"
	"group_chat_service/pkg/logger"
)

// PubSub definition 即時推播的發佈/訂閱介面
type PubSub interface {
	Publish(channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish 將 message 序列化後，發布到指定 channel
func (r *RedisPubSub) Publish(channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe 訂閱 conversation channel，收到投遞紀錄後呼叫 handler 處理
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var rec delivery.Record
				if err := json.Unmarshal([]byte(m.Payload), &rec); err != nil {
					logger.Log.Error("subscribe err :", zap.String("err", fmt.Sprintf("failed to unmarshal delivery record: %v", err)))
					continue
				}

				resp := domain.WSResponse{
					Action:  string(domain.NotifyMessage),
					Success: true,
					Payload: map[string]interface{}{
						"message_id":      rec.MessageID,
						"sender_id":       rec.SenderID,
						"conversation_id": rec.ConversationID,
						"message":         rec.Content,
						"timestamp":       rec.Timestamp,
					},
				}
				handler(resp)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				// 當 ctx 被取消時，退出循環並關閉訂閱
				sub.Close()
				return
			}
		}
	}()
	return nil
}
