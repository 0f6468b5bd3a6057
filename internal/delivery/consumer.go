package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"group_chat_service/pkg/logger"
)

// Sink 把投遞單轉發給目前訂閱該 conversation channel 的 session
// fire-and-forget，收到重覆投遞也無妨，sink 本身不保存狀態
type Sink interface {
	Publish(channel string, message interface{}) error
}

// Fetcher 提出 kafka.Reader 需要的方法，方便測試替換
type Fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer 從 queue 拉投遞單轉發到 live sink，並排入通知工作
type Consumer struct {
	fetcher  Fetcher
	sink     Sink
	notifier NotifyProducer // 可為 nil，通知屬 best-effort
}

// NewConsumer 建構 Consumer 實例
func NewConsumer(fetcher Fetcher, sink Sink, notifier NotifyProducer) *Consumer {
	return &Consumer{
		fetcher:  fetcher,
		sink:     sink,
		notifier: notifier,
	}
}

// Run 持續消費投遞單直到 ctx 取消
// at-least-once: sink 轉發成功才 commit offset，
// 中途 crash 會造成重送，由 sink 的無狀態特性吸收
func (c *Consumer) Run(ctx context.Context) {
	logger.Log.Info("delivery consumer 已啟動，等待投遞訊息...")

	for {
		msg, err := c.fetcher.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Log.Info("delivery consumer 收到停止訊號")
				return
			}
			logger.Log.Errorf("fetch delivery record 失敗:", err)
			return
		}

		var rec Record
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			// 壞掉的 payload 沒有重試價值，記錄後跳過
			logger.Log.Errorf("解析投遞單失敗:", err)
			if err := c.fetcher.CommitMessages(ctx, msg); err != nil {
				logger.Log.Errorf("commit offset 失敗:", err)
			}
			continue
		}

		if err := c.publishSink(ctx, rec); err != nil {
			// offset 保持未 commit，重啟後從這筆重送
			// 繼續往後拉會 commit 到更後面的 offset，這筆就永遠丟了
			return
		}

		if c.notifier != nil {
			if err := c.notifier.Notify(ctx, NotifyJob{
				ConversationID: rec.ConversationID,
				MessageID:      rec.MessageID,
				SenderID:       rec.SenderID,
				Timestamp:      rec.Timestamp,
			}); err != nil {
				// 通知失敗不影響已完成的 live 轉發
				logger.Log.Errorf("排入通知工作失敗:", err)
			}
		}

		if err := c.fetcher.CommitMessages(ctx, msg); err != nil {
			logger.Log.Errorf("commit offset 失敗:", err)
		}
	}
}

// publishSink 轉發失敗時原地重試同一筆，不跳到下一筆
// ctx 取消才放棄，回傳最後一次的錯誤
func (c *Consumer) publishSink(ctx context.Context, rec Record) error {
	backoff := time.Second
	for {
		err := c.sink.Publish(ChannelFor(rec.ConversationID), rec)
		if err == nil {
			return nil
		}
		logger.Log.Errorf(fmt.Sprintf("轉發投遞單失敗 conversation=%s message=%s，%s 後重試:", rec.ConversationID, rec.MessageID, backoff), err)

		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
