package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"group_chat_service/pkg/logger"
)

func init() {
	logger.SetNewNop()
}

// fakeFetcher 依序吐出預先排好的訊息，吐完回傳 io.EOF 結束 Run
type fakeFetcher struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []kafka.Message
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeFetcher) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

// fakeSink 記錄收到的投遞，可設定前 N 筆失敗
type fakeSink struct {
	mu       sync.Mutex
	failNext int
	onFail   func() // 失敗時回呼，測試用來取消 ctx
	channels []string
	records  []Record
}

func (s *fakeSink) Publish(channel string, message interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		if s.onFail != nil {
			s.onFail()
		}
		return errors.New("sink down")
	}
	s.channels = append(s.channels, channel)
	s.records = append(s.records, message.(Record))
	return nil
}

func kafkaMessageFor(t *testing.T, rec Record) kafka.Message {
	t.Helper()
	data, err := json.Marshal(rec)
	assert.NoError(t, err)
	return kafka.Message{Key: []byte(rec.ConversationID), Value: data}
}

// 測試同一 conversation 的兩筆投遞依序送達同一 channel
func TestConsumerRun_OrderedDelivery(t *testing.T) {
	rec1 := Record{ConversationID: "conv-1", MessageID: "m1", SenderID: "a", Content: "first", Timestamp: 1}
	rec2 := Record{ConversationID: "conv-1", MessageID: "m2", SenderID: "a", Content: "second", Timestamp: 2}

	fetcher := &fakeFetcher{msgs: []kafka.Message{
		kafkaMessageFor(t, rec1),
		kafkaMessageFor(t, rec2),
	}}
	sink := &fakeSink{}

	NewConsumer(fetcher, sink, nil).Run(context.Background())

	assert.Equal(t, []Record{rec1, rec2}, sink.records)
	assert.Equal(t, []string{ChannelFor("conv-1"), ChannelFor("conv-1")}, sink.channels)
	assert.Len(t, fetcher.committed, 2)
}

// 測試 sink 失敗時不 commit offset，該筆會被重送
func TestConsumerRun_NoCommitOnSinkFailure(t *testing.T) {
	rec := Record{ConversationID: "conv-1", MessageID: "m1", SenderID: "a", Content: "hi", Timestamp: 1}

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &fakeFetcher{msgs: []kafka.Message{kafkaMessageFor(t, rec)}}
	sink := &fakeSink{failNext: 1, onFail: cancel}

	NewConsumer(fetcher, sink, nil).Run(ctx)

	assert.Empty(t, sink.records)
	assert.Empty(t, fetcher.committed)
}

// 測試 sink 失敗時不會往後拉下一筆
// 同 partition 後面的 offset 一旦 commit，失敗那筆就默默丟失
func TestConsumerRun_SinkFailureDoesNotAdvanceOffset(t *testing.T) {
	rec1 := Record{ConversationID: "conv-1", MessageID: "m1", SenderID: "a", Content: "first", Timestamp: 1}
	rec2 := Record{ConversationID: "conv-1", MessageID: "m2", SenderID: "a", Content: "second", Timestamp: 2}

	msg1 := kafkaMessageFor(t, rec1)
	msg1.Offset = 10
	msg2 := kafkaMessageFor(t, rec2)
	msg2.Offset = 11

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &fakeFetcher{msgs: []kafka.Message{msg1, msg2}}
	sink := &fakeSink{failNext: 1, onFail: cancel}

	NewConsumer(fetcher, sink, nil).Run(ctx)

	// offset 10 失敗後 11 不能被 commit，也不能被送出
	assert.Empty(t, fetcher.committed)
	assert.Empty(t, sink.records)
	assert.Len(t, fetcher.msgs, 1)
}

// 測試 sink 暫時失敗時原地重試同一筆，成功後才 commit
func TestConsumerRun_SinkRetriesSameRecord(t *testing.T) {
	rec := Record{ConversationID: "conv-1", MessageID: "m1", SenderID: "a", Content: "hi", Timestamp: 1}

	fetcher := &fakeFetcher{msgs: []kafka.Message{kafkaMessageFor(t, rec)}}
	sink := &fakeSink{failNext: 1}

	NewConsumer(fetcher, sink, nil).Run(context.Background())

	assert.Equal(t, []Record{rec}, sink.records)
	assert.Len(t, fetcher.committed, 1)
}

// 測試壞掉的 payload 直接 commit 跳過，不會卡住 queue
func TestConsumerRun_PoisonMessageCommitted(t *testing.T) {
	good := Record{ConversationID: "conv-1", MessageID: "m1", SenderID: "a", Content: "ok", Timestamp: 1}

	fetcher := &fakeFetcher{msgs: []kafka.Message{
		{Key: []byte("conv-1"), Value: []byte("{not json")},
		kafkaMessageFor(t, good),
	}}
	sink := &fakeSink{}

	NewConsumer(fetcher, sink, nil).Run(context.Background())

	assert.Equal(t, []Record{good}, sink.records)
	assert.Len(t, fetcher.committed, 2)
}

// 測試 notifier 失敗不影響已完成的 live 轉發與 commit
func TestConsumerRun_NotifierFailureStillCommits(t *testing.T) {
	rec := Record{ConversationID: "conv-1", MessageID: "m1", SenderID: "a", Content: "hi", Timestamp: 1}

	fetcher := &fakeFetcher{msgs: []kafka.Message{kafkaMessageFor(t, rec)}}
	sink := &fakeSink{}
	notifier := &fakeNotifier{err: errors.New("rabbit down")}

	NewConsumer(fetcher, sink, notifier).Run(context.Background())

	assert.Equal(t, []Record{rec}, sink.records)
	assert.Len(t, fetcher.committed, 1)
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	jobs []NotifyJob
}

func (n *fakeNotifier) Notify(_ context.Context, job NotifyJob) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
	return n.err
}
