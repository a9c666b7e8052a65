package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/comanda-next/internal/cache"
	"github.com/comanda-next/internal/logger"
)

// Event 领域事件
// 会话、订单、认领、通知的状态变化统一经此结构广播
type Event struct {
	Topic     string      `json:"topic"`
	Type      string      `json:"type"`
	TenantID  uint        `json:"tenant_id"`
	TableID   uint        `json:"table_id,omitempty"`
	SessionID uint        `json:"session_id,omitempty"`
	OrderID   uint        `json:"order_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	At        time.Time   `json:"at"`
}

// Subscription 订阅句柄
// C 上接收事件；不再需要时调用 Cancel 退订并关闭通道
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	topic  string
	broker *Broker
	mu     sync.Mutex
	closed bool
}

// Cancel 退订并释放通道，可重复调用
// closed 标记与投递共用同一把锁，退订与广播并发时不会写已关闭的通道
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	s.mu.Unlock()
	s.broker.remove(s.topic, s)
}

func (s *Subscription) send(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- event:
	default:
		// 订阅方消费过慢时丢弃，广播不保证送达
	}
}

// Broker 进程内事件广播器
// 投递为尽力而为：订阅方接收缓冲打满时丢弃事件，绝不阻塞发布方
type Broker struct {
	mu     sync.RWMutex
	subs   map[string][]*Subscription
	buffer int
}

// NewBroker 创建广播器
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{
		subs:   make(map[string][]*Subscription),
		buffer: buffer,
	}
}

// Subscribe 订阅指定主题，返回可取消的订阅句柄
func (b *Broker) Subscribe(topic string) *Subscription {
	ch := make(chan Event, b.buffer)
	sub := &Subscription{C: ch, ch: ch, topic: topic, broker: b}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()
	return sub
}

// Publish 向主题广播事件，同时镜像写入 Redis 频道供跨进程消费
func (b *Broker) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	// 退订会原地收缩底层数组，快照一份再投递
	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs[event.Topic]))
	copy(subs, b.subs[event.Topic])
	b.mu.RUnlock()
	for _, sub := range subs {
		sub.send(event)
	}

	b.mirrorToRedis(ctx, event)
}

// SubscriberCount 返回主题当前订阅数
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Broker) remove(topic string, target *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, sub := range subs {
		if sub == target {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

func (b *Broker) mirrorToRedis(ctx context.Context, event Event) {
	if !cache.Enabled() {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warnw("stream_event_marshal_failed", "topic", event.Topic, "error", err)
		return
	}
	if err := cache.Client().Publish(ctx, "stream:"+event.Topic, payload).Err(); err != nil {
		logger.Warnw("stream_event_mirror_failed", "topic", event.Topic, "error", err)
	}
}
