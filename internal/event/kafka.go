package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher 通过后台 goroutine 异步写入 Kafka
// 按 order_number 做 key，同一订单的事件落在同一分区保证顺序
type KafkaPublisher struct {
	w     messageWriter
	inbox chan kafka.Message
	done  chan struct{}
	log   *zap.Logger

	// mu 保护 closed 与 inbox 的关闭：发送持读锁，Close 持写锁
	mu     sync.RWMutex
	closed bool
}

// messageWriter kafka.Writer 的最小接口，测试时替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaPublisher 创建发布器，调用 Start 后开始投递
func NewKafkaPublisher(brokers []string, topic string, buf int, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return newKafkaPublisher(w, buf, log)
}

func newKafkaPublisher(w messageWriter, buf int, log *zap.Logger) *KafkaPublisher {
	if buf <= 0 {
		buf = 256
	}
	return &KafkaPublisher{
		w:     w,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
		log:   log,
	}
}

// Start 启动投递循环
// ctx 结束或调用 Close 后会把缓冲区内剩余消息写完再退出
func (p *KafkaPublisher) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				p.Close()
				p.drain()
				return
			case m, ok := <-p.inbox:
				if !ok {
					p.finish()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *KafkaPublisher) drain() {
	for m := range p.inbox {
		p.write(m)
	}
	p.finish()
}

func (p *KafkaPublisher) finish() {
	if err := p.w.Close(); err != nil {
		p.log.Warn("kafka writer close failed", zap.Error(err))
	}
}

func (p *KafkaPublisher) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Error("publish order event failed",
			zap.String("key", string(m.Key)),
			zap.Error(err),
		)
	}
}

// PublishOrderStatus 入队，缓冲区满时丢弃并记录日志
func (p *KafkaPublisher) PublishOrderStatus(_ context.Context, evt OrderStatusChanged) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	value, err := json.Marshal(evt)
	if err != nil {
		p.log.Error("marshal order event failed", zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(evt.OrderNumber),
		Value: value,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.status_changed")},
			{Key: "source", Value: []byte(evt.Source)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn("order event dropped after shutdown", zap.String("order_number", evt.OrderNumber))
		return
	}

	select {
	case p.inbox <- msg:
	default:
		p.log.Warn("order event buffer full, dropping", zap.String("order_number", evt.OrderNumber))
	}
}

// Close 停止接收新消息，可重复调用
func (p *KafkaPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// WaitClosed 等待投递循环退出
func (p *KafkaPublisher) WaitClosed() {
	<-p.done
}
