package event

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestKafkaPublisher_FlushOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, 10, zap.NewNop())
	p.Start(context.Background())

	p.PublishOrderStatus(context.Background(), OrderStatusChanged{
		OrderNumber:    "ORD-1",
		Status:         "paid",
		PreviousStatus: "pending",
		Source:         SourceWebhook,
	})
	p.PublishOrderStatus(context.Background(), OrderStatusChanged{OrderNumber: "ORD-2", Status: "shipped", Source: SourceAdmin})

	p.Close()
	p.WaitClosed()

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.msgs, 2)
	assert.True(t, w.closed)
	assert.Equal(t, "ORD-1", string(w.msgs[0].Key))

	var evt OrderStatusChanged
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &evt))
	assert.Equal(t, "paid", evt.Status)
	assert.Equal(t, "pending", evt.PreviousStatus)
	assert.False(t, evt.OccurredAt.IsZero())

	// 关闭后发布不会 panic
	p.PublishOrderStatus(context.Background(), OrderStatusChanged{OrderNumber: "ORD-3"})
}

func TestKafkaPublisher_ContextCancelDrains(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, 10, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	p.PublishOrderStatus(ctx, OrderStatusChanged{OrderNumber: "ORD-1", OccurredAt: time.Now()})
	cancel()
	p.WaitClosed()

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Len(t, w.msgs, 1)
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PublishRacingCloseIsDropped(t *testing.T) {
	w := &fakeWriter{}
	core, logs := observer.New(zap.WarnLevel)
	p := newKafkaPublisher(w, 1024, zap.New(core))
	p.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.PublishOrderStatus(context.Background(), OrderStatusChanged{OrderNumber: "ORD-RACE", Status: "paid"})
			}
		}()
	}
	p.Close()
	p.Close()
	wg.Wait()
	p.WaitClosed()

	p.PublishOrderStatus(context.Background(), OrderStatusChanged{OrderNumber: "ORD-LATE"})
	dropped := logs.FilterMessage("order event dropped after shutdown").FilterField(zap.String("order_number", "ORD-LATE"))
	assert.Equal(t, 1, dropped.Len())

	// 关闭前入队的都已写出，之后的全部丢弃
	w.mu.Lock()
	defer w.mu.Unlock()
	total := len(w.msgs) + logs.FilterMessage("order event dropped after shutdown").FilterField(zap.String("order_number", "ORD-RACE")).Len()
	assert.Equal(t, 8*50, total)
}
