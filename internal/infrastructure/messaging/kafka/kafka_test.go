package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader serves queued messages, then blocks until the context ends
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducer(w)

	require.NoError(t, p.Publish(context.Background(), "R123", []byte(`{"order_number":"R123"}`)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "R123", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"order_number":"R123"}`, string(w.msgs[0].Value))

	w.err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), "R123", nil))
}

func TestHeaderCarrier(t *testing.T) {
	c := HeaderCarrier{}
	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	c.Set("baggage", "k=v")

	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "baggage"}, c.Keys())
}

func TestConsume_CommitsHandledMessages(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		{Key: []byte("R1"), Value: []byte("one"), Offset: 1},
		{Key: []byte("R2"), Value: []byte("two"), Offset: 2},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	handle := func(ctx context.Context, key string, value []byte) error {
		seen = append(seen, key)
		if len(seen) == 2 {
			defer cancel()
		}
		return nil
	}

	require.NoError(t, consume(ctx, r, handle, zap.NewNop()))
	assert.Equal(t, []string{"R1", "R2"}, seen)
	assert.Len(t, r.committed, 2)
}

func TestConsume_HandlerErrorLeavesOffsetUncommitted(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Key: []byte("R1"), Offset: 7}}}
	boom := errors.New("vendor unavailable")

	err := consume(context.Background(), r, func(ctx context.Context, key string, value []byte) error {
		return boom
	}, zap.NewNop())

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.committed)
}

func TestConsumer_RunClosesReaders(t *testing.T) {
	var readers []*fakeReader
	var mu sync.Mutex
	c := NewConsumer(func() MessageReader {
		mu.Lock()
		defer mu.Unlock()
		r := &fakeReader{}
		readers = append(readers, r)
		return r
	}, 3, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.Run(ctx, func(ctx context.Context, key string, value []byte) error { return nil }))

	require.Len(t, readers, 3)
	for _, r := range readers {
		assert.True(t, r.closed)
	}
}
