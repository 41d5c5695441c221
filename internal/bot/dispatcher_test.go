package bot

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDeliverer struct {
	delivered chan int64
}

func (f *fakeDeliverer) Deliver(_ context.Context, buyerID int64) error {
	f.delivered <- buyerID
	return nil
}

func newTestDispatcher(queueSize int) (*Dispatcher, *fakeDeliverer, chan tgbotapi.Update) {
	updates := make(chan tgbotapi.Update)
	machine, _ := newTestMachine(&fakeGateway{url: "https://example.test"})
	deliverer := &fakeDeliverer{delivered: make(chan int64, queueSize)}
	d := NewDispatcher(machine, deliverer, updates, queueSize, zap.NewNop())
	return d, deliverer, updates
}

func TestScheduleDeliveryNeverBlocks(t *testing.T) {
	// Dispatcher deliberately not running: submissions must still return
	// immediately, reporting drops once the queue is full.
	d, _, _ := newTestDispatcher(2)

	assert.True(t, d.ScheduleDelivery(1))
	assert.True(t, d.ScheduleDelivery(2))

	done := make(chan bool, 1)
	go func() { done <- d.ScheduleDelivery(3) }()

	select {
	case accepted := <-done:
		assert.False(t, accepted, "full queue must drop, not block")
	case <-time.After(time.Second):
		t.Fatal("ScheduleDelivery blocked on a full queue")
	}
}

func TestDeliveryRunsOnDispatcher(t *testing.T) {
	d, deliverer, _ := newTestDispatcher(8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	require.True(t, d.ScheduleDelivery(42))

	select {
	case buyerID := <-deliverer.delivered:
		assert.Equal(t, int64(42), buyerID)
	case <-time.After(time.Second):
		t.Fatal("scheduled delivery never executed")
	}
}

func TestRunStopsWhenUpdatesChannelCloses(t *testing.T) {
	d, _, updates := newTestDispatcher(1)

	stopped := make(chan struct{})
	go func() {
		d.Run(context.Background())
		close(stopped)
	}()

	close(updates)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after updates channel closed")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	d, _, _ := newTestDispatcher(1)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(stopped)
	}()

	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancellation")
	}
}
