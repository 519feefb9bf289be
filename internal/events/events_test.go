package events

import (
	"context"
	"testing"
	"time"

	"merithub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPublishDispatchesToSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(nil, zaptest.NewLogger(t))

	var got Event
	handler := NewEventHandlerFunc("capture", func(ctx context.Context, event Event) error {
		got = event
		return nil
	})
	require.NoError(t, bus.Subscribe(TypeBadgeAwarded, handler))

	event := NewBadgeAwardedEvent("alice", &models.UserBadge{
		UserRef:    "alice",
		BadgeKey:   "good-question",
		BadgeName:  "Good Question",
		BadgeLevel: models.LevelBronze,
	})
	require.NoError(t, bus.Publish(context.Background(), event))

	require.NotNil(t, got)
	assert.Equal(t, "alice", got.GetUserRef())
}

func TestPublishSurfacesHandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(nil, zaptest.NewLogger(t))

	handler := NewEventHandlerFunc("panics", func(ctx context.Context, event Event) error {
		panic("boom")
	})
	require.NoError(t, bus.Subscribe(TypeBadgeAwarded, handler))

	event := NewBadgeAwardedEvent("alice", &models.UserBadge{
		UserRef:    "alice",
		BadgeKey:   "good-question",
		BadgeName:  "Good Question",
		BadgeLevel: models.LevelBronze,
	})
	err := bus.Publish(context.Background(), event)
	require.Error(t, err)

	stats := bus.Stats()
	assert.Equal(t, int64(1), stats.EventsFailed)
}

func TestPublishHonorsConfiguredHandlerTimeout(t *testing.T) {
	cfg := &EventBusConfig{
		BufferSize:     10,
		WorkerCount:    1,
		HandlerTimeout: 50 * time.Millisecond,
	}
	bus := NewInMemoryEventBus(cfg, zaptest.NewLogger(t))

	handler := NewEventHandlerFunc("blocks", func(ctx context.Context, event Event) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, bus.Subscribe(TypeBadgeAwarded, handler))

	event := NewBadgeAwardedEvent("alice", &models.UserBadge{
		UserRef:    "alice",
		BadgeKey:   "good-question",
		BadgeName:  "Good Question",
		BadgeLevel: models.LevelBronze,
	})

	start := time.Now()
	err := bus.Publish(context.Background(), event)
	require.Error(t, err)
	// The default timeout is 30s; the configured 50ms must win.
	assert.Less(t, time.Since(start), 5*time.Second)
}
