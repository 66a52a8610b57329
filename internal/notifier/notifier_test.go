package notifier

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/visitcare-api/internal/model"
)

// memoryBroker is an in-process messaging.Broker for tests.
type memoryBroker struct {
	mu   sync.Mutex
	subs map[string][]chan []byte
}

func newMemoryBroker() *memoryBroker {
	return &memoryBroker{subs: make(map[string][]chan []byte)}
}

func (b *memoryBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[channel] {
		ch <- payload
	}
	return nil
}

func (b *memoryBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 100)
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()
	return ch, nil
}

func (b *memoryBroker) Close() error { return nil }

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func collectChanges(t *testing.T, n *ScheduleNotifier, ctx context.Context) (*[]model.ScheduleChange, *sync.Mutex) {
	t.Helper()
	var mu sync.Mutex
	var got []model.ScheduleChange
	err := n.Subscribe(ctx, func(c model.ScheduleChange) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})
	require.NoError(t, err)
	return &got, &mu
}

func TestNotifierIgnoresOwnEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := newMemoryBroker()
	facility := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	aliceNotifier := NewScheduleNotifier(broker, facility, alice, testLogger())
	bobNotifier := NewScheduleNotifier(broker, facility, bob, testLogger())

	got, mu := collectChanges(t, aliceNotifier, ctx)

	visitID := uuid.New()
	aliceNotifier.Notify(ctx, visitID, model.ChangeActionUpdate)
	bobNotifier.Notify(ctx, visitID, model.ChangeActionUpdate)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*got) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, bob.String(), (*got)[0].ActingStaffID)
	assert.Equal(t, visitID.String(), (*got)[0].VisitID)
}

func TestNotifierDedupsRedeliveredEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := newMemoryBroker()
	facility := uuid.New()
	local := NewScheduleNotifier(broker, facility, uuid.New(), testLogger())

	got, mu := collectChanges(t, local, ctx)

	change := model.ScheduleChange{
		EventID:       uuid.NewString(),
		VisitID:       uuid.NewString(),
		Action:        model.ChangeActionDelete,
		ActingStaffID: uuid.NewString(),
		Timestamp:     time.Now(),
	}

	// Same event delivered twice in a row: callback fires exactly once.
	require.NoError(t, broker.Publish(ctx, channelFor(facility), change))
	require.NoError(t, broker.Publish(ctx, channelFor(facility), change))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*got) == 1
	}, time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, *got, 1)
}

func TestNotifierProcessesDistinctEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := newMemoryBroker()
	facility := uuid.New()
	local := NewScheduleNotifier(broker, facility, uuid.New(), testLogger())
	remote := NewScheduleNotifier(broker, facility, uuid.New(), testLogger())

	got, mu := collectChanges(t, local, ctx)

	remote.Notify(ctx, uuid.New(), model.ChangeActionCreate)
	remote.Notify(ctx, uuid.New(), model.ChangeActionDelete)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*got) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestNotifyPublishFailureIsSwallowed(t *testing.T) {
	n := NewScheduleNotifier(&failingBroker{}, uuid.New(), uuid.New(), testLogger())
	// Must not panic or return anything; failure is log-only.
	n.Notify(context.Background(), uuid.New(), model.ChangeActionCreate)
}

type failingBroker struct{}

func (f *failingBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return assert.AnError
}

func (f *failingBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, assert.AnError
}

func (f *failingBroker) Close() error { return nil }
