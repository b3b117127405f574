package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishReachesSubscribers(t *testing.T) {
	t.Parallel()

	dispatcher := NewInMemoryDispatcher()

	var received []Event
	dispatcher.Subscribe(EventEnrollmentCreated, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		ID:           "evt-1",
		Type:         EventEnrollmentCreated,
		EnrollmentID: "enr-1",
	})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "enr-1", received[0].EnrollmentID)
}

func TestDispatcher_OnlyMatchingTypeDelivered(t *testing.T) {
	t.Parallel()

	dispatcher := NewInMemoryDispatcher()

	var calls int
	dispatcher.Subscribe(EventEnrollmentRemoved, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventEnrollmentCreated}))
	assert.Zero(t, calls)

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventEnrollmentRemoved}))
	assert.Equal(t, 1, calls)
}

func TestDispatcher_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	dispatcher := NewInMemoryDispatcher()

	var secondCalled bool
	dispatcher.Subscribe(EventEnrollmentStatusChanged, func(context.Context, Event) error {
		return errors.New("handler failure")
	})
	dispatcher.Subscribe(EventEnrollmentStatusChanged, func(context.Context, Event) error {
		secondCalled = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventEnrollmentStatusChanged}))
	assert.True(t, secondCalled)
}
