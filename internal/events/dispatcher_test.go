package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesHandlersInOrder(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(nil)

	var order []string
	dispatcher.Subscribe(EventRequestCreated, func(ctx context.Context, event Event) error {
		order = append(order, "first")
		return nil
	})
	dispatcher.Subscribe(EventRequestCreated, func(ctx context.Context, event Event) error {
		order = append(order, "second")
		return nil
	})
	dispatcher.Subscribe(EventRequestCancelled, func(ctx context.Context, event Event) error {
		order = append(order, "other")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventRequestCreated, RequestID: "req-1"})
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, order)
}

func TestDispatcherFailingHandlerDoesNotBlockOthers(t *testing.T) {
	var observed []error
	dispatcher := NewInMemoryDispatcher(func(event Event, err error) {
		observed = append(observed, err)
	})

	boom := errors.New("boom")
	ran := false
	dispatcher.Subscribe(EventRequestEstimated, func(ctx context.Context, event Event) error {
		return boom
	})
	dispatcher.Subscribe(EventRequestEstimated, func(ctx context.Context, event Event) error {
		ran = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventRequestEstimated})
	require.NoError(t, err)
	require.True(t, ran)
	require.Equal(t, []error{boom}, observed)
}

func TestDispatcherNoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(nil)
	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}))
}
