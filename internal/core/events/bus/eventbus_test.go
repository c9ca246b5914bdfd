package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []any
	_, err := b.Subscribe("piece.moved", func(e Event) error {
		got = append(got, e.Data())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("piece.moved", "board", "T1")))
	require.NoError(t, b.Publish(NewEvent("piece.removed", "board", "T2")))
	assert.Equal(t, []any{"T1"}, got)
}

func TestSubscriptionOrderAndWildcard(t *testing.T) {
	b := New()
	var order []string
	_, _ = b.Subscribe(AnyEvent, func(Event) error { order = append(order, "any"); return nil })
	_, _ = b.Subscribe("x", func(Event) error { order = append(order, "first"); return nil })
	_, _ = b.Subscribe("x", func(Event) error { order = append(order, "second"); return nil })

	require.NoError(t, b.Publish(NewEvent("x", "t", nil)))
	assert.Equal(t, []string{"first", "second", "any"}, order)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe("x", func(Event) error { count++; return nil })
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "x", sub.EventType())
	assert.Equal(t, 1, b.Metrics().Subscribers)

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, b.Unsubscribe(nil))
	assert.False(t, sub.IsActive())

	_ = b.Publish(NewEvent("x", "t", nil))
	assert.Zero(t, count)
	assert.Zero(t, b.Metrics().Subscribers)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1, e2 := errors.New("one"), errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "t", nil))
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	m := b.Metrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(2), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.Errors)
}

func TestPublishAsync(t *testing.T) {
	b := New()
	fail := errors.New("fail")
	_, _ = b.Subscribe("x", func(Event) error { return fail })

	select {
	case err := <-b.PublishAsync(NewEvent("x", "t", nil)):
		assert.ErrorIs(t, err, fail)
	case <-time.After(time.Second):
		t.Fatal("async publish did not complete")
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	_, err := New().Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}
