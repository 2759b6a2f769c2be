package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type msg struct {
	ID          string `json:"id"`
	RecipientID int64  `json:"recipient_id"`
}

func TestBroker_FiltersByTableEventAndRow(t *testing.T) {
	b := NewBroker(zap.NewNop())

	var inserts, updates []Event
	_, err := b.Subscribe(SubscriptionConfig{Event: EventInsert, Table: "messages", Filter: "recipient_id=eq.7"}, func(ev Event) {
		inserts = append(inserts, ev)
	})
	require.NoError(t, err)
	_, err = b.Subscribe(SubscriptionConfig{Event: EventUpdate, Table: "messages", Filter: "recipient_id=eq.7"}, func(ev Event) {
		updates = append(updates, ev)
	})
	require.NoError(t, err)

	b.Publish(Event{Type: EventInsert, Table: "messages", Record: RecordOf(msg{ID: "a", RecipientID: 7})})
	b.Publish(Event{Type: EventInsert, Table: "messages", Record: RecordOf(msg{ID: "b", RecipientID: 8})})
	b.Publish(Event{Type: EventUpdate, Table: "messages", Record: RecordOf(msg{ID: "a", RecipientID: 7})})
	b.Publish(Event{Type: EventInsert, Table: "bookings", Record: map[string]any{"recipient_id": 7}})

	require.Len(t, inserts, 1)
	assert.Equal(t, "a", inserts[0].Record["id"])
	require.Len(t, updates, 1)
	assert.False(t, updates[0].CommitTimestamp.IsZero())
}

func TestBroker_UnsubscribeAndOrder(t *testing.T) {
	b := NewBroker(zap.NewNop())
	var order []int

	s1, err := b.Subscribe(SubscriptionConfig{Table: "messages"}, func(Event) { order = append(order, 1) })
	require.NoError(t, err)
	_, err = b.Subscribe(SubscriptionConfig{Table: "messages"}, func(Event) { order = append(order, 2) })
	require.NoError(t, err)

	b.Publish(Event{Type: EventInsert, Table: "messages"})
	s1.Unsubscribe()
	s1.Unsubscribe()
	b.Publish(Event{Type: EventDelete, Table: "messages"})

	assert.Equal(t, []int{1, 2, 2}, order)
	assert.Equal(t, 1, b.SubscriberCount())
}

func TestBroker_InvalidFilter(t *testing.T) {
	b := NewBroker(zap.NewNop())
	for _, f := range []string{"recipient_id", "recipient_id=7", "recipient_id=gt.7"} {
		_, err := b.Subscribe(SubscriptionConfig{Table: "messages", Filter: f}, func(Event) {})
		assert.ErrorIs(t, err, ErrInvalidFilter, f)
	}
}

func TestBroker_InFilterAndPanicIsolation(t *testing.T) {
	b := NewBroker(zap.NewNop())
	var got int
	_, err := b.Subscribe(SubscriptionConfig{Table: "messages"}, func(Event) { panic("boom") })
	require.NoError(t, err)
	_, err = b.Subscribe(SubscriptionConfig{Table: "messages", Filter: "recipient_id=in.(1,2)"}, func(Event) { got++ })
	require.NoError(t, err)

	b.Publish(Event{Type: EventInsert, Table: "messages", Record: map[string]any{"recipient_id": 2}})
	b.Publish(Event{Type: EventInsert, Table: "messages", Record: map[string]any{"recipient_id": 3}})
	assert.Equal(t, 1, got)
}
