// Package realtime fans table change events out to filtered subscribers.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

var ErrInvalidFilter = errors.New("invalid realtime filter")

// Event is one row change on a table.
type Event struct {
	Type            EventType      `json:"type"`
	Table           string         `json:"table"`
	Record          map[string]any `json:"record,omitempty"`
	OldRecord       map[string]any `json:"old_record,omitempty"`
	CommitTimestamp time.Time      `json:"commit_timestamp"`
}

// SubscriptionConfig selects events by type, table and an optional
// PostgREST-style row filter such as "recipient_id=eq.42".
type SubscriptionConfig struct {
	Event  EventType
	Table  string
	Filter string
}

type Handler func(Event)

type Broker struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*subscriber
	logger *zap.Logger
}

type subscriber struct {
	id      uint64
	event   EventType
	table   string
	filter  *rowFilter
	handler Handler
}

func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{
		subs:   make(map[uint64]*subscriber),
		logger: logger.With(zap.String("component", "realtime")),
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id     uint64
	broker *Broker
	once   sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subs, s.id)
		s.broker.mu.Unlock()
	})
}

func (b *Broker) Subscribe(cfg SubscriptionConfig, h Handler) (*Subscription, error) {
	if cfg.Table == "" || h == nil {
		return nil, fmt.Errorf("%w: table and handler are required", ErrInvalidFilter)
	}
	if cfg.Event == "" {
		cfg.Event = EventAll
	}

	var f *rowFilter
	if cfg.Filter != "" {
		parsed, err := parseFilter(cfg.Filter)
		if err != nil {
			return nil, err
		}
		f = parsed
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = &subscriber{id: id, event: cfg.Event, table: cfg.Table, filter: f, handler: h}
	b.mu.Unlock()

	return &Subscription{id: id, broker: b}, nil
}

// Publish delivers ev to every matching subscriber on the caller's
// goroutine, in subscription order.
func (b *Broker) Publish(ev Event) {
	if ev.CommitTimestamp.IsZero() {
		ev.CommitTimestamp = time.Now().UTC()
	}

	b.mu.RLock()
	matched := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matches(ev) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })
	for _, s := range matched {
		b.deliver(s, ev)
	}
}

func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) deliver(s *subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("realtime handler panicked",
				zap.String("table", ev.Table),
				zap.String("event", string(ev.Type)),
				zap.Any("panic", r),
			)
		}
	}()
	s.handler(ev)
}

func (s *subscriber) matches(ev Event) bool {
	if s.table != ev.Table {
		return false
	}
	if s.event != EventAll && s.event != ev.Type {
		return false
	}
	if s.filter == nil {
		return true
	}
	record := ev.Record
	if ev.Type == EventDelete && record == nil {
		record = ev.OldRecord
	}
	return s.filter.match(record)
}

type rowFilter struct {
	column string
	op     string
	values []string
}

func parseFilter(raw string) (*rowFilter, error) {
	column, rest, ok := strings.Cut(raw, "=")
	if !ok || column == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, raw)
	}
	op, value, ok := strings.Cut(rest, ".")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, raw)
	}

	switch op {
	case "eq", "neq":
		return &rowFilter{column: column, op: op, values: []string{value}}, nil
	case "in":
		value = strings.TrimSuffix(strings.TrimPrefix(value, "("), ")")
		var values []string
		for _, v := range strings.Split(value, ",") {
			values = append(values, strings.TrimSpace(v))
		}
		return &rowFilter{column: column, op: op, values: values}, nil
	}
	return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidFilter, op)
}

func (f *rowFilter) match(record map[string]any) bool {
	v, ok := record[f.column]
	if !ok {
		return false
	}
	got := fmt.Sprint(v)
	switch f.op {
	case "neq":
		return got != f.values[0]
	default:
		for _, want := range f.values {
			if got == want {
				return true
			}
		}
		return false
	}
}

// RecordOf converts a model into the loose record shape carried by events.
func RecordOf(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}
