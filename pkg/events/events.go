package events

import (
	"errors"
	"sync"

	"github.com/cuemby/pairstream/pkg/log"
	"github.com/cuemby/pairstream/pkg/metrics"
	"github.com/cuemby/pairstream/pkg/types"
)

// DefaultCapacity is the bounded channel capacity per subscriber.
const DefaultCapacity = 100

// MaxLagThreshold is the cumulative skipped-message count at which a
// subscriber is evicted rather than left to fall further behind.
const MaxLagThreshold = 1000

// ErrResourceExhausted is returned from Subscriber.Receive once the
// subscriber has been evicted for exceeding MaxLagThreshold.
var ErrResourceExhausted = errors.New("events: subscriber exceeded max lag threshold")

// Filter narrows which published messages reach a subscriber. A zero
// value field matches anything.
type Filter struct {
	PairID string
	Signer string
}

func (f Filter) matches(msg types.OutboundMessage) bool {
	if f.PairID != "" && msg.PairIDKey() != f.PairID {
		return false
	}
	if f.Signer != "" && msg.SignerKey() != f.Signer {
		return false
	}
	return true
}

// Subscriber is one transport's bounded view of the broadcast stream.
type Subscriber struct {
	id       string
	filter   Filter
	ch       chan types.OutboundMessage
	mu       sync.Mutex
	lagCount uint64
	evicted  bool
}

// ID returns the subscriber's identifier, used in logs and metrics.
func (s *Subscriber) ID() string {
	return s.id
}

// Receive blocks until a message arrives, the channel is closed
// (eviction), or the done channel fires. The returned bool reports
// whether the channel produced a message; a false with a nil error
// means the caller's own ctx/done fired first.
func (s *Subscriber) Receive(done <-chan struct{}) (types.OutboundMessage, bool, error) {
	select {
	case msg, ok := <-s.ch:
		if !ok {
			return types.OutboundMessage{}, false, ErrResourceExhausted
		}
		return msg, true, nil
	case <-done:
		return types.OutboundMessage{}, false, nil
	}
}

// Hub is the bounded broadcast point described in the fan-out design:
// producers publish once, every subscriber gets its own queue, and a
// subscriber that can't keep up loses messages before it loses its
// connection entirely.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	capacity    int
}

// NewHub creates a hub with the default per-subscriber capacity.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		capacity:    DefaultCapacity,
	}
}

// Subscribe registers a new subscriber and returns it. The caller is
// responsible for calling Unsubscribe when the transport connection
// ends.
func (h *Hub) Subscribe(id string, filter Filter) *Subscriber {
	sub := &Subscriber{
		id:     id,
		filter: filter,
		ch:     make(chan types.OutboundMessage, h.capacity),
	}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber. Safe to call more than once and
// safe to call after the subscriber has already been evicted.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	sub.mu.Lock()
	if !sub.evicted {
		sub.evicted = true
		close(sub.ch)
	}
	sub.mu.Unlock()
}

// Publish fans a message out to every matching subscriber. A
// subscriber whose queue is full has its oldest queued message
// dropped to make room — the newest message always wins — and its lag
// counter advances by one. A subscriber whose cumulative lag exceeds
// MaxLagThreshold is evicted.
func (h *Hub) Publish(msg types.OutboundMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		if !sub.filter.matches(msg) {
			continue
		}
		h.deliver(sub, msg)
	}
}

func (h *Hub) deliver(sub *Subscriber, msg types.OutboundMessage) {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.evicted {
		return
	}

	select {
	case sub.ch <- msg:
		if sub.lagCount > 0 {
			log.WithSubscriberID(sub.id).Info().
				Uint64("recovered_lag", sub.lagCount).
				Msg("subscriber caught up after lagging")
			sub.lagCount = 0
		}
		return
	default:
	}

	// Queue full: drop the oldest message to make room for the newest.
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- msg
	sub.lagCount++
	metrics.BroadcastLagEventsTotal.Inc()

	if sub.lagCount > MaxLagThreshold {
		log.WithSubscriberID(sub.id).Warn().
			Uint64("lag_count", sub.lagCount).
			Msg("evicting subscriber for exceeding max lag threshold")
		sub.evicted = true
		close(sub.ch)
		metrics.SubscribersEvictedTotal.Inc()
		go h.Unsubscribe(sub)
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
