package throttle

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RetryEvent describes one retryable failure: which operation failed,
// which attempt it was, and how long the engine will wait before the
// next attempt.
type RetryEvent struct {
	Operation string
	Attempt   int
	Delay     time.Duration
	Err       error
}

// Notifier receives retry events. Delivery is advisory and happens on
// the retrying goroutine, so implementations must be fast and must not
// block; a panicking notifier is contained and never fails the
// operation.
type Notifier interface {
	NotifyRetry(event RetryEvent)
}

// NotifierFunc is a function adapter for Notifier.
type NotifierFunc func(event RetryEvent)

// NotifyRetry implements Notifier.
func (f NotifierFunc) NotifyRetry(event RetryEvent) {
	f(event)
}

// SubscriptionID identifies a bus subscription.
type SubscriptionID string

// Bus fans retry events out to subscribers. Events are delivered in
// emission order, one subscriber at a time.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[SubscriptionID]Notifier
	nextID        int
}

// NewBus creates an empty notification bus.
func NewBus() *Bus {
	return &Bus{
		subscriptions: make(map[SubscriptionID]Notifier),
		nextID:        1,
	}
}

// Subscribe registers a notifier and returns its subscription ID.
// Delivery runs on the retrying goroutine, so a slow subscriber delays
// the operation it is observing.
func (b *Bus) Subscribe(n Notifier) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := SubscriptionID(fmt.Sprintf("sub_%d", b.nextID))
	b.nextID++
	b.subscriptions[id] = n
	return id
}

// Unsubscribe removes a notifier. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscriptions, id)
}

// NotifyRetry implements Notifier by delivering the event to every
// subscriber. Subscriber panics are swallowed so observability can
// never affect control flow.
func (b *Bus) NotifyRetry(event RetryEvent) {
	b.mu.RLock()
	notifiers := make([]Notifier, 0, len(b.subscriptions))
	for _, n := range b.subscriptions {
		notifiers = append(notifiers, n)
	}
	b.mu.RUnlock()

	for _, n := range notifiers {
		deliver(n, event)
	}
}

func deliver(n Notifier, event RetryEvent) {
	defer func() {
		_ = recover()
	}()
	n.NotifyRetry(event)
}

// NewLogNotifier returns a notifier that logs each retry event at warn
// level with structured fields.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return NotifierFunc(func(event RetryEvent) {
		logger.Warn().
			Str("operation", event.Operation).
			Int("attempt", event.Attempt).
			Dur("delay", event.Delay).
			Err(event.Err).
			Msg("retrying after descriptor exhaustion")
	})
}
