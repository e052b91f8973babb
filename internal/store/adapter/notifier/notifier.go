// Package notifier fans document change events out to listeners. Both
// store adapters publish through it after every successful write, and
// build their ListenDocument/ListenQuery support on top of it.
package notifier

import (
	"context"
	"sync/atomic"

	"tutorhub/internal/shared/eventbus"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/domain/model"
	"tutorhub/internal/store/domain/repository"
)

// Notifier bridges store adapters and the shared event bus, one topic per
// logical collection.
type Notifier struct {
	bus *eventbus.EventBus
	log logger.Logger
}

// New creates a Notifier on top of an event bus.
func New(bus *eventbus.EventBus, log logger.Logger) *Notifier {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	return &Notifier{bus: bus, log: log}
}

// Publish delivers a change event to every listener on the event's
// collection, and to the firehose topic for cross-instance relays.
// Delivery is synchronous with the write path; listener callbacks
// therefore observe changes in write order.
func (n *Notifier) Publish(ctx context.Context, event model.ChangeEvent) {
	n.publishAs(ctx, event, SourceStore)
}

// Replay re-delivers an event that originated on another instance. It
// reaches collection listeners but not the firehose, so relays never
// forward each other's traffic in a loop.
func (n *Notifier) Replay(ctx context.Context, event model.ChangeEvent) {
	n.publishAs(ctx, event, SourceRelay)
}

// Event sources distinguishing local writes from relayed ones.
const (
	SourceStore = "store"
	SourceRelay = "relay"
)

func (n *Notifier) publishAs(ctx context.Context, event model.ChangeEvent, source string) {
	ev := eventbus.NewBasicEventWithSource(eventbus.CollectionTopic(event.Collection), event, source)
	if err := n.bus.Publish(ctx, ev); err != nil {
		n.log.Errorf("failed to deliver change event for %s/%s: %v", event.Collection, event.DocumentID, err)
	}
	if source == SourceStore {
		fire := eventbus.NewBasicEventWithSource(eventbus.TopicDocumentChanged, event, source)
		if err := n.bus.Publish(ctx, fire); err != nil {
			n.log.Errorf("failed to deliver firehose event for %s/%s: %v", event.Collection, event.DocumentID, err)
		}
	}
}

// SubscribeCollection registers a callback for every change in one
// collection. The returned cancel func is idempotent; once it returns no
// new deliveries begin for this subscription.
func (n *Notifier) SubscribeCollection(collection string, fn func(model.ChangeEvent)) repository.CancelFunc {
	var closed atomic.Bool

	unsubscribe := n.bus.Subscribe(eventbus.CollectionTopic(collection), func(ctx context.Context, ev eventbus.Event) error {
		if closed.Load() {
			return nil
		}
		change, ok := ev.Data().(model.ChangeEvent)
		if !ok {
			n.log.Warnf("unexpected event payload on topic %s", ev.Type())
			return nil
		}
		fn(change)
		return nil
	})

	return func() {
		closed.Store(true)
		unsubscribe()
	}
}
