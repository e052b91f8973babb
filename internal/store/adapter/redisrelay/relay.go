// Package redisrelay distributes document change events across instances
// through a Redis Stream. Each instance appends its local writes to the
// stream and replays everyone else's onto its own bus, so listeners on
// any instance observe changes made on any other.
package redisrelay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tutorhub/internal/shared/eventbus"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/adapter/notifier"
	"tutorhub/internal/store/domain/model"
)

const defaultStream = "tutorhub:changes"

// Relay bridges the local event bus and a Redis Stream.
type Relay struct {
	client     *redis.Client
	bus        *eventbus.EventBus
	notifier   *notifier.Notifier
	log        logger.Logger
	stream     string
	instanceID string
}

// New creates a relay. Call Start to begin forwarding in both directions.
func New(client *redis.Client, bus *eventbus.EventBus, log logger.Logger) *Relay {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	return &Relay{
		client:     client,
		bus:        bus,
		notifier:   notifier.New(bus, log),
		log:        log.WithComponent("redis_relay"),
		stream:     defaultStream,
		instanceID: uuid.NewString(),
	}
}

// Start subscribes to the local change firehose and launches the reader
// loop. It returns after wiring; the loop runs until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) {
	r.bus.Subscribe(eventbus.TopicDocumentChanged, func(ctx context.Context, ev eventbus.Event) error {
		if ev.Source() != notifier.SourceStore {
			return nil
		}
		change, ok := ev.Data().(model.ChangeEvent)
		if !ok {
			return nil
		}
		return r.append(ctx, change)
	})

	go r.readLoop(ctx)
}

// append stores one change event in the Redis Stream.
func (r *Relay) append(ctx context.Context, event model.ChangeEvent) error {
	var docJSON []byte
	if event.Doc != nil {
		b, err := json.Marshal(event.Doc)
		if err != nil {
			r.log.Errorf("failed to serialize document for relay: %v", err)
			return err
		}
		docJSON = b
	}

	_, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"instance":   r.instanceID,
			"type":       string(event.Type),
			"collection": event.Collection,
			"documentId": event.DocumentID,
			"doc":        string(docJSON),
			"timestamp":  event.Timestamp.UnixNano(),
		},
	}).Result()
	if err != nil {
		r.log.Errorf("failed to append change event to stream %s: %v", r.stream, err)
		return err
	}
	return nil
}

// readLoop tails the stream and replays events from other instances onto
// the local bus.
func (r *Relay) readLoop(ctx context.Context) {
	lastID := "$"
	for {
		if ctx.Err() != nil {
			return
		}

		res, err := r.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{r.stream, lastID},
			Count:   100,
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			r.log.Errorf("failed to read from stream %s: %v", r.stream, err)
			time.Sleep(time.Second)
			continue
		}

		for _, streamRes := range res {
			for _, msg := range streamRes.Messages {
				lastID = msg.ID
				event, local, err := r.parseMessage(msg)
				if err != nil {
					r.log.Warnf("skipping malformed relay message %s: %v", msg.ID, err)
					continue
				}
				if local {
					continue
				}
				r.notifier.Replay(ctx, event)
			}
		}
	}
}

// parseMessage reconstructs a change event from a stream entry. The
// second return reports whether this instance produced it.
func (r *Relay) parseMessage(msg redis.XMessage) (model.ChangeEvent, bool, error) {
	event := model.ChangeEvent{}

	instance, _ := msg.Values["instance"].(string)
	if instance == r.instanceID {
		return event, true, nil
	}

	if t, ok := msg.Values["type"].(string); ok {
		event.Type = model.ChangeType(t)
	}
	if c, ok := msg.Values["collection"].(string); ok {
		event.Collection = c
	}
	if id, ok := msg.Values["documentId"].(string); ok {
		event.DocumentID = id
	}
	if ts, ok := msg.Values["timestamp"].(string); ok {
		var nanos int64
		if err := json.Unmarshal([]byte(ts), &nanos); err == nil {
			event.Timestamp = time.Unix(0, nanos)
		}
	}
	if docJSON, ok := msg.Values["doc"].(string); ok && docJSON != "" {
		var doc model.Document
		if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
			return event, false, err
		}
		event.Doc = &doc
	}

	return event, false, nil
}
