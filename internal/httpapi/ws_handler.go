package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/domain/model"
	"tutorhub/internal/store/domain/repository"
)

// WebSocketHandler manages WebSocket connections for real-time updates.
// Clients subscribe to a whole collection or to a single document and
// receive the current state immediately, then again on every change.
type WebSocketHandler struct {
	store      repository.DocumentStore
	sendBuffer int
	log        logger.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler. sendBuffer bounds
// the per-client outbound queue; a slow client loses events rather than
// blocking the listeners.
func NewWebSocketHandler(store repository.DocumentStore, sendBuffer int, log logger.Logger) *WebSocketHandler {
	if sendBuffer <= 0 {
		sendBuffer = 10
	}
	return &WebSocketHandler{
		store:      store,
		sendBuffer: sendBuffer,
		log:        log.WithComponent("ws_handler"),
	}
}

// RegisterRoutes registers the WebSocket endpoint on the given router.
func (h *WebSocketHandler) RegisterRoutes(router fiber.Router) {
	router.Use("/listen", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/listen", websocket.New(h.handleConnection))
}

// SubscriptionRequest is the message a client sends to manage its
// subscriptions. ID is empty for collection-wide subscriptions.
type SubscriptionRequest struct {
	Action     string `json:"action"`
	Collection string `json:"collection"`
	ID         string `json:"id,omitempty"`
}

// WebSocketMessage represents messages sent to the client.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ErrorResponse represents an error payload inside a WebSocketMessage.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *WebSocketHandler) handleConnection(conn *websocket.Conn) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	subscriberID := uuid.NewString()

	h.log.WithFields(map[string]interface{}{
		"subscriber_id": subscriberID,
	}).Info("WebSocket connection established")

	// Outbound queue. Listener callbacks push here with a non-blocking
	// send; a single writer goroutine owns the connection for writes.
	outbound := make(chan WebSocketMessage, h.sendBuffer)

	activeSubscriptions := make(map[string]repository.CancelFunc)
	var subscriptionMu sync.Mutex

	defer func() {
		h.log.WithFields(map[string]interface{}{
			"subscriber_id": subscriberID,
		}).Info("WebSocket connection closing")

		subscriptionMu.Lock()
		for key, cancel := range activeSubscriptions {
			cancel()
			delete(activeSubscriptions, key)
		}
		subscriptionMu.Unlock()
	}()

	go h.writeLoop(ctx, conn, subscriberID, outbound)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))

			var req SubscriptionRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.WithFields(map[string]interface{}{
						"subscriber_id": subscriberID,
						"error":         err.Error(),
					}).Error("WebSocket read error")
				}
				return
			}

			switch req.Action {
			case "subscribe":
				h.handleSubscribe(ctx, subscriberID, req, outbound, activeSubscriptions, &subscriptionMu)
			case "unsubscribe":
				h.handleUnsubscribe(subscriberID, req, outbound, activeSubscriptions, &subscriptionMu)
			default:
				h.send(subscriberID, outbound, WebSocketMessage{
					Type: "error",
					Data: ErrorResponse{Error: "invalid_action", Message: "Unknown action: " + req.Action},
				})
			}
		}
	}
}

// subscriptionKey identifies one subscription within a connection.
func subscriptionKey(req SubscriptionRequest) string {
	if req.ID == "" {
		return req.Collection
	}
	return req.Collection + "/" + req.ID
}

func (h *WebSocketHandler) handleSubscribe(
	ctx context.Context,
	subscriberID string,
	req SubscriptionRequest,
	outbound chan WebSocketMessage,
	activeSubscriptions map[string]repository.CancelFunc,
	subscriptionMu *sync.Mutex,
) {
	if req.Collection == "" {
		h.send(subscriberID, outbound, WebSocketMessage{
			Type: "error",
			Data: ErrorResponse{Error: "invalid_subscription", Message: "collection is required"},
		})
		return
	}

	key := subscriptionKey(req)

	subscriptionMu.Lock()
	_, exists := activeSubscriptions[key]
	subscriptionMu.Unlock()
	if exists {
		h.send(subscriberID, outbound, WebSocketMessage{
			Type: "error",
			Data: ErrorResponse{Error: "already_subscribed", Message: "Already subscribed to " + key},
		})
		return
	}

	var (
		cancel repository.CancelFunc
		err    error
	)
	if req.ID != "" {
		cancel, err = h.store.ListenDocument(ctx, req.Collection, req.ID, func(doc *model.Document) {
			h.send(subscriberID, outbound, WebSocketMessage{
				Type: "document_change",
				Data: map[string]interface{}{
					"collection": req.Collection,
					"id":         req.ID,
					"document":   doc,
				},
			})
		})
	} else {
		query := model.Query{
			Orders: []model.Order{model.OrderBy(model.FieldCreatedAt, model.Descending)},
		}
		cancel, err = h.store.ListenQuery(ctx, req.Collection, query, func(docs []*model.Document) {
			h.send(subscriberID, outbound, WebSocketMessage{
				Type: "query_change",
				Data: map[string]interface{}{
					"collection": req.Collection,
					"documents":  docs,
				},
			})
		})
	}
	if err != nil {
		h.log.WithFields(map[string]interface{}{
			"subscriber_id": subscriberID,
			"key":           key,
			"error":         err.Error(),
		}).Error("Subscription failed")
		h.send(subscriberID, outbound, WebSocketMessage{
			Type: "error",
			Data: ErrorResponse{Error: "subscription_failed", Message: "Failed to subscribe to " + key},
		})
		return
	}

	subscriptionMu.Lock()
	activeSubscriptions[key] = cancel
	subscriptionMu.Unlock()

	h.log.WithFields(map[string]interface{}{
		"subscriber_id": subscriberID,
		"key":           key,
	}).Info("Client subscribed")

	h.send(subscriberID, outbound, WebSocketMessage{
		Type: "subscription_confirmed",
		Data: map[string]interface{}{
			"collection": req.Collection,
			"id":         req.ID,
		},
	})
}

func (h *WebSocketHandler) handleUnsubscribe(
	subscriberID string,
	req SubscriptionRequest,
	outbound chan WebSocketMessage,
	activeSubscriptions map[string]repository.CancelFunc,
	subscriptionMu *sync.Mutex,
) {
	key := subscriptionKey(req)

	subscriptionMu.Lock()
	cancel, exists := activeSubscriptions[key]
	if exists {
		delete(activeSubscriptions, key)
	}
	subscriptionMu.Unlock()

	if exists {
		cancel()
	}

	h.log.WithFields(map[string]interface{}{
		"subscriber_id": subscriberID,
		"key":           key,
	}).Info("Client unsubscribed")

	h.send(subscriberID, outbound, WebSocketMessage{
		Type: "unsubscription_confirmed",
		Data: map[string]interface{}{
			"collection": req.Collection,
			"id":         req.ID,
		},
	})
}

// writeLoop owns the connection for writes until the context ends.
func (h *WebSocketHandler) writeLoop(ctx context.Context, conn *websocket.Conn, subscriberID string, outbound chan WebSocketMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-outbound:
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithFields(map[string]interface{}{
					"subscriber_id": subscriberID,
					"error":         err.Error(),
				}).Error("Error sending message to client")
				return
			}
		}
	}
}

// send enqueues without blocking; dropped messages are logged. A client
// that stops reading only loses its own events.
func (h *WebSocketHandler) send(subscriberID string, outbound chan WebSocketMessage, msg WebSocketMessage) {
	select {
	case outbound <- msg:
	default:
		h.log.WithFields(map[string]interface{}{
			"subscriber_id": subscriberID,
			"type":          msg.Type,
		}).Warn("Outbound queue full, dropping message")
	}
}
