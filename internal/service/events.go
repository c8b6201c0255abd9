package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/forgo/lending/internal/model"
)

// EventPublisher delivers reservation events to an outside audience
type EventPublisher interface {
	Publish(ctx context.Context, event *model.ReservationEvent) error
}

// Publishers fans one event out to every publisher in the list
type Publishers []EventPublisher

// Publish delivers the event to all publishers and joins their errors
func (p Publishers) Publish(ctx context.Context, event *model.ReservationEvent) error {
	var errs []error
	for _, pub := range p {
		if pub == nil {
			continue
		}
		if err := pub.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EventHeartbeat keeps idle SSE connections open
const EventHeartbeat = "heartbeat"

// Event represents a server-sent event
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + e.Type + "\ndata: " + string(data) + "\n\n"
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID     string
	Topic  string
	Events chan *Event
	Done   chan struct{}
}

// EventHub manages SSE subscriptions and event broadcasting
type EventHub struct {
	mu              sync.RWMutex
	bookSubscribers map[string]map[string]*Subscriber // bookID -> subscriberID -> subscriber
	userSubscribers map[string]map[string]*Subscriber // userID -> subscriberID -> subscriber
	heartbeat       *time.Ticker
	done            chan struct{}
	closeOnce       sync.Once
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return newEventHub(30 * time.Second)
}

func newEventHub(heartbeatEvery time.Duration) *EventHub {
	hub := &EventHub{
		bookSubscribers: make(map[string]map[string]*Subscriber),
		userSubscribers: make(map[string]map[string]*Subscriber),
		heartbeat:       time.NewTicker(heartbeatEvery),
		done:            make(chan struct{}),
	}
	go hub.sendHeartbeats()
	return hub
}

// SubscribeBook adds a subscriber for every change on a book
func (h *EventHub) SubscribeBook(bookID, subscriberID string) *Subscriber {
	return h.subscribe(h.bookSubscribers, bookID, subscriberID)
}

// UnsubscribeBook removes a book subscriber
func (h *EventHub) UnsubscribeBook(bookID, subscriberID string) {
	h.unsubscribe(h.bookSubscribers, bookID, subscriberID)
}

// SubscribeUser adds a subscriber for every change on a user's reservations
func (h *EventHub) SubscribeUser(userID, subscriberID string) *Subscriber {
	return h.subscribe(h.userSubscribers, userID, subscriberID)
}

// UnsubscribeUser removes a user subscriber
func (h *EventHub) UnsubscribeUser(userID, subscriberID string) {
	h.unsubscribe(h.userSubscribers, userID, subscriberID)
}

func (h *EventHub) subscribe(topics map[string]map[string]*Subscriber, topic, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:     subscriberID,
		Topic:  topic,
		Events: make(chan *Event, 100), // Buffer to prevent blocking
		Done:   make(chan struct{}),
	}

	if topics[topic] == nil {
		topics[topic] = make(map[string]*Subscriber)
	}
	topics[topic][subscriberID] = sub

	return sub
}

func (h *EventHub) unsubscribe(topics map[string]map[string]*Subscriber, topic, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := topics[topic]; ok {
		if sub, ok := subs[subscriberID]; ok {
			close(sub.Done)
			close(sub.Events)
			delete(subs, subscriberID)
		}
		if len(subs) == 0 {
			delete(topics, topic)
		}
	}
}

// Publish sends a reservation event to the book's subscribers and to the
// subscribers of the user it concerns. It never blocks on slow clients.
func (h *EventHub) Publish(_ context.Context, event *model.ReservationEvent) error {
	sse := &Event{Type: string(event.Type), Data: event}

	h.mu.RLock()
	defer h.mu.RUnlock()

	broadcast(h.bookSubscribers[event.BookID], sse)
	broadcast(h.userSubscribers[event.UserID], sse)
	return nil
}

func broadcast(subs map[string]*Subscriber, event *Event) {
	for _, sub := range subs {
		select {
		case sub.Events <- event:
		default:
			// Buffer full, skip this subscriber
		}
	}
}

// sendHeartbeats sends periodic heartbeats to all subscribers
func (h *EventHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			event := &Event{
				Type: EventHeartbeat,
				Data: map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			}
			h.mu.RLock()
			for _, subs := range h.bookSubscribers {
				broadcast(subs, event)
			}
			for _, subs := range h.userSubscribers {
				broadcast(subs, event)
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// Close stops the event hub and disconnects every subscriber
func (h *EventHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.heartbeat.Stop()

		h.mu.Lock()
		defer h.mu.Unlock()

		for _, topics := range []map[string]map[string]*Subscriber{h.bookSubscribers, h.userSubscribers} {
			for topic, subs := range topics {
				for _, sub := range subs {
					close(sub.Done)
					close(sub.Events)
				}
				delete(topics, topic)
			}
		}
	})
}

// SubscriberCount returns the number of subscribers for a book
func (h *EventHub) SubscriberCount(bookID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.bookSubscribers[bookID])
}
