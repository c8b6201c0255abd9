package handler

import (
	"fmt"
	"net/http"

	"github.com/forgo/lending/internal/model"
	"github.com/forgo/lending/internal/service"
	"github.com/google/uuid"
)

// EventsHandler handles SSE event streaming
type EventsHandler struct {
	eventHub *service.EventHub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(eventHub *service.EventHub) *EventsHandler {
	return &EventsHandler{
		eventHub: eventHub,
	}
}

// BookStream handles GET /v1/books/{bookId}/events
func (h *EventsHandler) BookStream(w http.ResponseWriter, r *http.Request) {
	bookID, pd := pathID(r, "bookId")
	if pd != nil {
		WriteError(w, pd)
		return
	}
	h.stream(w, r, bookID, h.eventHub.SubscribeBook, h.eventHub.UnsubscribeBook)
}

// UserStream handles GET /v1/users/{userId}/events
func (h *EventsHandler) UserStream(w http.ResponseWriter, r *http.Request) {
	userID, pd := pathID(r, "userId")
	if pd != nil {
		WriteError(w, pd)
		return
	}
	h.stream(w, r, userID, h.eventHub.SubscribeUser, h.eventHub.UnsubscribeUser)
}

func (h *EventsHandler) stream(
	w http.ResponseWriter,
	r *http.Request,
	topic string,
	subscribe func(topic, subscriberID string) *service.Subscriber,
	unsubscribe func(topic, subscriberID string),
) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	subscriberID := uuid.New().String()
	sub := subscribe(topic, subscriberID)
	defer unsubscribe(topic, subscriberID)

	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
