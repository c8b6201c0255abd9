package service

import (
	"slices"
	"sync"
)

// WaitingList holds the FIFO queue of priority users per book.
// A book has an entry only while its queue is non-empty.
type WaitingList struct {
	mu     sync.Mutex
	queues map[string][]string // bookID -> userIDs, head first
}

// NewWaitingList creates an empty waiting list
func NewWaitingList() *WaitingList {
	return &WaitingList{
		queues: make(map[string][]string),
	}
}

// Enqueue appends a user to the tail of a book's queue
func (w *WaitingList) Enqueue(bookID, userID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.queues[bookID] = append(w.queues[bookID], userID)
}

// Dequeue pops the head of a book's queue
func (w *WaitingList) Dequeue(bookID string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	queue := w.queues[bookID]
	if len(queue) == 0 {
		return "", false
	}

	head := queue[0]
	w.set(bookID, queue[1:])
	return head, true
}

// Remove drops a user from a book's queue, keeping the order of the rest
func (w *WaitingList) Remove(bookID, userID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	queue := w.queues[bookID]
	idx := slices.Index(queue, userID)
	if idx < 0 {
		return false
	}

	w.set(bookID, slices.Delete(slices.Clone(queue), idx, idx+1))
	return true
}

// Contains reports whether a user is waiting for a book
func (w *WaitingList) Contains(bookID, userID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Contains(w.queues[bookID], userID)
}

// Len returns the number of users waiting for a book
func (w *WaitingList) Len(bookID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.queues[bookID])
}

// Snapshot returns a copy of a book's queue, head first
func (w *WaitingList) Snapshot(bookID string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.queues[bookID])
}

// HasEntry reports whether the book currently has a queue entry
func (w *WaitingList) HasEntry(bookID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.queues[bookID]
	return ok
}

// set must be called with mu held
func (w *WaitingList) set(bookID string, queue []string) {
	if len(queue) == 0 {
		delete(w.queues, bookID)
		return
	}
	w.queues[bookID] = queue
}
