package notifications

import (
	"sync"
	"time"
)

// EventType represents the type of notification event
type EventType string

const (
	EventConnected    EventType = "connected"
	EventTaskChanged  EventType = "task-changed"
	EventBoardChanged EventType = "board-changed"
	EventFocusChanged EventType = "focus-changed"
	EventReminderDue  EventType = "reminder-due"
)

// Event represents a notification event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

type subscriber struct {
	userID string
	ch     chan Event
}

// Service manages SSE subscriptions and per-user event delivery
type Service struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	done        chan struct{}
}

// NewService creates a new notification service
func NewService() *Service {
	return &Service{
		subscribers: make(map[*subscriber]struct{}),
		done:        make(chan struct{}),
	}
}

// Subscribe registers a stream for one user's events.
// Returns the event channel and an unsubscribe function.
func (s *Service) Subscribe(userID string) (<-chan Event, func()) {
	sub := &subscriber{
		userID: userID,
		ch:     make(chan Event, 10),
	}

	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Only close if the subscriber is still registered
		if _, exists := s.subscribers[sub]; exists {
			delete(s.subscribers, sub)
			close(sub.ch)
		}
	}

	return sub.ch, unsubscribe
}

// Notify delivers an event to one user's subscribers
func (s *Service) Notify(userID string, event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for sub := range s.subscribers {
		if sub.userID != userID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// NotifyTaskChanged signals that a task was created, updated or deleted
func (s *Service) NotifyTaskChanged(userID, taskID, operation string) {
	s.Notify(userID, Event{
		Type: EventTaskChanged,
		Data: map[string]any{
			"taskId":    taskID,
			"operation": operation,
		},
	})
}

// NotifyBoardChanged signals that column ordering changed (drag-and-drop)
func (s *Service) NotifyBoardChanged(userID string) {
	s.Notify(userID, Event{Type: EventBoardChanged})
}

// NotifyFocusChanged signals that a focus session started or ended
func (s *Service) NotifyFocusChanged(userID, sessionID, operation string) {
	s.Notify(userID, Event{
		Type: EventFocusChanged,
		Data: map[string]any{
			"sessionId": sessionID,
			"operation": operation,
		},
	})
}

// NotifyReminderDue signals that a task is due soon or overdue
func (s *Service) NotifyReminderDue(userID, taskID, title string, dueDate int64) {
	s.Notify(userID, Event{
		Type: EventReminderDue,
		Data: map[string]any{
			"taskId":  taskID,
			"title":   title,
			"dueDate": dueDate,
		},
	})
}

// Shutdown closes the notification service and all streams
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	close(s.done)

	for sub := range s.subscribers {
		close(sub.ch)
	}
	s.subscribers = make(map[*subscriber]struct{})
}

// SubscriberCount returns the number of active subscribers
func (s *Service) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
