package notifications

import (
	"testing"
	"time"
)

func TestNotify_OnlyReachesOwnUser(t *testing.T) {
	s := NewService()
	defer s.Shutdown()

	alice, unsubAlice := s.Subscribe("alice")
	defer unsubAlice()
	bob, unsubBob := s.Subscribe("bob")
	defer unsubBob()

	s.NotifyBoardChanged("alice")

	select {
	case event := <-alice:
		if event.Type != EventBoardChanged {
			t.Errorf("expected board-changed, got %s", event.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("alice never received the event")
	}

	select {
	case event := <-bob:
		t.Errorf("bob should receive nothing, got %v", event)
	default:
	}
}

func TestNotify_SetsTimestamp(t *testing.T) {
	s := NewService()
	defer s.Shutdown()

	ch, unsub := s.Subscribe("alice")
	defer unsub()

	s.NotifyTaskChanged("alice", "task-1", "updated")

	event := <-ch
	if event.Timestamp == 0 {
		t.Error("timestamp should be set")
	}
}

func TestNotify_FullChannelDoesNotBlock(t *testing.T) {
	s := NewService()
	defer s.Shutdown()

	_, unsub := s.Subscribe("alice")
	defer unsub()

	// Fill well past the buffer; Notify must drop instead of blocking
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.NotifyBoardChanged("alice")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full subscriber channel")
	}
}

func TestUnsubscribe_ClosesChannelOnce(t *testing.T) {
	s := NewService()
	defer s.Shutdown()

	ch, unsub := s.Subscribe("alice")

	unsub()
	unsub() // second call must be a no-op, not a double close

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	if s.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", s.SubscriberCount())
	}
}

func TestShutdown_ClosesAllStreams(t *testing.T) {
	s := NewService()

	alice, _ := s.Subscribe("alice")
	bob, _ := s.Subscribe("bob")

	s.Shutdown()

	if _, ok := <-alice; ok {
		t.Error("alice's channel should be closed after shutdown")
	}
	if _, ok := <-bob; ok {
		t.Error("bob's channel should be closed after shutdown")
	}
}
