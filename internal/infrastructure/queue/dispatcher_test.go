package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

type captureService struct {
	events chan domain.AuditEvent
}

func (s *captureService) Process(_ context.Context, event domain.AuditEvent) error {
	s.events <- event
	return nil
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	svc := &captureService{events: make(chan domain.AuditEvent, 8)}
	d := NewDispatcher(2, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(domain.AuditEvent{UserID: "u1", Action: domain.AuditLoginSuccess})

	select {
	case got := <-svc.events:
		if got.UserID != "u1" || got.Action != domain.AuditLoginSuccess {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("event never reached the worker")
	}
}

func TestDispatcher_ShardsByActor(t *testing.T) {
	d := NewDispatcher(4, &captureService{events: make(chan domain.AuditEvent, 1)}, zerolog.Nop())

	withID := d.shardIndex(actorKey(domain.AuditEvent{UserID: "u1", Email: "a@example.com"}))
	idOnly := d.shardIndex(actorKey(domain.AuditEvent{UserID: "u1"}))
	if withID != idOnly {
		t.Fatalf("same user id sharded to different workers: %d vs %d", withID, idOnly)
	}

	// Failures before the user resolves carry only the attempted email.
	byEmail := d.shardIndex(actorKey(domain.AuditEvent{Email: "a@example.com"}))
	again := d.shardIndex(actorKey(domain.AuditEvent{Email: "a@example.com"}))
	if byEmail != again {
		t.Fatalf("same email sharded to different workers: %d vs %d", byEmail, again)
	}
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	// No Start: workers never drain, so the buffer fills up.
	svc := &captureService{events: make(chan domain.AuditEvent, 1)}
	d := NewDispatcher(1, svc, zerolog.Nop())

	for i := 0; i < channelBuffer+10; i++ {
		d.Record(domain.AuditEvent{UserID: "u1", Action: domain.AuditLoginFailure})
	}

	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected buffer capped at %d, got %d", channelBuffer, got)
	}
}
