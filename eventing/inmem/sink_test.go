package inmem

import (
	"context"
	"testing"

	"github.com/semanticpay/shopagent/agentloop"
)

func TestSink_PublishAndSnapshot(t *testing.T) {
	t.Parallel()

	sink := New()
	events := []agentloop.TurnEvent{
		{SessionID: "s-1", Attempt: 1, Type: agentloop.TurnEventStarted},
		{SessionID: "s-1", Attempt: 1, Type: agentloop.TurnEventCompleted},
	}
	for _, event := range events {
		if err := sink.Publish(context.Background(), event); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	captured := sink.Events()
	if len(captured) != 2 {
		t.Fatalf("unexpected event count: %d", len(captured))
	}
	if captured[0].Type != agentloop.TurnEventStarted || captured[1].Type != agentloop.TurnEventCompleted {
		t.Fatalf("publish order not preserved: %+v", captured)
	}
}

func TestSink_SnapshotsAreIsolatedCopies(t *testing.T) {
	t.Parallel()

	sink := New()
	payload := agentloop.FunctionPayload{Name: "search_products", Payload: "results"}
	event := agentloop.TurnEvent{
		SessionID: "s-1",
		Type:      agentloop.TurnEventPayload,
		Payload:   &payload,
	}
	if err := sink.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	first := sink.Events()
	first[0].Payload.Name = "mutated"

	second := sink.Events()
	if second[0].Payload.Name != "search_products" {
		t.Fatalf("snapshot mutation leaked into sink: %+v", second[0].Payload)
	}
}

func TestSink_CanceledContextRejectsPublish(t *testing.T) {
	t.Parallel()

	sink := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sink.Publish(ctx, agentloop.TurnEvent{Type: agentloop.TurnEventStarted}); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if len(sink.Events()) != 0 {
		t.Fatal("canceled publish must not record events")
	}
}

func TestSink_OfTypeFilters(t *testing.T) {
	t.Parallel()

	sink := New()
	for _, eventType := range []agentloop.TurnEventType{
		agentloop.TurnEventStarted,
		agentloop.TurnEventRetry,
		agentloop.TurnEventStarted,
		agentloop.TurnEventCompleted,
	} {
		if err := sink.Publish(context.Background(), agentloop.TurnEvent{Type: eventType}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	if started := sink.OfType(agentloop.TurnEventStarted); len(started) != 2 {
		t.Fatalf("unexpected started count: %d", len(started))
	}
	if retries := sink.OfType(agentloop.TurnEventRetry); len(retries) != 1 {
		t.Fatalf("unexpected retry count: %d", len(retries))
	}
}
