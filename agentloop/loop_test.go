package agentloop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/semanticpay/shopagent/agentloop"
	eventinginmem "github.com/semanticpay/shopagent/eventing/inmem"
	"github.com/semanticpay/shopagent/runtime/runtimetest"
	"github.com/semanticpay/shopagent/session"
)

func newLoopForTest(t *testing.T, runtime agentloop.Runtime, cfg agentloop.Config, sink agentloop.Sink) *agentloop.Loop {
	t.Helper()
	loop, err := agentloop.NewLoop(runtime, cfg, sink)
	if err != nil {
		t.Fatalf("new loop: %v", err)
	}
	return loop
}

func newSessionForTest() *session.Session {
	return session.NewManager().Resolve("user-1")
}

func TestExecute_ConcatenatesTextInArrivalOrder(t *testing.T) {
	t.Parallel()

	runtime := runtimetest.NewScriptedRuntime(runtimetest.Turn{
		Events: []agentloop.Event{
			{Author: "model", Text: "Here are "},
			{},
			{Author: "model", Text: "two bags."},
		},
	})
	loop := newLoopForTest(t, runtime, agentloop.Config{}, nil)

	result, err := loop.Execute(context.Background(), newSessionForTest(), "show me bags")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Answer != "Here are two bags." {
		t.Fatalf("unexpected answer: %q", result.Answer)
	}
	if len(result.FunctionPayloads) != 0 {
		t.Fatalf("unexpected payloads: %+v", result.FunctionPayloads)
	}
}

func TestExecute_CollectsPayloadsInOrderAndSkipsNilResults(t *testing.T) {
	t.Parallel()

	runtime := runtimetest.NewScriptedRuntime(runtimetest.Turn{
		Events: []agentloop.Event{
			{
				Author: "tool",
				FunctionResponses: []agentloop.FunctionResponse{
					{Name: "search_products", Result: "first"},
					{Name: "noop_tool", Result: nil},
				},
			},
			{
				Author: "tool",
				FunctionResponses: []agentloop.FunctionResponse{
					{Name: "create_store_cart", Result: "second"},
				},
			},
			{Author: "model", Text: "done"},
		},
	})
	loop := newLoopForTest(t, runtime, agentloop.Config{}, nil)

	result, err := loop.Execute(context.Background(), newSessionForTest(), "checkout")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(result.FunctionPayloads) != 2 {
		t.Fatalf("unexpected payload count: %d", len(result.FunctionPayloads))
	}
	if result.FunctionPayloads[0].Name != "search_products" || result.FunctionPayloads[1].Name != "create_store_cart" {
		t.Fatalf("payload order not preserved: %+v", result.FunctionPayloads)
	}
}

func TestExecute_EmptyTurnRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	runtime := runtimetest.NewScriptedRuntime(
		runtimetest.Turn{Events: []agentloop.Event{{Author: "model"}}},
		runtimetest.Turn{Events: []agentloop.Event{{Author: "model", Text: "second try"}}},
	)
	sink := eventinginmem.New()
	loop := newLoopForTest(t, runtime, agentloop.Config{MaxAttempts: 3, Backoff: time.Millisecond}, sink)

	result, err := loop.Execute(context.Background(), newSessionForTest(), "hello")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Answer != "second try" {
		t.Fatalf("unexpected answer: %q", result.Answer)
	}
	if got := runtime.Calls(); got != 2 {
		t.Fatalf("expected two dispatched turns, got %d", got)
	}
	if retries := sink.OfType(agentloop.TurnEventRetry); len(retries) != 1 {
		t.Fatalf("expected one retry event, got %d", len(retries))
	}
}

func TestExecute_ExhaustedRetriesReturnEmptyResponse(t *testing.T) {
	t.Parallel()

	runtime := runtimetest.NewScriptedRuntime(
		runtimetest.Turn{},
		runtimetest.Turn{},
		runtimetest.Turn{},
	)
	sink := eventinginmem.New()
	loop := newLoopForTest(t, runtime, agentloop.Config{MaxAttempts: 3, Backoff: time.Millisecond}, sink)

	_, err := loop.Execute(context.Background(), newSessionForTest(), "hello")
	if !errors.Is(err, agentloop.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if got := runtime.Calls(); got != 3 {
		t.Fatalf("expected the full attempt budget, got %d turns", got)
	}
	if failed := sink.OfType(agentloop.TurnEventFailed); len(failed) != 1 {
		t.Fatalf("expected one failed event, got %d", len(failed))
	}
}

func TestExecute_RuntimeErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	boom := errors.New("runtime unavailable")
	runtime := runtimetest.NewScriptedRuntime(
		runtimetest.Turn{Err: boom},
		runtimetest.Turn{Events: []agentloop.Event{{Text: "never reached"}}},
	)
	loop := newLoopForTest(t, runtime, agentloop.Config{MaxAttempts: 3, Backoff: time.Millisecond}, nil)

	_, err := loop.Execute(context.Background(), newSessionForTest(), "hello")
	if !errors.Is(err, boom) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if got := runtime.Calls(); got != 1 {
		t.Fatalf("runtime errors must not be retried, got %d turns", got)
	}
}

func TestExecute_CanceledContextStopsBeforeDispatch(t *testing.T) {
	t.Parallel()

	runtime := runtimetest.NewScriptedRuntime(
		runtimetest.Turn{Events: []agentloop.Event{{Text: "never reached"}}},
	)
	loop := newLoopForTest(t, runtime, agentloop.Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loop.Execute(ctx, newSessionForTest(), "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := runtime.Calls(); got != 0 {
		t.Fatalf("expected no dispatched turns, got %d", got)
	}
}

func TestExecute_CancellationDuringBackoff(t *testing.T) {
	t.Parallel()

	runtime := runtimetest.NewScriptedRuntime(
		runtimetest.Turn{},
		runtimetest.Turn{Events: []agentloop.Event{{Text: "never reached"}}},
	)
	loop := newLoopForTest(t, runtime, agentloop.Config{MaxAttempts: 3, Backoff: time.Minute}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := loop.Execute(ctx, newSessionForTest(), "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled during backoff, got %v", err)
	}
	if got := runtime.Calls(); got != 1 {
		t.Fatalf("expected a single dispatched turn, got %d", got)
	}
}
