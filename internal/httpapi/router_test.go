package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/semanticpay/shopagent/internal/config"
	"github.com/semanticpay/shopagent/internal/wire"
)

func newRouterForTest(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.Default()
	cfg.TurnBackoff = time.Millisecond
	runtime, err := wire.NewWithLogger(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("wire runtime: %v", err)
	}
	return NewRouter(runtime)
}

func postQuery(t *testing.T, router http.Handler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(encoded))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeQueryResponse(t *testing.T, recorder *httptest.ResponseRecorder) queryResponse {
	t.Helper()

	var response queryResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return response
}

func TestHandleQuery_SearchReturnsProductWidgets(t *testing.T) {
	t.Parallel()

	router := newRouterForTest(t)
	recorder := postQuery(t, router, map[string]any{
		"question": "search tote",
		"user_id":  "user-1",
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", recorder.Code, recorder.Body.String())
	}
	response := decodeQueryResponse(t, recorder)
	if response.Status != "success" || response.SessionID == "" {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Response == "" {
		t.Fatal("expected a textual answer")
	}
	if len(response.Widgets) != 1 || response.Widgets[0].Type != "PRODUCT" {
		t.Fatalf("unexpected widgets: %+v", response.Widgets)
	}
}

func TestHandleQuery_CartFlowAcrossTurns(t *testing.T) {
	t.Parallel()

	router := newRouterForTest(t)

	first := decodeQueryResponse(t, postQuery(t, router, map[string]any{
		"question": "search tote",
		"user_id":  "user-42",
	}))
	productID := first.Widgets[0].Product.ID

	added := postQuery(t, router, map[string]any{
		"question":   "add " + productID,
		"session_id": first.SessionID,
	})
	if added.Code != http.StatusOK {
		t.Fatalf("add turn failed: %d body=%s", added.Code, added.Body.String())
	}

	carted := postQuery(t, router, map[string]any{
		"question":   "checkout",
		"session_id": first.SessionID,
	})
	if carted.Code != http.StatusOK {
		t.Fatalf("cart turn failed: %d body=%s", carted.Code, carted.Body.String())
	}
	response := decodeQueryResponse(t, carted)
	if response.SessionID != first.SessionID {
		t.Fatalf("session id changed across turns: %q vs %q", response.SessionID, first.SessionID)
	}
	if len(response.Widgets) != 1 || response.Widgets[0].Type != "CART" {
		t.Fatalf("unexpected widgets: %+v", response.Widgets)
	}
	cart := response.Widgets[0].Cart
	if cart == nil || cart.CheckoutURL == "" || len(cart.Lines) != 1 {
		t.Fatalf("unexpected cart widget: %+v", cart)
	}
}

func TestHandleQuery_AnonymousRequestCreatesSession(t *testing.T) {
	t.Parallel()

	router := newRouterForTest(t)

	first := postQuery(t, router, map[string]any{"question": "search tote"})
	if first.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", first.Code, first.Body.String())
	}
	response := decodeQueryResponse(t, first)
	if response.SessionID == "" {
		t.Fatal("expected a generated session id for an anonymous request")
	}
	if len(response.Widgets) != 1 || response.Widgets[0].Type != "PRODUCT" {
		t.Fatalf("unexpected widgets: %+v", response.Widgets)
	}

	// The generated id must reach the same session on the next turn.
	second := postQuery(t, router, map[string]any{
		"question":   "add " + response.Widgets[0].Product.ID,
		"session_id": response.SessionID,
	})
	if second.Code != http.StatusOK {
		t.Fatalf("follow-up turn failed: %d body=%s", second.Code, second.Body.String())
	}
	if got := decodeQueryResponse(t, second).SessionID; got != response.SessionID {
		t.Fatalf("session id changed across turns: %q vs %q", got, response.SessionID)
	}

	third := decodeQueryResponse(t, postQuery(t, router, map[string]any{"question": "hello there"}))
	if third.SessionID == response.SessionID {
		t.Fatal("expected a distinct session per anonymous request")
	}
}

func TestHandleQuery_ValidationErrors(t *testing.T) {
	t.Parallel()

	router := newRouterForTest(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{name: "missing_question", body: map[string]any{"user_id": "user-1"}},
		{name: "blank_question", body: map[string]any{"question": "   "}},
		{name: "unknown_field", body: map[string]any{"question": "hi", "user_id": "u", "bogus": true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			recorder := postQuery(t, router, tc.body)
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: %d body=%s", recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestHandleQuery_UnknownSessionIs404(t *testing.T) {
	t.Parallel()

	router := newRouterForTest(t)
	recorder := postQuery(t, router, map[string]any{
		"question":   "hello",
		"session_id": "missing-session",
	})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d body=%s", recorder.Code, recorder.Body.String())
	}

	var response apiErrorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if response.Error.Code != errorCodeNotFound {
		t.Fatalf("unexpected error code: %q", response.Error.Code)
	}
}

func TestHealthAndRootEndpoints(t *testing.T) {
	t.Parallel()

	router := newRouterForTest(t)

	for _, path := range []string{"/health", "/"} {
		request := httptest.NewRequest(http.MethodGet, path, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		if recorder.Code != http.StatusOK {
			t.Fatalf("%s: unexpected status %d", path, recorder.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode body: %v", path, err)
		}
		if body["status"] != "ok" {
			t.Fatalf("%s: unexpected body: %+v", path, body)
		}
	}
}
