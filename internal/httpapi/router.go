// Package httpapi exposes the conversational shopping API over HTTP.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/semanticpay/shopagent/internal/wire"
	"github.com/semanticpay/shopagent/session"
	"github.com/semanticpay/shopagent/widget"
)

type handlers struct {
	runtime *wire.Runtime
}

func NewRouter(runtime *wire.Runtime) http.Handler {
	h := &handlers{runtime: runtime}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /query", h.handleQuery)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /{$}", h.handleRoot)
	return mux
}

type queryRequest struct {
	Question  string `json:"question"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type queryResponse struct {
	Response  string          `json:"response"`
	Status    string          `json:"status"`
	SessionID string          `json:"session_id"`
	Widgets   []widget.Widget `json:"widgets"`
}

// handleQuery runs one conversational turn. Callers may pin a session with
// session_id, identify themselves with user_id, or send neither: a fresh
// session is created and its generated id returned for follow-up turns.
func (h *handlers) handleQuery(w http.ResponseWriter, r *http.Request) {
	var request queryRequest
	if err := decodeJSONBody(r, &request); err != nil {
		writeMappedError(w, err)
		return
	}
	if strings.TrimSpace(request.Question) == "" {
		writeInvalidRequest(w, "question is required")
		return
	}

	sess, err := h.resolveSession(request)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	// One turn at a time per session. A concurrent request for the same
	// user waits here instead of interleaving cart mutations.
	sess.Lock()
	defer sess.Unlock()

	result, err := h.runtime.Loop.Execute(r.Context(), sess, request.Question)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	widgets := h.runtime.Materializer.Materialize(result.FunctionPayloads)
	if widgets == nil {
		widgets = []widget.Widget{}
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Response:  result.Answer,
		Status:    "success",
		SessionID: sess.ID(),
		Widgets:   widgets,
	})
}

func (h *handlers) resolveSession(request queryRequest) (*session.Session, error) {
	if request.SessionID != "" {
		return h.runtime.Sessions.Get(request.SessionID)
	}
	if userID := strings.TrimSpace(request.UserID); userID != "" {
		return h.runtime.Sessions.Resolve(userID), nil
	}
	return h.runtime.Sessions.Create(), nil
}

func (h *handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "shopagent",
		"status":  "ok",
	})
}
