package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/relaydesk/relaydesk/internal/api"
	"github.com/relaydesk/relaydesk/internal/domain"
)

// QueryRouter runs the two-tier escalation flow for one query.
type QueryRouter interface {
	Route(ctx context.Context, query domain.Query) domain.Decision
}

// Responder generates a reply for queries the knowledge bases could not
// answer. Optional; without it escalated queries return the reason only.
type Responder interface {
	SynthesizeReply(ctx context.Context, query string, category string) (string, error)
}

// DecisionRecorder persists routing decisions for audit. Optional.
type DecisionRecorder interface {
	Record(ctx context.Context, query string, decision domain.Decision, duration time.Duration) error
}

type QueryHandler struct {
	router    QueryRouter
	responder Responder
	recorder  DecisionRecorder
}

func NewQueryHandler(router QueryRouter, responder Responder, recorder DecisionRecorder) *QueryHandler {
	return &QueryHandler{router: router, responder: responder, recorder: recorder}
}

type DecisionResponse struct {
	Outcome    string         `json:"outcome"`
	Answer     string         `json:"answer,omitempty"`
	Tier       string         `json:"tier,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Category   string         `json:"category,omitempty"`
	Reply      string         `json:"reply,omitempty"`
	Scores     map[string]int `json:"scores,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

func decisionToResponse(d domain.Decision, reply string, duration time.Duration) *DecisionResponse {
	resp := &DecisionResponse{
		Outcome:    string(d.Outcome),
		Answer:     d.Answer,
		Tier:       string(d.Tier),
		Reason:     d.Reason,
		Category:   d.Category,
		Reply:      reply,
		DurationMS: duration.Milliseconds(),
	}
	if len(d.Scores) > 0 {
		resp.Scores = make(map[string]int, len(d.Scores))
		for tier, score := range d.Scores {
			resp.Scores[string(tier)] = score
		}
	}
	return resp
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	query, err := domain.ParseQueryJSON(body)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	start := time.Now()
	decision := h.router.Route(r.Context(), query)
	duration := time.Since(start)

	reply := ""
	if decision.Outcome == domain.OutcomeEscalated && h.responder != nil {
		reply, err = h.responder.SynthesizeReply(r.Context(), query.Text, decision.Category)
		if err != nil {
			// The routing decision stands on its own; reply generation is
			// best-effort.
			log.Printf("reply synthesis failed: %v", err)
			reply = ""
		}
	}

	if h.recorder != nil {
		if err := h.recorder.Record(r.Context(), query.Text, decision, duration); err != nil {
			log.Printf("decision record failed: %v", err)
		}
	}

	api.Success(w, http.StatusOK, decisionToResponse(decision, reply, duration))
}
