package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/relaydesk/relaydesk/internal/api"
	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/relaydesk/relaydesk/internal/kb"
	"github.com/relaydesk/relaydesk/internal/service"
	"github.com/go-chi/chi/v5"
)

// KnowledgeProvider exposes the current snapshot for a tier.
type KnowledgeProvider interface {
	Get(tier domain.Tier) *kb.KnowledgeBase
}

// TierResolver runs a single tier's matcher without the escalation flow.
type TierResolver interface {
	Resolve(ctx context.Context, tier domain.Tier, query domain.Query) service.Resolution
	Threshold(tier domain.Tier) int
}

type KBHandler struct {
	provider KnowledgeProvider
	resolver TierResolver
}

func NewKBHandler(provider KnowledgeProvider, resolver TierResolver) *KBHandler {
	return &KBHandler{provider: provider, resolver: resolver}
}

type EntryResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type KBListResponse struct {
	Tier    string          `json:"tier"`
	Entries []EntryResponse `json:"entries"`
}

type KBStatsResponse struct {
	Tier     string `json:"tier"`
	Entries  int    `json:"entries"`
	Empty    bool   `json:"empty"`
	Source   string `json:"source,omitempty"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

type MatchResponse struct {
	Tier      string `json:"tier"`
	Outcome   string `json:"outcome"`
	Answer    string `json:"answer,omitempty"`
	Sentinel  string `json:"sentinel,omitempty"`
	Score     int    `json:"score"`
	Threshold int    `json:"threshold"`
}

func tierParam(r *http.Request) (domain.Tier, error) {
	return domain.ParseTier(chi.URLParam(r, "tier"))
}

func (h *KBHandler) List(w http.ResponseWriter, r *http.Request) {
	tier, err := tierParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	base := h.provider.Get(tier)
	if base == nil {
		api.Error(w, http.StatusNotFound, "knowledge base not loaded")
		return
	}

	entries := base.Entries()
	responses := make([]EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = EntryResponse{Question: entry.Question, Answer: entry.Answer}
	}

	api.Success(w, http.StatusOK, KBListResponse{Tier: string(tier), Entries: responses})
}

func (h *KBHandler) Stats(w http.ResponseWriter, r *http.Request) {
	tier, err := tierParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	base := h.provider.Get(tier)
	if base == nil {
		api.Error(w, http.StatusNotFound, "knowledge base not loaded")
		return
	}

	resp := KBStatsResponse{
		Tier:    string(tier),
		Entries: base.Len(),
		Empty:   base.IsEmpty(),
		Source:  base.SourcePath(),
	}
	if loadedAt := base.LoadedAt(); !loadedAt.IsZero() {
		resp.LoadedAt = loadedAt.UTC().Format(time.RFC3339)
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *KBHandler) Match(w http.ResponseWriter, r *http.Request) {
	tier, err := tierParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

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

	resolution := h.resolver.Resolve(r.Context(), tier, query)

	api.Success(w, http.StatusOK, MatchResponse{
		Tier:      string(tier),
		Outcome:   string(resolution.Outcome),
		Answer:    resolution.Answer,
		Sentinel:  resolution.Sentinel,
		Score:     resolution.Score,
		Threshold: h.resolver.Threshold(tier),
	})
}
