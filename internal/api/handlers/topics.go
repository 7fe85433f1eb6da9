package handlers

import (
	"io"
	"net/http"

	"github.com/relaydesk/relaydesk/internal/api"
	"github.com/relaydesk/relaydesk/internal/classify"
	"github.com/relaydesk/relaydesk/internal/domain"
)

// TopicService exposes the sensitivity classifier's rule set.
type TopicService interface {
	Classify(text string) (classify.Match, bool)
	Rules() []classify.Rule
}

type TopicsHandler struct {
	svc TopicService
}

func NewTopicsHandler(svc TopicService) *TopicsHandler {
	return &TopicsHandler{svc: svc}
}

type TopicResponse struct {
	Category      string   `json:"category"`
	Keywords      []string `json:"keywords"`
	FuzzyDistance int      `json:"fuzzy_distance"`
}

type TopicListResponse struct {
	Topics []TopicResponse `json:"topics"`
}

type ClassifyResponse struct {
	Sensitive bool   `json:"sensitive"`
	Category  string `json:"category,omitempty"`
	Keyword   string `json:"keyword,omitempty"`
}

func (h *TopicsHandler) List(w http.ResponseWriter, r *http.Request) {
	rules := h.svc.Rules()
	topics := make([]TopicResponse, len(rules))
	for i, rule := range rules {
		topics[i] = TopicResponse{
			Category:      rule.Category,
			Keywords:      rule.Keywords,
			FuzzyDistance: rule.FuzzyDistance,
		}
	}

	api.Success(w, http.StatusOK, TopicListResponse{Topics: topics})
}

func (h *TopicsHandler) Classify(w http.ResponseWriter, r *http.Request) {
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

	m, ok := h.svc.Classify(query.Text)
	resp := ClassifyResponse{Sensitive: ok}
	if ok {
		resp.Category = m.Category
		resp.Keyword = m.Keyword
	}

	api.Success(w, http.StatusOK, resp)
}
