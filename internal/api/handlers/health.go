package handlers

import (
	"net/http"

	"github.com/relaydesk/relaydesk/internal/api"
	"github.com/relaydesk/relaydesk/internal/domain"
)

type HealthHandler struct {
	provider KnowledgeProvider
	version  string
}

func NewHealthHandler(provider KnowledgeProvider, version string) *HealthHandler {
	return &HealthHandler{provider: provider, version: version}
}

type TierHealth struct {
	Loaded  bool `json:"loaded"`
	Entries int  `json:"entries"`
}

type HealthResponse struct {
	Status  string                `json:"status"`
	Version string                `json:"version,omitempty"`
	Tiers   map[string]TierHealth `json:"tiers"`
}

// Health reports readiness. The service is degraded, not down, when the
// general tier is missing; queries would escalate straight to the senior tier.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	tiers := make(map[string]TierHealth, 2)
	status := "ok"

	for _, tier := range []domain.Tier{domain.TierGeneral, domain.TierSenior} {
		base := h.provider.Get(tier)
		health := TierHealth{Loaded: base != nil}
		if base != nil {
			health.Entries = base.Len()
		}
		tiers[string(tier)] = health
	}

	if !tiers[string(domain.TierGeneral)].Loaded {
		status = "degraded"
	}

	api.Success(w, http.StatusOK, HealthResponse{
		Status:  status,
		Version: h.version,
		Tiers:   tiers,
	})
}
