package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/relaydesk/relaydesk/internal/classify"
	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/relaydesk/relaydesk/internal/kb"
	"github.com/relaydesk/relaydesk/internal/match"
	"github.com/relaydesk/relaydesk/internal/telemetry"
)

// ResolutionOutcome is the per-tier decision for one query.
type ResolutionOutcome string

const (
	ResolutionAnswer  ResolutionOutcome = "answer"
	ResolutionNoMatch ResolutionOutcome = "no_match"
)

// Resolution is the result of running one tier's matcher against a query.
// The score is carried on no-match for diagnostics only and is never shown to
// the end user.
type Resolution struct {
	Tier     domain.Tier
	Outcome  ResolutionOutcome
	Answer   string
	Score    int
	Sentinel string // per-tier no-match sentinel, set when Outcome is no_match
}

// TopicClassifier flags sensitive topics that must bypass the general tier.
type TopicClassifier interface {
	Classify(text string) (classify.Match, bool)
}

// Router routes queries across the general and senior knowledge tiers.
// It holds no per-query state; concurrent queries need no synchronization
// beyond the store's snapshot swap.
type Router struct {
	store      *kb.Store
	thresholds map[domain.Tier]int
	classifier TopicClassifier
}

// NewRouter creates a Router. Thresholds missing from the map fall back to
// domain.DefaultThreshold.
func NewRouter(store *kb.Store, classifier TopicClassifier, thresholds map[domain.Tier]int) *Router {
	if thresholds == nil {
		thresholds = map[domain.Tier]int{}
	}
	return &Router{
		store:      store,
		thresholds: thresholds,
		classifier: classifier,
	}
}

// Threshold returns the configured threshold for a tier.
func (r *Router) Threshold(tier domain.Tier) int {
	if t, ok := r.thresholds[tier]; ok {
		return t
	}
	return domain.DefaultThreshold
}

// Resolve runs one tier's matcher against the query and applies the tier
// threshold. The decision rule is strictly greater-than: a score equal to the
// threshold resolves as no-match. A missing or empty knowledge base resolves
// as no-match with score 0 rather than failing the query.
func (r *Router) Resolve(ctx context.Context, tier domain.Tier, query domain.Query) Resolution {
	_, span := telemetry.StartSpan(ctx, "Router.Resolve", telemetry.SpanAttributes{
		Tier:      string(tier),
		Operation: "resolve",
	})
	defer span.End()

	best := match.BestMatch(query.Text, r.store.Get(tier))

	resolution := Resolution{Tier: tier, Score: best.Score}
	if best.Found && best.Score > r.Threshold(tier) {
		resolution.Outcome = ResolutionAnswer
		resolution.Answer = best.Answer
	} else {
		resolution.Outcome = ResolutionNoMatch
		resolution.Sentinel = domain.NoMatchSentinel(tier)
	}

	logResolution(tier, query, resolution)
	return resolution
}

// Route runs the full escalation policy for one query: general tier first,
// then the sensitivity classifier, then the senior tier, and finally the
// defer-to-model escalation when both tiers miss.
func (r *Router) Route(ctx context.Context, query domain.Query) domain.Decision {
	ctx, span := telemetry.StartSpan(ctx, "Router.Route", telemetry.SpanAttributes{
		Operation: "route",
	})
	defer span.End()

	scores := make(map[domain.Tier]int, 2)

	general := r.Resolve(ctx, domain.TierGeneral, query)
	scores[domain.TierGeneral] = general.Score
	if general.Outcome == ResolutionAnswer {
		return domain.Answered(general.Answer, domain.TierGeneral, scores)
	}

	// The classifier result does not gate escalation: a general miss always
	// moves on to the senior tier. It annotates the decision so sensitive
	// queries are visible in logs and audits.
	category := ""
	if r.classifier != nil {
		if m, ok := r.classifier.Classify(query.Text); ok {
			category = m.Category
			log.Printf("sensitive topic flagged: category=%s keyword=%q", m.Category, m.Keyword)
		}
	}

	senior := r.Resolve(ctx, domain.TierSenior, query)
	scores[domain.TierSenior] = senior.Score
	if senior.Outcome == ResolutionAnswer {
		decision := domain.Answered(senior.Answer, domain.TierSenior, scores)
		decision.Category = category
		return decision
	}

	return domain.Escalated(domain.EscalationReasonNoMatch, category, scores)
}

// RouteText normalizes raw text and routes it. Invalid input becomes an
// unresolved decision instead of an error so one bad query never takes the
// pipeline down.
func (r *Router) RouteText(ctx context.Context, text string) domain.Decision {
	query, err := domain.NewQuery(text)
	if err != nil {
		log.Printf("query rejected at boundary: %v", err)
		return domain.Unresolved("invalid query")
	}
	return r.Route(ctx, query)
}

type resolutionLogEntry struct {
	Tier    string `json:"tier"`
	Query   string `json:"query"`
	Score   int    `json:"score"`
	Outcome string `json:"outcome"`
}

func logResolution(tier domain.Tier, query domain.Query, res Resolution) {
	entry := resolutionLogEntry{
		Tier:    string(tier),
		Query:   query.Text,
		Score:   res.Score,
		Outcome: string(res.Outcome),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		log.Printf("resolution_log_marshal_error: %v", err)
		return
	}
	log.Println(string(payload))
}
