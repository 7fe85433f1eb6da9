package service

import (
	"context"
	"strings"
	"testing"

	"github.com/relaydesk/relaydesk/internal/classify"
	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/relaydesk/relaydesk/internal/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	match classify.Match
	ok    bool
}

func (s *stubClassifier) Classify(text string) (classify.Match, bool) {
	return s.match, s.ok
}

func storeWith(t *testing.T, generalCSV, seniorCSV string) *kb.Store {
	t.Helper()
	store := kb.NewStore()
	if generalCSV != "" {
		loaded, err := kb.Load(strings.NewReader(generalCSV), domain.TierGeneral)
		require.NoError(t, err)
		store.Set(domain.TierGeneral, loaded)
	}
	if seniorCSV != "" {
		loaded, err := kb.Load(strings.NewReader(seniorCSV), domain.TierSenior)
		require.NoError(t, err)
		store.Set(domain.TierSenior, loaded)
	}
	return store
}

func mustQuery(t *testing.T, text string) domain.Query {
	t.Helper()
	q, err := domain.NewQuery(text)
	require.NoError(t, err)
	return q
}

func TestResolve_AnswerAboveThreshold(t *testing.T) {
	store := storeWith(t, "Question,Answer\nWhat are your store hours?,9am-9pm daily\n", "")
	router := NewRouter(store, nil, nil)

	res := router.Resolve(context.Background(), domain.TierGeneral, mustQuery(t, "What are your store hours?"))
	assert.Equal(t, ResolutionAnswer, res.Outcome)
	assert.Equal(t, "9am-9pm daily", res.Answer)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Sentinel)
}

func TestResolve_ThresholdIsStrictlyGreaterThan(t *testing.T) {
	// Query and question of length 8 differing in two runes yield a
	// similarity of exactly 75; one rune closer yields 88.
	store := storeWith(t, "Question,Answer\naaaaaaaa,contrived\n", "")
	router := NewRouter(store, nil, nil)

	res := router.Resolve(context.Background(), domain.TierGeneral, mustQuery(t, "aaaaaabb"))
	assert.Equal(t, 75, res.Score)
	assert.Equal(t, ResolutionNoMatch, res.Outcome, "score equal to the threshold must not answer")
	assert.Equal(t, "No answer found in general knowledge base.", res.Sentinel)
}

func TestResolve_Score76Answers(t *testing.T) {
	// 25-rune strings differing in six runes score exactly 76.
	question := strings.Repeat("a", 25)
	query := strings.Repeat("a", 19) + strings.Repeat("b", 6)
	store := storeWith(t, "Question,Answer\n"+question+",contrived\n", "")
	router := NewRouter(store, nil, nil)

	res := router.Resolve(context.Background(), domain.TierGeneral, mustQuery(t, query))
	assert.Equal(t, 76, res.Score)
	assert.Equal(t, ResolutionAnswer, res.Outcome)
	assert.Equal(t, "contrived", res.Answer)
}

func TestResolve_CustomThreshold(t *testing.T) {
	store := storeWith(t, "Question,Answer\naaaaaaaa,contrived\n", "")
	router := NewRouter(store, nil, map[domain.Tier]int{domain.TierGeneral: 70})

	res := router.Resolve(context.Background(), domain.TierGeneral, mustQuery(t, "aaaaaabb"))
	assert.Equal(t, ResolutionAnswer, res.Outcome)
}

func TestResolve_MissingKB(t *testing.T) {
	router := NewRouter(kb.NewStore(), nil, nil)

	res := router.Resolve(context.Background(), domain.TierSenior, mustQuery(t, "anything"))
	assert.Equal(t, ResolutionNoMatch, res.Outcome)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, "No answer found in senior knowledge base.", res.Sentinel)
}

func TestRoute_GeneralAnswers(t *testing.T) {
	store := storeWith(t,
		"Question,Answer\nWhat are your store hours?,9am-9pm daily\n",
		"Question,Answer\nHow do I escalate a billing dispute?,A supervisor will call you within 24 hours.\n")
	router := NewRouter(store, &stubClassifier{}, nil)

	decision := router.Route(context.Background(), mustQuery(t, "What are your store hours?"))
	assert.Equal(t, domain.OutcomeAnswered, decision.Outcome)
	assert.Equal(t, "9am-9pm daily", decision.Answer)
	assert.Equal(t, domain.TierGeneral, decision.Tier)
	assert.Equal(t, 100, decision.Scores[domain.TierGeneral])
	_, seniorConsulted := decision.Scores[domain.TierSenior]
	assert.False(t, seniorConsulted, "senior tier must not run when general answers")
}

func TestRoute_EscalatesToSeniorAnswer(t *testing.T) {
	store := storeWith(t,
		"Question,Answer\nWhat are your store hours?,9am-9pm daily\n",
		"Question,Answer\nHow do I dispute a charge on my bill?,A supervisor will call you within 24 hours.\n")
	router := NewRouter(store, &stubClassifier{}, nil)

	decision := router.Route(context.Background(), mustQuery(t, "How do I dispute a charge on my bill?"))
	assert.Equal(t, domain.OutcomeAnswered, decision.Outcome)
	assert.Equal(t, domain.TierSenior, decision.Tier)
	assert.Equal(t, "A supervisor will call you within 24 hours.", decision.Answer)
	assert.Contains(t, decision.Scores, domain.TierGeneral)
	assert.Equal(t, 100, decision.Scores[domain.TierSenior])
}

func TestRoute_SensitiveTopicRoutesToSeniorRegardlessOfSeniorKB(t *testing.T) {
	classifier, err := classify.New(classify.DefaultRules())
	require.NoError(t, err)

	// General KB has nothing close; senior KB is empty.
	store := storeWith(t, "Question,Answer\nWhat are your store hours?,9am-9pm daily\n", "Question,Answer\n")
	router := NewRouter(store, classifier, nil)

	decision := router.Route(context.Background(), mustQuery(t, "I found plastic in my cereal box"))
	assert.Equal(t, domain.OutcomeEscalated, decision.Outcome)
	assert.Equal(t, "foreign_object", decision.Category)
	assert.Equal(t, domain.EscalationReasonNoMatch, decision.Reason)
}

func TestRoute_BothTiersMissDefersToModel(t *testing.T) {
	store := storeWith(t,
		"Question,Answer\nWhat are your store hours?,9am-9pm daily\n",
		"Question,Answer\nHow do I file a damage claim?,Use the claims portal.\n")
	router := NewRouter(store, &stubClassifier{}, nil)

	decision := router.Route(context.Background(), mustQuery(t, "Can you tell me the exact quantum entanglement state of the manager's socks?"))
	assert.Equal(t, domain.OutcomeEscalated, decision.Outcome)
	assert.Equal(t, "no KB match; defer to model-generated resolution", decision.Reason)
	assert.LessOrEqual(t, decision.Scores[domain.TierGeneral], 75)
	assert.LessOrEqual(t, decision.Scores[domain.TierSenior], 75)
}

func TestRoute_EmptyGeneralKBAlwaysEscalates(t *testing.T) {
	store := storeWith(t, "Question,Answer\n",
		"Question,Answer\nWhat are your store hours?,9am-9pm daily\n")
	router := NewRouter(store, &stubClassifier{}, nil)

	decision := router.Route(context.Background(), mustQuery(t, "What are your store hours?"))
	assert.Equal(t, domain.OutcomeAnswered, decision.Outcome)
	assert.Equal(t, domain.TierSenior, decision.Tier)
	assert.Equal(t, 0, decision.Scores[domain.TierGeneral])
}

func TestRoute_MissingSeniorKBDegradesToEscalation(t *testing.T) {
	store := storeWith(t, "Question,Answer\nWhat are your store hours?,9am-9pm daily\n", "")
	router := NewRouter(store, &stubClassifier{}, nil)

	decision := router.Route(context.Background(), mustQuery(t, "something entirely different"))
	assert.Equal(t, domain.OutcomeEscalated, decision.Outcome)
	assert.Equal(t, domain.EscalationReasonNoMatch, decision.Reason)
}

func TestRoute_SeniorAnswerKeepsCategory(t *testing.T) {
	store := storeWith(t,
		"Question,Answer\nWhat are your store hours?,9am-9pm daily\n",
		"Question,Answer\nI found plastic in my product what now,We will replace the product and open a safety report.\n")
	classifier := &stubClassifier{match: classify.Match{Category: "foreign_object", Keyword: "plastic"}, ok: true}
	router := NewRouter(store, classifier, nil)

	decision := router.Route(context.Background(), mustQuery(t, "I found plastic in my product what now"))
	assert.Equal(t, domain.OutcomeAnswered, decision.Outcome)
	assert.Equal(t, domain.TierSenior, decision.Tier)
	assert.Equal(t, "foreign_object", decision.Category)
}

func TestRouteText_InvalidQueryNeverCrashes(t *testing.T) {
	router := NewRouter(kb.NewStore(), nil, nil)

	decision := router.RouteText(context.Background(), "   ")
	assert.Equal(t, domain.OutcomeUnresolved, decision.Outcome)
	assert.Equal(t, "invalid query", decision.Reason)
	assert.Empty(t, decision.Answer)
}

func TestThreshold_Defaults(t *testing.T) {
	router := NewRouter(kb.NewStore(), nil, map[domain.Tier]int{domain.TierSenior: 80})
	assert.Equal(t, 75, router.Threshold(domain.TierGeneral))
	assert.Equal(t, 80, router.Threshold(domain.TierSenior))
}
