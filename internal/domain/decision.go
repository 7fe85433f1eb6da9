package domain

// Outcome is the final disposition of a routed query.
type Outcome string

const (
	// OutcomeAnswered means a knowledge base supplied the answer directly.
	OutcomeAnswered Outcome = "answered"
	// OutcomeEscalated means both tiers missed and response generation is
	// deferred to model reasoning.
	OutcomeEscalated Outcome = "escalated"
	// OutcomeUnresolved means the query could not enter the pipeline at all
	// (empty or non-text input).
	OutcomeUnresolved Outcome = "unresolved"
)

// EscalationReasonNoMatch signals the conversational collaborator that it must
// synthesize a response rather than quote the knowledge base.
const EscalationReasonNoMatch = "no KB match; defer to model-generated resolution"

// Decision is the routing result for one query. Produced once per query and
// never mutated after creation.
type Decision struct {
	Outcome  Outcome
	Answer   string // set only when Outcome is OutcomeAnswered
	Tier     Tier   // tier that answered, when answered
	Reason   string // set when escalated or unresolved
	Category string // sensitive-topic category flagged during escalation, if any
	Scores   map[Tier]int
}

// Answered builds a decision for a direct knowledge-base answer.
func Answered(answer string, tier Tier, scores map[Tier]int) Decision {
	return Decision{
		Outcome: OutcomeAnswered,
		Answer:  answer,
		Tier:    tier,
		Scores:  scores,
	}
}

// Escalated builds a decision deferring to model-generated resolution.
func Escalated(reason, category string, scores map[Tier]int) Decision {
	return Decision{
		Outcome:  OutcomeEscalated,
		Reason:   reason,
		Category: category,
		Scores:   scores,
	}
}

// Unresolved builds a decision for input that never reached the matcher.
func Unresolved(reason string) Decision {
	return Decision{
		Outcome: OutcomeUnresolved,
		Reason:  reason,
	}
}
