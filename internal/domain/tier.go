package domain

// Tier identifies a knowledge-base level with its own matching threshold and
// escalation behavior.
type Tier string

const (
	TierGeneral Tier = "general"
	TierSenior  Tier = "senior"
)

// DefaultThreshold is the similarity score a match must strictly exceed for a
// tier to answer directly. Scores run 0-100.
const DefaultThreshold = 75

// ParseTier validates a tier name.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierGeneral, TierSenior:
		return Tier(s), nil
	}
	return "", ErrUnknownTier
}

// Sentinel responses signaling "no match" per tier. Distinguishable from real
// knowledge-base content; these are the only failure-adjacent strings exposed
// upward.
func NoMatchSentinel(tier Tier) string {
	if tier == TierSenior {
		return "No answer found in senior knowledge base."
	}
	return "No answer found in general knowledge base."
}
