// Package match scores free-text queries against knowledge-base questions.
package match

import (
	"math"
	"strings"

	"github.com/relaydesk/relaydesk/internal/kb"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Result is the best match found for one query. Transient, produced per query.
type Result struct {
	Score    int    // best similarity in [0, 100]
	Index    int    // row index of the best entry, -1 when the KB is empty
	Question string // question text of the best entry
	Answer   string // answer text of the best entry
	Found    bool   // false when the KB is empty or nil
}

// Ratio computes the similarity of two strings as an integer in [0, 100].
// It is the normalized edit-distance ratio with substitutions costing two,
// so an exact match scores 100 and disjoint strings score 0.
func Ratio(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	ratio := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return int(math.Round(ratio * 100))
}

// BestMatch scans every entry and returns the one most similar to the query.
// Ties keep the first entry reaching the maximum, so results are deterministic
// and follow insertion order. Pure and stateless: safe to call concurrently on
// an immutable knowledge base.
func BestMatch(query string, knowledge *kb.KnowledgeBase) Result {
	if knowledge.Len() == 0 {
		return Result{Score: 0, Index: -1}
	}

	best := Result{Score: -1, Index: -1}
	for i := 0; i < knowledge.Len(); i++ {
		entry := knowledge.Entry(i)
		score := Ratio(query, entry.Question)
		if score > best.Score {
			best = Result{
				Score:    score,
				Index:    i,
				Question: entry.Question,
				Answer:   entry.Answer,
				Found:    true,
			}
		}
	}
	return best
}
