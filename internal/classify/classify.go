// Package classify flags queries that touch sensitive support topics. The
// flag annotates routing decisions for downstream handling; it never changes
// which tier answers.
package classify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Rule defines one sensitive-topic category and its trigger phrases.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
	// FuzzyDistance is the maximum edit distance for approximate matching of
	// single-word keywords. Zero disables fuzzy matching for the rule.
	FuzzyDistance int `yaml:"fuzzy_distance"`
}

// Match is a positive classification result.
type Match struct {
	Category string
	Keyword  string
}

type preppedRule struct {
	category      string
	keywords      []string
	patterns      []*regexp.Regexp
	lowerKeywords []string
	fuzzyDistance int
}

// Classifier matches query text against a configured topic vocabulary.
// Rules are evaluated in definition order with first-match semantics.
type Classifier struct {
	rules []preppedRule
}

// fuzzyOptions uses unit costs so FuzzyDistance counts plain edits.
var fuzzyOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// New compiles a classifier from rules.
func New(rules []Rule) (*Classifier, error) {
	c := &Classifier{}
	for _, rule := range rules {
		if rule.Category == "" {
			return nil, fmt.Errorf("classifier rule is missing a category")
		}
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("classifier rule %q has no keywords", rule.Category)
		}

		prepped := preppedRule{
			category:      rule.Category,
			keywords:      rule.Keywords,
			patterns:      make([]*regexp.Regexp, len(rule.Keywords)),
			lowerKeywords: make([]string, len(rule.Keywords)),
			fuzzyDistance: rule.FuzzyDistance,
		}
		for i, keyword := range rule.Keywords {
			pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern for keyword %q in rule %q: %w", keyword, rule.Category, err)
			}
			prepped.patterns[i] = pattern
			prepped.lowerKeywords[i] = strings.ToLower(keyword)
		}
		c.rules = append(c.rules, prepped)
	}
	return c, nil
}

// Classify returns the first category whose vocabulary matches the text.
func (c *Classifier) Classify(text string) (Match, bool) {
	var words []string
	wordsExtracted := false

	for _, rule := range c.rules {
		for i, pattern := range rule.patterns {
			if pattern.MatchString(text) {
				return Match{Category: rule.category, Keyword: rule.keywords[i]}, true
			}

			if rule.fuzzyDistance <= 0 {
				continue
			}
			keyword := rule.lowerKeywords[i]
			if strings.ContainsRune(keyword, ' ') {
				// Fuzzy matching compares whole words; phrases stay exact.
				continue
			}
			if !wordsExtracted {
				words = extractLowerWords(text)
				wordsExtracted = true
			}
			for _, word := range words {
				if editDistance(word, keyword) <= rule.fuzzyDistance {
					return Match{Category: rule.category, Keyword: rule.keywords[i]}, true
				}
			}
		}
	}
	return Match{}, false
}

// Categories lists the configured categories in evaluation order.
func (c *Classifier) Categories() []string {
	out := make([]string, len(c.rules))
	for i, rule := range c.rules {
		out[i] = rule.category
	}
	return out
}

// Rules returns the vocabulary as configured, for diagnostics.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, rule := range c.rules {
		out[i] = Rule{
			Category:      rule.category,
			Keywords:      append([]string(nil), rule.keywords...),
			FuzzyDistance: rule.fuzzyDistance,
		}
	}
	return out
}

func editDistance(a, b string) int {
	return levenshtein.DistanceForStrings([]rune(a), []rune(b), fuzzyOptions)
}

func extractLowerWords(text string) []string {
	var words []string
	var current strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, strings.ToLower(current.String()))
	}
	return words
}
