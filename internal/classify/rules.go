package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRules is the built-in sensitive-topic vocabulary. Deployments with
// their own escalation taxonomy override it with a YAML file via LoadRules.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category:      "foreign_object",
			Keywords:      []string{"foreign object", "plastic", "glass", "metal", "hair", "contaminated", "contamination"},
			FuzzyDistance: 1,
		},
		{
			Category:      "safety",
			Keywords:      []string{"safety", "unsafe", "hazard", "injury", "injured", "allergic reaction", "expired"},
			FuzzyDistance: 1,
		},
		{
			Category:      "complaint",
			Keywords:      []string{"complaint", "unacceptable", "terrible", "insane", "furious", "disgusting"},
			FuzzyDistance: 1,
		},
		{
			Category:      "dispute",
			Keywords:      []string{"dispute", "chargeback", "overcharged", "billing error", "fraud"},
			FuzzyDistance: 1,
		},
		{
			Category:      "policy_exception",
			Keywords:      []string{"exception", "waive", "out of policy", "past the deadline", "special case"},
			FuzzyDistance: 0,
		},
		{
			Category:      "technical",
			Keywords:      []string{"defect", "defective", "malfunction", "error code", "firmware", "warranty claim"},
			FuzzyDistance: 1,
		},
	}
}

type rulesFile struct {
	Topics []Rule `yaml:"topics"`
}

// LoadRules reads a topic vocabulary from a YAML file of the shape:
//
//	topics:
//	  - category: foreign_object
//	    keywords: ["foreign object", "plastic"]
//	    fuzzy_distance: 1
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topics file: %w", err)
	}

	var parsed rulesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse topics file: %w", err)
	}
	if len(parsed.Topics) == 0 {
		return nil, fmt.Errorf("topics file %s defines no topics", path)
	}
	return parsed.Topics, nil
}
