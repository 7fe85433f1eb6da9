package domain

// Entry is a single (question, answer) pair in a knowledge base. Immutable
// once loaded; identity is the row index within its tier.
type Entry struct {
	Question string
	Answer   string
}

// ValidateEntry enforces the load-time invariant that every entry carries
// non-empty question text.
func ValidateEntry(e Entry) error {
	if e.Question == "" {
		return ErrEmptyQuestion
	}
	return nil
}
