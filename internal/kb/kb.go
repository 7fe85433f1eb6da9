// Package kb loads and holds per-tier knowledge bases. A KnowledgeBase is
// immutable after load; reloads swap in a whole new snapshot via Store.
package kb

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/relaydesk/relaydesk/internal/domain"
)

const (
	questionColumn = "Question"
	answerColumn   = "Answer"
)

// KnowledgeBase is an ordered, read-only collection of question/answer pairs
// for one tier.
type KnowledgeBase struct {
	tier       domain.Tier
	entries    []domain.Entry
	sourcePath string
	loadedAt   time.Time
}

// Load parses CSV data into a KnowledgeBase. The source must carry
// case-sensitive "Question" and "Answer" header columns; extra columns are
// ignored. A source with zero data rows loads successfully and behaves as a
// permanent no-match.
func Load(r io.Reader, tier domain.Tier) (*KnowledgeBase, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, domain.ErrMissingQuestionColumn
	}
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSchema, "failed to read knowledge base header", err)
	}

	questionIdx, answerIdx := -1, -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch name {
		case questionColumn:
			questionIdx = i
		case answerColumn:
			answerIdx = i
		}
	}
	if questionIdx < 0 {
		return nil, domain.ErrMissingQuestionColumn
	}
	if answerIdx < 0 {
		return nil, domain.ErrMissingAnswerColumn
	}

	var entries []domain.Entry
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSchema, fmt.Sprintf("failed to read knowledge base row %d", row), err)
		}
		row++

		entry := domain.Entry{
			Question: strings.TrimSpace(record[questionIdx]),
			Answer:   record[answerIdx],
		}
		if err := domain.ValidateEntry(entry); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSchema, fmt.Sprintf("invalid knowledge base row %d", row), err)
		}
		entries = append(entries, entry)
	}

	return &KnowledgeBase{
		tier:     tier,
		entries:  entries,
		loadedAt: time.Now().UTC(),
	}, nil
}

// LoadFile loads a knowledge base from a CSV file on disk.
func LoadFile(path string, tier domain.Tier) (*KnowledgeBase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSchema, fmt.Sprintf("failed to open knowledge base source %s", path), err)
	}
	defer f.Close()

	loaded, err := Load(f, tier)
	if err != nil {
		return nil, err
	}
	loaded.sourcePath = path
	return loaded, nil
}

// Tier returns the tier this knowledge base serves.
func (k *KnowledgeBase) Tier() domain.Tier {
	return k.tier
}

// Entries returns the stored entries. The returned slice is a copy; the
// knowledge base itself never changes after load.
func (k *KnowledgeBase) Entries() []domain.Entry {
	out := make([]domain.Entry, len(k.entries))
	copy(out, k.entries)
	return out
}

// Len returns the number of entries.
func (k *KnowledgeBase) Len() int {
	if k == nil {
		return 0
	}
	return len(k.entries)
}

// IsEmpty reports whether the knowledge base holds no entries.
func (k *KnowledgeBase) IsEmpty() bool {
	return k.Len() == 0
}

// Entry returns the entry at index i without copying.
func (k *KnowledgeBase) Entry(i int) domain.Entry {
	return k.entries[i]
}

// SourcePath returns the file the knowledge base was loaded from, if any.
func (k *KnowledgeBase) SourcePath() string {
	if k == nil {
		return ""
	}
	return k.sourcePath
}

// LoadedAt returns when the snapshot was loaded.
func (k *KnowledgeBase) LoadedAt() time.Time {
	if k == nil {
		return time.Time{}
	}
	return k.loadedAt
}
