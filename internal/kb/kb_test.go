package kb

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Success(t *testing.T) {
	src := "Question,Answer\nWhat are your store hours?,9am-9pm daily\nHow do I return an item?,Bring it to any register with a receipt.\n"

	loaded, err := Load(strings.NewReader(src), domain.TierGeneral)
	require.NoError(t, err)
	assert.Equal(t, domain.TierGeneral, loaded.Tier())
	require.Equal(t, 2, loaded.Len())

	entries := loaded.Entries()
	assert.Equal(t, "What are your store hours?", entries[0].Question)
	assert.Equal(t, "9am-9pm daily", entries[0].Answer)
	assert.Equal(t, "How do I return an item?", entries[1].Question)
}

func TestLoad_ExtraColumnsIgnored(t *testing.T) {
	src := "Category,Question,Answer\nhours,When do you open?,We open at 9am.\n"

	loaded, err := Load(strings.NewReader(src), domain.TierGeneral)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "When do you open?", loaded.Entry(0).Question)
	assert.Equal(t, "We open at 9am.", loaded.Entry(0).Answer)
}

func TestLoad_MissingAnswerColumn(t *testing.T) {
	src := "Question,Response\nWhat are your store hours?,9am-9pm daily\n"

	_, err := Load(strings.NewReader(src), domain.TierGeneral)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingAnswerColumn)
}

func TestLoad_MissingQuestionColumn(t *testing.T) {
	src := "Prompt,Answer\nWhat are your store hours?,9am-9pm daily\n"

	_, err := Load(strings.NewReader(src), domain.TierGeneral)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingQuestionColumn)
}

func TestLoad_CaseSensitiveHeaders(t *testing.T) {
	src := "question,answer\nWhat are your store hours?,9am-9pm daily\n"

	_, err := Load(strings.NewReader(src), domain.TierGeneral)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrCodeSchema, domainErr.Code)
}

func TestLoad_EmptySource(t *testing.T) {
	_, err := Load(strings.NewReader(""), domain.TierGeneral)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingQuestionColumn)
}

func TestLoad_HeaderOnlyIsEmptyNotFatal(t *testing.T) {
	loaded, err := Load(strings.NewReader("Question,Answer\n"), domain.TierSenior)
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
	assert.Equal(t, 0, loaded.Len())
}

func TestLoad_EmptyQuestionFails(t *testing.T) {
	src := "Question,Answer\n,orphaned answer\n"

	_, err := Load(strings.NewReader(src), domain.TierGeneral)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
}

func TestLoad_BOMHeader(t *testing.T) {
	src := "\uFEFFQuestion,Answer\nWhen do you open?,9am.\n"

	loaded, err := Load(strings.NewReader(src), domain.TierGeneral)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestEntries_ReturnsCopy(t *testing.T) {
	src := "Question,Answer\nWhen do you open?,9am.\n"
	loaded, err := Load(strings.NewReader(src), domain.TierGeneral)
	require.NoError(t, err)

	entries := loaded.Entries()
	entries[0].Answer = "mutated"
	assert.Equal(t, "9am.", loaded.Entry(0).Answer)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "general.csv")
	require.NoError(t, os.WriteFile(path, []byte("Question,Answer\nWhen do you open?,9am.\n"), 0o644))

	loaded, err := LoadFile(path, domain.TierGeneral)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.SourcePath())
	assert.False(t, loaded.LoadedAt().IsZero())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"), domain.TierGeneral)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrCodeSchema, domainErr.Code)
}

func TestStore_SwapSnapshot(t *testing.T) {
	store := NewStore()
	assert.Nil(t, store.Get(domain.TierGeneral))

	first, err := Load(strings.NewReader("Question,Answer\nq1,a1\n"), domain.TierGeneral)
	require.NoError(t, err)
	store.Set(domain.TierGeneral, first)
	assert.Equal(t, 1, store.Get(domain.TierGeneral).Len())

	second, err := Load(strings.NewReader("Question,Answer\nq1,a1\nq2,a2\n"), domain.TierGeneral)
	require.NoError(t, err)
	store.Set(domain.TierGeneral, second)
	assert.Equal(t, 2, store.Get(domain.TierGeneral).Len())

	// senior tier stays independent
	assert.Nil(t, store.Get(domain.TierSenior))
}
