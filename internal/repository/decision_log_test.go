//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/relaydesk/relaydesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionLogRepository_Record(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDecisionLogRepository(pool)

	decision := domain.Answered("Delivery takes 3-5 business days.", domain.TierGeneral,
		map[domain.Tier]int{domain.TierGeneral: 92, domain.TierSenior: 0})

	err := repo.Record(ctx, "How long does delivery take?", decision, 12*time.Millisecond)
	require.NoError(t, err)

	logs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "How long does delivery take?", entry.Query)
	assert.Equal(t, "answered", entry.Outcome)
	assert.Equal(t, "general", entry.Tier)
	assert.Equal(t, "Delivery takes 3-5 business days.", entry.Answer)
	assert.Equal(t, 92, entry.Scores["general"])
	assert.Equal(t, int64(12), entry.DurationMS)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestDecisionLogRepository_RecordEscalated(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDecisionLogRepository(pool)

	decision := domain.Escalated(domain.EscalationReasonNoMatch, "safety",
		map[domain.Tier]int{domain.TierGeneral: 40, domain.TierSenior: 55})

	err := repo.Record(ctx, "my order caught fire", decision, 8*time.Millisecond)
	require.NoError(t, err)

	logs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "escalated", entry.Outcome)
	assert.Equal(t, "safety", entry.Category)
	assert.Equal(t, domain.EscalationReasonNoMatch, entry.Reason)
	assert.Empty(t, entry.Answer)
}

func TestDecisionLogRepository_ListRecentOrder(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDecisionLogRepository(pool)

	for _, query := range []string{"first", "second", "third"} {
		err := repo.Record(ctx, query, domain.Unresolved("invalid query"), time.Millisecond)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	logs, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].Query)
	assert.Equal(t, "second", logs[1].Query)
}

func TestDecisionLogRepository_CountByOutcome(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDecisionLogRepository(pool)

	require.NoError(t, repo.Record(ctx, "q1",
		domain.Answered("a1", domain.TierGeneral, nil), time.Millisecond))
	require.NoError(t, repo.Record(ctx, "q2",
		domain.Answered("a2", domain.TierSenior, nil), time.Millisecond))
	require.NoError(t, repo.Record(ctx, "q3",
		domain.Escalated(domain.EscalationReasonNoMatch, "", nil), time.Millisecond))

	counts, err := repo.CountByOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["answered"])
	assert.Equal(t, int64(1), counts["escalated"])
}
