package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DecisionLogRepository stores routing decisions for audit and evaluation.
type DecisionLogRepository struct {
	pool *pgxpool.Pool
}

func NewDecisionLogRepository(pool *pgxpool.Pool) *DecisionLogRepository {
	return &DecisionLogRepository{pool: pool}
}

// DecisionLog is one persisted routing decision.
type DecisionLog struct {
	ID         string
	Query      string
	Outcome    string
	Tier       string
	Answer     string
	Category   string
	Reason     string
	Scores     map[string]int
	DurationMS int64
	CreatedAt  time.Time
}

// Record persists one routing decision.
func (r *DecisionLogRepository) Record(ctx context.Context, query string, decision domain.Decision, duration time.Duration) error {
	scores := map[string]int{}
	for tier, score := range decision.Scores {
		scores[string(tier)] = score
	}
	scoresJSON, _ := json.Marshal(scores)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO decision_logs (query, outcome, tier, answer, category, reason, scores, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		query,
		string(decision.Outcome),
		string(decision.Tier),
		decision.Answer,
		decision.Category,
		decision.Reason,
		scoresJSON,
		duration.Milliseconds(),
	)
	return err
}

// ListRecent returns the most recent decisions, newest first.
func (r *DecisionLogRepository) ListRecent(ctx context.Context, limit int) ([]*DecisionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, query, outcome, tier, answer, category, reason, scores, duration_ms, created_at
		 FROM decision_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*DecisionLog
	for rows.Next() {
		var entry DecisionLog
		var scoresJSON []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.Query,
			&entry.Outcome,
			&entry.Tier,
			&entry.Answer,
			&entry.Category,
			&entry.Reason,
			&scoresJSON,
			&entry.DurationMS,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(scoresJSON) > 0 {
			if err := json.Unmarshal(scoresJSON, &entry.Scores); err != nil {
				return nil, err
			}
		}
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

// CountByOutcome returns the number of decisions per outcome.
func (r *DecisionLogRepository) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT outcome, COUNT(*) FROM decision_logs GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var outcome string
		var count int64
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		counts[outcome] = count
	}
	return counts, rows.Err()
}
