package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"lendnova-backend/internal/scoring"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const assessmentColumns = `id, user_id, fraud_score, credit_score, risk_level, eligible_amount, insights, flags, valid_documents, created_at`

func (r *PGRepo) Append(ctx context.Context, a Assessment) error {
	const query = `
INSERT INTO assessments (` + assessmentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	flags := a.Flags
	if flags == nil {
		flags = []string{}
	}
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		a.ID,
		a.UserID,
		a.FraudScore,
		a.CreditScore,
		string(a.RiskLevel),
		a.EligibleAmount,
		a.Insights,
		flagsJSON,
		a.ValidDocuments,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (r *PGRepo) Latest(ctx context.Context, userID string) (Assessment, error) {
	const query = `
SELECT ` + assessmentColumns + `
FROM assessments
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return Assessment{}, fmt.Errorf("latest assessment: %w", err)
	}
	defer rows.Close()
	list, err := scanAssessments(rows)
	if err != nil {
		return Assessment{}, err
	}
	if len(list) == 0 {
		return Assessment{}, ErrNotFound
	}
	return list[0], nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Assessment, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + assessmentColumns + `
FROM assessments
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()
	return scanAssessments(rows)
}

func scanAssessments(rows *sql.Rows) ([]Assessment, error) {
	out := []Assessment{}
	for rows.Next() {
		var a Assessment
		var risk string
		var flagsJSON []byte
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.FraudScore,
			&a.CreditScore,
			&risk,
			&a.EligibleAmount,
			&a.Insights,
			&flagsJSON,
			&a.ValidDocuments,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.RiskLevel = scoring.RiskLevel(risk)
		if len(flagsJSON) > 0 {
			if err := json.Unmarshal(flagsJSON, &a.Flags); err != nil {
				return nil, fmt.Errorf("assessment %s flags: %w", a.ID, err)
			}
		}
		if a.Flags == nil {
			a.Flags = []string{}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
