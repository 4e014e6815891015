package consent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Grant(ctx context.Context, c Consent) (Consent, error) {
	const query = `
INSERT INTO consents (user_id, granted_at, ip_address, user_agent)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET user_id = consents.user_id
RETURNING user_id, granted_at, ip_address, user_agent`

	var out Consent
	err := r.DB.QueryRowContext(ctx, query, c.UserID, c.GrantedAt, c.IPAddress, c.UserAgent).
		Scan(&out.UserID, &out.GrantedAt, &out.IPAddress, &out.UserAgent)
	if err != nil {
		return Consent{}, fmt.Errorf("grant consent: %w", err)
	}
	return out, nil
}

func (r *PGRepo) Get(ctx context.Context, userID string) (Consent, error) {
	const query = `
SELECT user_id, granted_at, ip_address, user_agent
FROM consents
WHERE user_id = $1`

	var out Consent
	err := r.DB.QueryRowContext(ctx, query, userID).
		Scan(&out.UserID, &out.GrantedAt, &out.IPAddress, &out.UserAgent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Consent{}, ErrNotFound
		}
		return Consent{}, fmt.Errorf("get consent: %w", err)
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
