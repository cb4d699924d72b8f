package pg

import (
	"context"

	"github.com/google/uuid"

	"rateboard-service/internal/domain"
)

type QuoteRepo struct{ db *DB }

func NewQuoteRepo(db *DB) *QuoteRepo { return &QuoteRepo{db: db} }

func (r *QuoteRepo) LatestEntries(ctx context.Context, groupID string) (map[string]domain.QuoteEntry, error) {
	const q = `
        SELECT DISTINCT ON (qe.instrument_id)
               qe.id::text, qe.instrument_id::text, qe.price::float8,
               qe.cash_price::float8, qe.account_price::float8,
               COALESCE(qe.notes, ''), qe.created_at
        FROM quote_entries qe
        JOIN instruments i ON i.id = qe.instrument_id
        WHERE i.group_id = $1
        ORDER BY qe.instrument_id, qe.created_at DESC, qe.id DESC`
	rows, err := r.db.q(ctx).Query(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]domain.QuoteEntry{}
	for rows.Next() {
		var e domain.QuoteEntry
		if err := rows.Scan(
			&e.ID, &e.InstrumentID, &e.Price,
			&e.CashPrice, &e.AccountPrice, &e.Notes, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out[e.InstrumentID] = e
	}
	return out, rows.Err()
}

func (r *QuoteRepo) Append(ctx context.Context, e domain.QuoteEntry) (string, error) {
	id := uuid.NewString()
	const ins = `
        INSERT INTO quote_entries(id, instrument_id, price, cash_price, account_price, notes)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`
	_, err := r.db.q(ctx).Exec(ctx, ins,
		id, e.InstrumentID, e.Price, e.CashPrice, e.AccountPrice, e.Notes)
	if err != nil {
		return "", err
	}
	return id, nil
}
