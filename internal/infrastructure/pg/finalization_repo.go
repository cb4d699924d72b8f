package pg

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rateboard-service/internal/domain"
	"rateboard-service/internal/infrastructure/logx"
)

type FinalizationRepo struct{ db *DB }

func NewFinalizationRepo(db *DB) *FinalizationRepo { return &FinalizationRepo{db: db} }

func (r *FinalizationRepo) LinkedEntryIDs(ctx context.Context, groupID string) (map[string]bool, error) {
	const q = `
        SELECT fl.quote_entry_id::text
        FROM finalized_links fl
        JOIN finalizations f ON f.id = fl.finalization_id
        WHERE f.group_id = $1`
	rows, err := r.db.q(ctx).Query(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *FinalizationRepo) CarriedEntries(ctx context.Context, groupID string) (map[string]domain.QuoteEntry, error) {
	const q = `
        SELECT DISTINCT ON (qe.instrument_id)
               qe.id::text, qe.instrument_id::text, qe.price::float8,
               qe.cash_price::float8, qe.account_price::float8,
               COALESCE(qe.notes, ''), qe.created_at
        FROM finalized_links fl
        JOIN finalizations f ON f.id = fl.finalization_id
        JOIN quote_entries qe ON qe.id = fl.quote_entry_id
        WHERE f.group_id = $1
        ORDER BY qe.instrument_id, f.finalized_at DESC`
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

func (r *FinalizationRepo) Create(ctx context.Context, f domain.Finalization) (string, error) {
	id := uuid.NewString()
	const ins = `
        INSERT INTO finalizations(id, group_id, destination, message_sent, caption, dispatch_response, notes)
        VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))`
	log := logx.L().With(
		zap.String("repo", "finalization"),
		zap.String("operation", "Create"),
		zap.String("id", id),
		zap.String("group_id", f.GroupID),
		zap.Bool("message_sent", f.MessageSent),
	)
	tag, err := r.db.q(ctx).Exec(ctx, ins,
		id, f.GroupID, f.Destination, f.MessageSent, f.Caption, f.Response, f.Notes)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return "", err
	}
	log.Info("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return id, nil
}

func (r *FinalizationRepo) CreateLink(ctx context.Context, l domain.FinalizedLink) error {
	const ins = `
        INSERT INTO finalized_links(finalization_id, quote_entry_id)
        VALUES ($1, $2)`
	_, err := r.db.q(ctx).Exec(ctx, ins, l.FinalizationID, l.QuoteEntryID)
	return err
}

func (r *FinalizationRepo) ListByGroup(ctx context.Context, groupID string, limit int) ([]domain.Finalization, error) {
	const q = `
        SELECT id::text, group_id::text, COALESCE(destination, ''), message_sent,
               COALESCE(caption, ''), COALESCE(dispatch_response, ''), COALESCE(notes, ''),
               finalized_at
        FROM finalizations
        WHERE group_id = $1
        ORDER BY finalized_at DESC
        LIMIT $2`
	rows, err := r.db.q(ctx).Query(ctx, q, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Finalization
	for rows.Next() {
		var f domain.Finalization
		if err := rows.Scan(
			&f.ID, &f.GroupID, &f.Destination, &f.MessageSent,
			&f.Caption, &f.Response, &f.Notes, &f.FinalizedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
