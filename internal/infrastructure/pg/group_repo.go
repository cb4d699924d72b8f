package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rateboard-service/internal/application"
	"rateboard-service/internal/domain"
)

type GroupRepo struct{ db *DB }

func NewGroupRepo(db *DB) *GroupRepo { return &GroupRepo{db: db} }

func (r *GroupRepo) GetBySlug(ctx context.Context, slug string) (domain.Group, error) {
	const q = `
        SELECT id::text, name, slug, kind, created_at
        FROM groups WHERE slug=$1`
	var out domain.Group
	err := r.db.q(ctx).QueryRow(ctx, q, slug).
		Scan(&out.ID, &out.Name, &out.Slug, (*string)(&out.Kind), &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Group{}, application.ErrNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	return out, nil
}

func (r *GroupRepo) ListInstruments(ctx context.Context, groupID string) ([]domain.Instrument, error) {
	const q = `
        SELECT id::text, group_id::text, name, slug, base_code, quote_code, trade_side, created_at
        FROM instruments WHERE group_id=$1 ORDER BY name`
	rows, err := r.db.q(ctx).Query(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Instrument
	for rows.Next() {
		var in domain.Instrument
		if err := rows.Scan(
			&in.ID, &in.GroupID, &in.Name, &in.Slug,
			&in.BaseCode, &in.QuoteCode, (*string)(&in.Side), &in.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *GroupRepo) CreateGroup(ctx context.Context, g domain.Group) (string, error) {
	id := uuid.NewString()
	const ins = `
        INSERT INTO groups(id, name, slug, kind)
        VALUES ($1, $2, $3, $4)`
	if _, err := r.db.q(ctx).Exec(ctx, ins, id, g.Name, g.Slug, string(g.Kind)); err != nil {
		return "", err
	}
	return id, nil
}

func (r *GroupRepo) CreateInstrument(ctx context.Context, in domain.Instrument) (string, error) {
	id := uuid.NewString()
	const ins = `
        INSERT INTO instruments(id, group_id, name, slug, base_code, quote_code, trade_side)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.q(ctx).Exec(ctx, ins,
		id, in.GroupID, in.Name, in.Slug, in.BaseCode, in.QuoteCode, string(in.Side))
	if err != nil {
		return "", err
	}
	return id, nil
}
