package application

import (
	"context"
	"time"

	"rateboard-service/internal/domain"
)

type GroupRepo interface {
	GetBySlug(ctx context.Context, slug string) (domain.Group, error)
	ListInstruments(ctx context.Context, groupID string) ([]domain.Instrument, error)
}

type QuoteRepo interface {
	// LatestEntries returns the newest entry per instrument of the group,
	// keyed by instrument ID. Instruments without entries are absent.
	LatestEntries(ctx context.Context, groupID string) (map[string]domain.QuoteEntry, error)
	Append(ctx context.Context, e domain.QuoteEntry) (string, error)
}

type FinalizationRepo interface {
	// LinkedEntryIDs returns every quote entry ID referenced by any
	// finalized link of the group. An entry in this set is not pending.
	LinkedEntryIDs(ctx context.Context, groupID string) (map[string]bool, error)
	// CarriedEntries returns, per instrument of the group, the most recently
	// linked entry, keyed by instrument ID.
	CarriedEntries(ctx context.Context, groupID string) (map[string]domain.QuoteEntry, error)
	Create(ctx context.Context, f domain.Finalization) (string, error)
	CreateLink(ctx context.Context, l domain.FinalizedLink) error
	ListByGroup(ctx context.Context, groupID string, limit int) ([]domain.Finalization, error)
}

// Button is one inline keyboard button attached to the published board.
type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// BoardRenderer turns an assembled snapshot into image bytes.
type BoardRenderer interface {
	Render(ctx context.Context, group domain.Group, items []SnapshotItem, ts time.Time) ([]byte, error)
}

// MessageDispatcher delivers the rendered board. Ordinary delivery failure is
// reported through the boolean, never as an error.
type MessageDispatcher interface {
	SendPhoto(ctx context.Context, destination string, image []byte, caption string, buttons [][]Button) (bool, string)
}

// RateValue is one key/value pair attempted against the external rate API.
type RateValue struct {
	Key   domain.RateKey `json:"currency"`
	Value float64        `json:"rate"`
}

// SyncOutcome aggregates per-key attempts of one sync run.
type SyncOutcome struct {
	Sent   []RateValue `json:"sent"`
	Failed []RateValue `json:"failed"`
}

type RateSyncer interface {
	Sync(ctx context.Context, rates map[domain.RateKey]float64) SyncOutcome
}

// PublishLock serializes publish invocations per group.
type PublishLock interface {
	// TryAcquire returns true if the group lock was free and is now held.
	TryAcquire(ctx context.Context, groupID string) (bool, error)
	Release(ctx context.Context, groupID string) error
}

// NoopLock never blocks; it reproduces the unguarded reference behavior.
type NoopLock struct{}

func (NoopLock) TryAcquire(context.Context, string) (bool, error) { return true, nil }
func (NoopLock) Release(context.Context, string) error            { return nil }
