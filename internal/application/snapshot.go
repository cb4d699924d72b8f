package application

import (
	"context"
	"sort"

	"rateboard-service/internal/domain"
)

// PendingQuote is one instrument with its latest entry and the derived
// pending flag. "Pending" is never stored; it is recomputed from the
// finalized-link history on every resolution.
type PendingQuote struct {
	Instrument domain.Instrument
	Entry      domain.QuoteEntry
	Pending    bool
}

// SnapshotItem is one renderable row of the board. NewlyIncluded marks the
// entries that will receive a finalized link when the run is recorded;
// carried-forward rows keep the link from their earlier finalization.
type SnapshotItem struct {
	Instrument    domain.Instrument
	Entry         domain.QuoteEntry
	NewlyIncluded bool
}

// ResolvePending computes the pending set for a group. An instrument's latest
// entry is pending iff no finalized link of the group references it.
// Instruments without any entry are excluded. Absence of history is a valid
// state and yields all-latest-pending, not an error.
func (s *PublishService) ResolvePending(ctx context.Context, group domain.Group) ([]PendingQuote, error) {
	instruments, err := s.groups.ListInstruments(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	latest, err := s.quotes.LatestEntries(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	linked, err := s.finalizations.LinkedEntryIDs(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	out := make([]PendingQuote, 0, len(instruments))
	for _, in := range instruments {
		entry, ok := latest[in.ID]
		if !ok {
			continue
		}
		out = append(out, PendingQuote{
			Instrument: in,
			Entry:      entry,
			Pending:    !linked[entry.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Instrument.Name < out[j].Instrument.Name
	})
	return out, nil
}

// AssembleSnapshot merges the pending set with carried-forward entries into
// one complete board: exactly one row per instrument that has ever had an
// entry. Pending rows use the latest entry and are newly included; otherwise
// the carried-forward entry from the group's finalization history is reused;
// an instrument never included before falls back to its latest entry without
// producing a new link.
func AssembleSnapshot(pending []PendingQuote, carried map[string]domain.QuoteEntry) []SnapshotItem {
	items := make([]SnapshotItem, 0, len(pending))
	for _, pq := range pending {
		switch {
		case pq.Pending:
			items = append(items, SnapshotItem{Instrument: pq.Instrument, Entry: pq.Entry, NewlyIncluded: true})
		default:
			entry, ok := carried[pq.Instrument.ID]
			if !ok {
				entry = pq.Entry
			}
			items = append(items, SnapshotItem{Instrument: pq.Instrument, Entry: entry})
		}
	}
	return items
}

func ratedQuotes(items []SnapshotItem) []domain.RatedQuote {
	out := make([]domain.RatedQuote, len(items))
	for i, it := range items {
		out[i] = domain.RatedQuote{Instrument: it.Instrument, Entry: it.Entry}
	}
	return out
}
