package httpserver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rateboard-service/internal/application"
	"rateboard-service/internal/domain"
)

var _ application.GroupRepo = (*memGroupRepo)(nil)
var _ application.QuoteRepo = (*memQuoteRepo)(nil)
var _ application.FinalizationRepo = (*memFinalizationRepo)(nil)

type memGroupRepo struct {
	groups      map[string]domain.Group // by slug
	instruments map[string][]domain.Instrument
}

func (m *memGroupRepo) GetBySlug(_ context.Context, slug string) (domain.Group, error) {
	g, ok := m.groups[slug]
	if !ok {
		return domain.Group{}, application.ErrNotFound
	}
	return g, nil
}

func (m *memGroupRepo) ListInstruments(_ context.Context, groupID string) ([]domain.Instrument, error) {
	return m.instruments[groupID], nil
}

type memQuoteRepo struct {
	latest map[string]map[string]domain.QuoteEntry // groupID -> instrumentID -> entry
}

func (m *memQuoteRepo) LatestEntries(_ context.Context, groupID string) (map[string]domain.QuoteEntry, error) {
	out := map[string]domain.QuoteEntry{}
	for id, e := range m.latest[groupID] {
		out[id] = e
	}
	return out, nil
}

func (m *memQuoteRepo) Append(_ context.Context, e domain.QuoteEntry) (string, error) {
	for _, byInstrument := range m.latest {
		if _, ok := byInstrument[e.InstrumentID]; ok {
			byInstrument[e.InstrumentID] = e
			return e.ID, nil
		}
	}
	return "", application.ErrNotFound
}

type memFinalizationRepo struct {
	finalizations   []domain.Finalization
	links           []domain.FinalizedLink
	entryInstrument map[string]string // entryID -> instrumentID
	entries         map[string]domain.QuoteEntry
	groupOf         map[string]string // finalizationID -> groupID
}

func (m *memFinalizationRepo) LinkedEntryIDs(_ context.Context, groupID string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, l := range m.links {
		if m.groupOf[l.FinalizationID] == groupID {
			out[l.QuoteEntryID] = true
		}
	}
	return out, nil
}

func (m *memFinalizationRepo) CarriedEntries(_ context.Context, groupID string) (map[string]domain.QuoteEntry, error) {
	// Finalizations are appended in order, so later links win.
	out := map[string]domain.QuoteEntry{}
	for _, l := range m.links {
		if m.groupOf[l.FinalizationID] != groupID {
			continue
		}
		entry, ok := m.entries[l.QuoteEntryID]
		if !ok {
			continue
		}
		out[m.entryInstrument[l.QuoteEntryID]] = entry
	}
	return out, nil
}

func (m *memFinalizationRepo) Create(_ context.Context, f domain.Finalization) (string, error) {
	id := fmt.Sprintf("fin-%d", len(m.finalizations)+1)
	f.ID = id
	m.finalizations = append(m.finalizations, f)
	m.groupOf[id] = f.GroupID
	return id, nil
}

func (m *memFinalizationRepo) CreateLink(_ context.Context, l domain.FinalizedLink) error {
	m.links = append(m.links, l)
	return nil
}

func (m *memFinalizationRepo) ListByGroup(_ context.Context, groupID string, limit int) ([]domain.Finalization, error) {
	var out []domain.Finalization
	for _, f := range m.finalizations {
		if f.GroupID == groupID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalizedAt.After(out[j].FinalizedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubRenderer struct{ fail bool }

func (r stubRenderer) Render(context.Context, domain.Group, []application.SnapshotItem, time.Time) ([]byte, error) {
	if r.fail {
		return nil, fmt.Errorf("render unavailable")
	}
	return []byte("png"), nil
}

type stubDispatcher struct{}

func (stubDispatcher) SendPhoto(context.Context, string, []byte, string, [][]application.Button) (bool, string) {
	return true, `{"ok":true}`
}

type stubSyncer struct{}

func (stubSyncer) Sync(_ context.Context, rates map[domain.RateKey]float64) application.SyncOutcome {
	var out application.SyncOutcome
	for _, key := range domain.RateKeys {
		if v, ok := rates[key]; ok {
			out.Sent = append(out.Sent, application.RateValue{Key: key, Value: v})
		}
	}
	return out
}

// NewInMemoryService wires a PublishService over in-memory stores seeded with
// one pound group carrying a single account-tariff instrument.
func NewInMemoryService(opts ...application.Option) (*application.PublishService, *memFinalizationRepo) {
	group := domain.Group{ID: "g-1", Name: "Pound", Slug: "gbp", Kind: domain.GroupKindCategory}
	instrument := domain.Instrument{
		ID: "in-1", GroupID: "g-1", Name: "Pound account buy", Slug: "pound-account-buy",
		BaseCode: "GBP", QuoteCode: "IRR", Side: domain.TradeSideBuy,
	}
	entry := domain.QuoteEntry{
		ID: "qe-1", InstrumentID: "in-1", Price: 163000,
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}

	groups := &memGroupRepo{
		groups:      map[string]domain.Group{"gbp": group},
		instruments: map[string][]domain.Instrument{"g-1": {instrument}},
	}
	quotes := &memQuoteRepo{latest: map[string]map[string]domain.QuoteEntry{
		"g-1": {"in-1": entry},
	}}
	finals := &memFinalizationRepo{
		entryInstrument: map[string]string{"qe-1": "in-1"},
		entries:         map[string]domain.QuoteEntry{"qe-1": entry},
		groupOf:         map[string]string{},
	}

	svc := application.NewPublishService(
		groups, quotes, finals,
		application.NoopUoW{},
		stubRenderer{}, stubDispatcher{}, stubSyncer{},
		opts...,
	)
	return svc, finals
}
