package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rateboard-service/internal/domain"
)

var errStorage = errors.New("storage fault")

type fakeGroupRepo struct {
	groups      map[string]domain.Group
	instruments map[string][]domain.Instrument
}

func (f *fakeGroupRepo) GetBySlug(_ context.Context, slug string) (domain.Group, error) {
	g, ok := f.groups[slug]
	if !ok {
		return domain.Group{}, ErrNotFound
	}
	return g, nil
}

func (f *fakeGroupRepo) ListInstruments(_ context.Context, groupID string) ([]domain.Instrument, error) {
	return f.instruments[groupID], nil
}

type fakeQuoteRepo struct {
	// latest entry per instrument ID, per group ID
	latest map[string]map[string]domain.QuoteEntry
	seq    int
}

func (f *fakeQuoteRepo) LatestEntries(_ context.Context, groupID string) (map[string]domain.QuoteEntry, error) {
	out := map[string]domain.QuoteEntry{}
	for k, v := range f.latest[groupID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeQuoteRepo) Append(_ context.Context, e domain.QuoteEntry) (string, error) {
	f.seq++
	e.ID = fmt.Sprintf("qe-%d", f.seq)
	return e.ID, nil
}

// setLatest replaces the latest entry of an instrument.
func (f *fakeQuoteRepo) setLatest(groupID string, e domain.QuoteEntry) {
	if f.latest == nil {
		f.latest = map[string]map[string]domain.QuoteEntry{}
	}
	if f.latest[groupID] == nil {
		f.latest[groupID] = map[string]domain.QuoteEntry{}
	}
	f.latest[groupID][e.InstrumentID] = e
}

type fakeFinalizationRepo struct {
	finalizations []domain.Finalization
	links         []domain.FinalizedLink
	// entryInstrument maps entry IDs back to instruments for carry-forward.
	entryInstrument map[string]string
	failCreate      bool
	failLink        bool
	seq             int
}

func (f *fakeFinalizationRepo) groupOf(finalizationID string) string {
	for _, fin := range f.finalizations {
		if fin.ID == finalizationID {
			return fin.GroupID
		}
	}
	return ""
}

func (f *fakeFinalizationRepo) LinkedEntryIDs(_ context.Context, groupID string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, l := range f.links {
		if f.groupOf(l.FinalizationID) == groupID {
			out[l.QuoteEntryID] = true
		}
	}
	return out, nil
}

func (f *fakeFinalizationRepo) CarriedEntries(_ context.Context, groupID string) (map[string]domain.QuoteEntry, error) {
	out := map[string]domain.QuoteEntry{}
	// newest finalizations first
	for i := len(f.finalizations) - 1; i >= 0; i-- {
		fin := f.finalizations[i]
		if fin.GroupID != groupID {
			continue
		}
		for _, l := range f.links {
			if l.FinalizationID != fin.ID {
				continue
			}
			instrID := f.entryInstrument[l.QuoteEntryID]
			if _, seen := out[instrID]; !seen {
				out[instrID] = domain.QuoteEntry{ID: l.QuoteEntryID, InstrumentID: instrID}
			}
		}
	}
	return out, nil
}

func (f *fakeFinalizationRepo) Create(_ context.Context, fin domain.Finalization) (string, error) {
	if f.failCreate {
		return "", errStorage
	}
	f.seq++
	fin.ID = fmt.Sprintf("fin-%d", f.seq)
	fin.FinalizedAt = time.Now()
	f.finalizations = append(f.finalizations, fin)
	return fin.ID, nil
}

func (f *fakeFinalizationRepo) CreateLink(_ context.Context, l domain.FinalizedLink) error {
	if f.failLink {
		return errStorage
	}
	for _, existing := range f.links {
		if existing.FinalizationID == l.FinalizationID && existing.QuoteEntryID == l.QuoteEntryID {
			return errStorage
		}
	}
	f.links = append(f.links, l)
	return nil
}

func (f *fakeFinalizationRepo) ListByGroup(_ context.Context, groupID string, limit int) ([]domain.Finalization, error) {
	var out []domain.Finalization
	for i := len(f.finalizations) - 1; i >= 0 && len(out) < limit; i-- {
		if f.finalizations[i].GroupID == groupID {
			out = append(out, f.finalizations[i])
		}
	}
	return out, nil
}

type fakeRenderer struct {
	err   error
	calls int
}

func (f *fakeRenderer) Render(_ context.Context, _ domain.Group, _ []SnapshotItem, _ time.Time) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png"), nil
}

type fakeDispatcher struct {
	success  bool
	response string
	calls    int
	caption  string
}

func (f *fakeDispatcher) SendPhoto(_ context.Context, _ string, _ []byte, caption string, _ [][]Button) (bool, string) {
	f.calls++
	f.caption = caption
	return f.success, f.response
}

type fakeSyncer struct {
	calls []map[domain.RateKey]float64
	fail  bool
}

func (f *fakeSyncer) Sync(_ context.Context, rates map[domain.RateKey]float64) SyncOutcome {
	f.calls = append(f.calls, rates)
	var out SyncOutcome
	for k, v := range rates {
		rv := RateValue{Key: k, Value: v}
		if f.fail {
			out.Failed = append(out.Failed, rv)
		} else {
			out.Sent = append(out.Sent, rv)
		}
	}
	return out
}

type fakeLock struct {
	busy     bool
	acquired int
	released int
}

func (f *fakeLock) TryAcquire(context.Context, string) (bool, error) {
	if f.busy {
		return false, nil
	}
	f.acquired++
	return true, nil
}

func (f *fakeLock) Release(context.Context, string) error {
	f.released++
	return nil
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }
