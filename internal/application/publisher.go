package application

import (
	"context"

	"go.uber.org/zap"

	"rateboard-service/internal/domain"
)

// publishState tracks one publish invocation. States are never retried and
// Done is reached exactly once per invocation, whatever the stage outcomes.
type publishState string

const (
	stateIdle         publishState = "idle"
	stateRendering    publishState = "rendering"
	stateRendered     publishState = "rendered"
	stateRenderFailed publishState = "render_failed"
	stateSending      publishState = "sending"
	stateSyncing      publishState = "syncing"
	stateRecording    publishState = "recording"
	stateDone         publishState = "done"
)

// SyncReport is the per-key outcome of the external rate sync plus the
// classifier's skip reasons.
type SyncReport struct {
	Sent    []RateValue `json:"sent"`
	Failed  []RateValue `json:"failed"`
	Skipped []string    `json:"skipped"`
}

// PublishResult is the structured outcome handed to callers so partial
// success stays distinguishable from total failure.
type PublishResult struct {
	GroupSlug      string     `json:"group"`
	Rendered       bool       `json:"rendered"`
	Sent           bool       `json:"sent"`
	Response       string     `json:"response,omitempty"`
	Caption        string     `json:"caption,omitempty"`
	Sync           SyncReport `json:"sync"`
	FinalizationID string     `json:"finalization_id,omitempty"`
	NewlyIncluded  int        `json:"newly_included"`
}

type PublishService struct {
	groups        GroupRepo
	quotes        QuoteRepo
	finalizations FinalizationRepo
	uow           UnitOfWork
	renderer      BoardRenderer
	dispatcher    MessageDispatcher
	syncer        RateSyncer
	lock          PublishLock

	clock            Clock
	log              *zap.Logger
	captionCfg       CaptionConfig
	buttons          [][]Button
	allowRebroadcast bool
}

type Option func(*PublishService)

func WithClock(c Clock) Option           { return func(s *PublishService) { s.clock = c } }
func WithLock(l PublishLock) Option      { return func(s *PublishService) { s.lock = l } }
func WithButtons(b [][]Button) Option    { return func(s *PublishService) { s.buttons = b } }
func WithCaption(c CaptionConfig) Option { return func(s *PublishService) { s.captionCfg = c } }
func WithRebroadcast(allow bool) Option  { return func(s *PublishService) { s.allowRebroadcast = allow } }
func WithLogger(log *zap.Logger) Option  { return func(s *PublishService) { s.log = log } }

func NewPublishService(
	groups GroupRepo,
	quotes QuoteRepo,
	finalizations FinalizationRepo,
	uow UnitOfWork,
	renderer BoardRenderer,
	dispatcher MessageDispatcher,
	syncer RateSyncer,
	opts ...Option,
) *PublishService {
	s := &PublishService{
		groups:           groups,
		quotes:           quotes,
		finalizations:    finalizations,
		uow:              uow,
		renderer:         renderer,
		dispatcher:       dispatcher,
		syncer:           syncer,
		lock:             NoopLock{},
		allowRebroadcast: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Publish runs the full pipeline for one group: resolve pending, assemble the
// snapshot, render, dispatch, sync rates, record the audit row. Failures in
// render, dispatch and sync are isolated and logged; only a storage fault
// aborts the run with an error.
func (s *PublishService) Publish(ctx context.Context, slug, destination, notes string) (PublishResult, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return PublishResult{}, err
	}
	log := s.log.With(zap.String("group", group.Slug), zap.String("destination", destination))

	ok, err := s.lock.TryAcquire(ctx, group.ID)
	if err != nil {
		return PublishResult{}, err
	}
	if !ok {
		return PublishResult{}, ErrPublishInFlight
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), group.ID); err != nil {
			log.Warn("publish lock release failed", zap.Error(err))
		}
	}()

	pending, err := s.ResolvePending(ctx, group)
	if err != nil {
		return PublishResult{}, err
	}
	if len(pending) == 0 {
		return PublishResult{}, ErrNothingPending
	}
	newly := 0
	for _, pq := range pending {
		if pq.Pending {
			newly++
		}
	}
	if newly == 0 && !s.allowRebroadcast {
		return PublishResult{}, ErrNothingPending
	}

	carried, err := s.finalizations.CarriedEntries(ctx, group.ID)
	if err != nil {
		return PublishResult{}, err
	}
	snapshot := AssembleSnapshot(pending, carried)

	result := PublishResult{GroupSlug: group.Slug, NewlyIncluded: newly}
	state := stateIdle
	advance := func(next publishState) {
		log.Info("publish state", zap.String("from", string(state)), zap.String("to", string(next)))
		state = next
	}

	ts := s.clock.Now()

	advance(stateRendering)
	image, renderErr := s.renderer.Render(ctx, group, snapshot, ts)
	if renderErr != nil {
		advance(stateRenderFailed)
		log.Error("board render failed", zap.Error(renderErr))
		result.Response = renderErr.Error()
	} else {
		advance(stateRendered)
		result.Rendered = true
	}

	if result.Rendered {
		advance(stateSending)
		caption := buildCaption(group, snapshot, ts, s.captionCfg)
		sent, resp := s.dispatcher.SendPhoto(ctx, destination, image, caption, s.buttons)
		result.Sent = sent
		result.Response = resp
		result.Caption = caption
		if !sent {
			log.Warn("board dispatch failed", zap.String("response", resp))
		}
	}

	advance(stateSyncing)
	rateSet := domain.ClassifyRates(ratedQuotes(snapshot))
	outcome := s.syncer.Sync(ctx, rateSet.Rates)
	result.Sync = SyncReport{Sent: outcome.Sent, Failed: outcome.Failed, Skipped: rateSet.Skipped}
	log.Info("rate sync finished",
		zap.Int("sent", len(outcome.Sent)),
		zap.Int("failed", len(outcome.Failed)),
		zap.Int("skipped", len(rateSet.Skipped)),
	)

	advance(stateRecording)
	fid, recErr := s.record(ctx, group, destination, notes, snapshot, result)
	result.FinalizationID = fid

	advance(stateDone)
	if recErr != nil {
		log.Error("finalization record failed", zap.Error(recErr))
		return result, recErr
	}
	return result, nil
}

// record persists the audit trail in a single transaction: one finalization
// row, then one link per newly included snapshot item. Earlier stage failures
// never roll it back; only a storage fault aborts.
func (s *PublishService) record(
	ctx context.Context,
	group domain.Group,
	destination, notes string,
	snapshot []SnapshotItem,
	result PublishResult,
) (string, error) {
	f := domain.Finalization{
		GroupID:     group.ID,
		MessageSent: result.Sent,
		Response:    result.Response,
		Notes:       notes,
	}
	if result.Sent {
		f.Destination = destination
		f.Caption = result.Caption
	}

	var id string
	err := s.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		id, err = s.finalizations.Create(txCtx, f)
		if err != nil {
			return err
		}
		for _, it := range snapshot {
			if !it.NewlyIncluded {
				continue
			}
			link := domain.FinalizedLink{FinalizationID: id, QuoteEntryID: it.Entry.ID}
			if err := s.finalizations.CreateLink(txCtx, link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Finalizations exposes the recent audit records of a group.
func (s *PublishService) Finalizations(ctx context.Context, slug string, limit int) ([]domain.Finalization, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	return s.finalizations.ListByGroup(ctx, group.ID, limit)
}

// Snapshot resolves the pending set and assembles the current board without
// publishing; the dashboard read path.
func (s *PublishService) Snapshot(ctx context.Context, slug string) (domain.Group, []PendingQuote, []SnapshotItem, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Group{}, nil, nil, err
	}
	pending, err := s.ResolvePending(ctx, group)
	if err != nil {
		return domain.Group{}, nil, nil, err
	}
	carried, err := s.finalizations.CarriedEntries(ctx, group.ID)
	if err != nil {
		return domain.Group{}, nil, nil, err
	}
	return group, pending, AssembleSnapshot(pending, carried), nil
}
