package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"rateboard-service/internal/application"
	"rateboard-service/internal/domain"
	"rateboard-service/internal/infrastructure/cache"
)

// snapshotCache is the read-side cache consulted by the pending endpoint.
type snapshotCache interface {
	Get(slug string) (cache.SnapshotView, bool)
	Set(slug string, view cache.SnapshotView)
	Invalidate(slug string)
}

type Server struct {
	svc   *application.PublishService
	cache snapshotCache
	ping  func(ctx context.Context) error
}

func NewServer(svc *application.PublishService, snapshots snapshotCache) *Server {
	return &Server{svc: svc, cache: snapshots}
}

func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type quoteView struct {
	EntryID      string    `json:"entry_id"`
	Instrument   string    `json:"instrument"`
	Slug         string    `json:"slug"`
	Pair         string    `json:"pair"`
	Side         string    `json:"side"`
	Price        float64   `json:"price"`
	CashPrice    *float64  `json:"cash_price,omitempty"`
	AccountPrice *float64  `json:"account_price,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	QuotedAt     time.Time `json:"quoted_at"`
}

type pendingView struct {
	quoteView
	Pending bool `json:"pending"`
}

type snapshotItemView struct {
	quoteView
	NewlyIncluded bool `json:"newly_included"`
}

type pendingResponse struct {
	Group    string             `json:"group"`
	Kind     string             `json:"kind"`
	Pending  []pendingView      `json:"pending"`
	Snapshot []snapshotItemView `json:"snapshot"`
}

type publishRequest struct {
	Destination string `json:"destination"`
	Notes       string `json:"notes"`
}

type finalizationView struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination,omitempty"`
	MessageSent bool      `json:"message_sent"`
	Caption     string    `json:"caption,omitempty"`
	Response    string    `json:"response,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	FinalizedAt time.Time `json:"finalized_at"`
}

func (s *Server) GetPending(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	view, ok := cache.SnapshotView{}, false
	if s.cache != nil {
		view, ok = s.cache.Get(slug)
	}
	if !ok {
		group, pending, items, err := s.svc.Snapshot(r.Context(), slug)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		view = cache.SnapshotView{Group: group, Pending: pending, Items: items}
		if s.cache != nil {
			s.cache.Set(slug, view)
		}
	}

	resp := pendingResponse{
		Group:    view.Group.Slug,
		Kind:     string(view.Group.Kind),
		Pending:  []pendingView{},
		Snapshot: []snapshotItemView{},
	}
	for _, p := range view.Pending {
		resp.Pending = append(resp.Pending, pendingView{
			quoteView: toQuoteView(p.Instrument, p.Entry),
			Pending:   p.Pending,
		})
	}
	for _, it := range view.Items {
		resp.Snapshot = append(resp.Snapshot, snapshotItemView{
			quoteView:     toQuoteView(it.Instrument, it.Entry),
			NewlyIncluded: it.NewlyIncluded,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) PostPublish(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var body publishRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Destination == "" {
		writeError(w, http.StatusBadRequest, "destination is required")
		return
	}

	result, err := s.svc.Publish(r.Context(), slug, body.Destination, body.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if s.cache != nil {
		s.cache.Invalidate(slug)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) GetFinalizations(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			writeError(w, http.StatusBadRequest, "limit must be 1..200")
			return
		}
		limit = n
	}

	records, err := s.svc.Finalizations(r.Context(), slug, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]finalizationView, 0, len(records))
	for _, f := range records {
		out = append(out, finalizationView{
			ID:          f.ID,
			Destination: f.Destination,
			MessageSent: f.MessageSent,
			Caption:     f.Caption,
			Response:    f.Response,
			Notes:       f.Notes,
			FinalizedAt: f.FinalizedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func toQuoteView(in domain.Instrument, e domain.QuoteEntry) quoteView {
	base, quote := in.Pair()
	return quoteView{
		EntryID:      e.ID,
		Instrument:   in.Name,
		Slug:         in.Slug,
		Pair:         base + "/" + quote,
		Side:         string(in.Side),
		Price:        e.Price,
		CashPrice:    e.CashPrice,
		AccountPrice: e.AccountPrice,
		Notes:        e.Notes,
		QuotedAt:     e.CreatedAt,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, "group not found")
	case errors.Is(err, application.ErrPublishInFlight):
		writeError(w, http.StatusConflict, "publish already in flight")
	case errors.Is(err, application.ErrNothingPending):
		writeError(w, http.StatusUnprocessableEntity, "nothing pending")
	default:
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Code: status, Message: msg})
}
