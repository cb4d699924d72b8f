package render_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rateboard-service/internal/application"
	"rateboard-service/internal/domain"
	"rateboard-service/internal/infrastructure/render"
)

func sampleSnapshot() (domain.Group, []application.SnapshotItem) {
	group := domain.Group{ID: "g-1", Name: "Pound", Slug: "gbp", Kind: domain.GroupKindCategory}
	items := []application.SnapshotItem{
		{
			Instrument: domain.Instrument{
				ID: "in-a", GroupID: "g-1", Name: "Pound account buy", Slug: "pound-account-buy",
				BaseCode: "GBP", QuoteCode: "IRR", Side: domain.TradeSideBuy,
			},
			Entry:         domain.QuoteEntry{ID: "qe-a1", InstrumentID: "in-a", Price: 163000},
			NewlyIncluded: true,
		},
	}
	return group, items
}

func Test_HTTPRenderer_PostsSnapshot(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	group, items := sampleSnapshot()
	r := render.NewHTTP(srv.URL, 2*time.Second)
	image, err := r.Render(context.Background(), group, items, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), image)
	require.Equal(t, "/render", gotPath)
	require.Equal(t, "gbp", gotBody["group"])
	renderedItems := gotBody["items"].([]any)
	require.Len(t, renderedItems, 1)
	first := renderedItems[0].(map[string]any)
	require.Equal(t, "GBP/IRR", first["pair"])
	require.Equal(t, 163000.0, first["price"])
}

func Test_HTTPRenderer_Non200IsError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	group, items := sampleSnapshot()
	r := render.NewHTTP(srv.URL, 2*time.Second)
	_, err := r.Render(context.Background(), group, items, time.Now())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func Test_FakeRenderer_Deterministic(t *testing.T) {
	t.Parallel()
	group, items := sampleSnapshot()
	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	var f render.FakeRenderer
	a, err := f.Render(context.Background(), group, items, ts)
	require.NoError(t, err)
	b, err := f.Render(context.Background(), group, items, ts)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Contains(t, string(a), "Pound account buy")
}
