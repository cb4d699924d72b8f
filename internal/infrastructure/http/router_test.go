package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"rateboard-service/internal/application"
	"rateboard-service/internal/infrastructure/cache"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Test_healthz(t *testing.T) {
	svc, _ := NewInMemoryService()
	h := NewRouter(NewServer(svc, nil))

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func Test_readyz_FailingCheck(t *testing.T) {
	svc, _ := NewInMemoryService()
	srv := NewServer(svc, nil)
	srv.SetReadyCheck(func(ctx context.Context) error { return errors.New("db down") })
	h := NewRouter(srv)

	rec := do(t, h, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"code":503,"message":"db not ready"}`, rec.Body.String())
}

func Test_GetPending(t *testing.T) {
	svc, _ := NewInMemoryService()
	h := NewRouter(NewServer(svc, nil))

	rec := do(t, h, http.MethodGet, "/groups/gbp/pending", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pendingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "gbp", resp.Group)
	require.Len(t, resp.Pending, 1)
	require.True(t, resp.Pending[0].Pending)
	require.Equal(t, "GBP/IRR", resp.Pending[0].Pair)
	require.Len(t, resp.Snapshot, 1)
	require.True(t, resp.Snapshot[0].NewlyIncluded)
}

func Test_GetPending_UnknownGroup(t *testing.T) {
	svc, _ := NewInMemoryService()
	h := NewRouter(NewServer(svc, nil))

	rec := do(t, h, http.MethodGet, "/groups/nope/pending", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_PostPublish(t *testing.T) {
	svc, finals := NewInMemoryService()
	h := NewRouter(NewServer(svc, nil))

	rec := do(t, h, http.MethodPost, "/groups/gbp/publish", `{"destination":"@board","notes":"evening run"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result application.PublishResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.True(t, result.Rendered)
	require.True(t, result.Sent)
	require.NotEmpty(t, result.FinalizationID)
	require.Equal(t, 1, result.NewlyIncluded)
	require.Len(t, finals.links, 1)
}

func Test_PostPublish_Validation(t *testing.T) {
	svc, _ := NewInMemoryService()
	h := NewRouter(NewServer(svc, nil))

	rec := do(t, h, http.MethodPost, "/groups/gbp/publish", `{`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/groups/gbp/publish", `{"notes":"missing destination"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_PostPublish_Conflict(t *testing.T) {
	svc, _ := NewInMemoryService(application.WithLock(heldLock{}))
	h := NewRouter(NewServer(svc, nil))

	rec := do(t, h, http.MethodPost, "/groups/gbp/publish", `{"destination":"@board"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func Test_GetFinalizations(t *testing.T) {
	svc, _ := NewInMemoryService()
	h := NewRouter(NewServer(svc, nil))

	rec := do(t, h, http.MethodPost, "/groups/gbp/publish", `{"destination":"@board"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/groups/gbp/finalizations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []finalizationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	require.Equal(t, "@board", out[0].Destination)
	require.True(t, out[0].MessageSent)
}

func Test_GetFinalizations_LimitValidation(t *testing.T) {
	svc, _ := NewInMemoryService()
	h := NewRouter(NewServer(svc, nil))

	rec := do(t, h, http.MethodGet, "/groups/gbp/finalizations?limit=0", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/groups/gbp/finalizations?limit=notanumber", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type mapCache struct {
	views map[string]cache.SnapshotView
	hits  int
}

func (m *mapCache) Get(slug string) (cache.SnapshotView, bool) {
	v, ok := m.views[slug]
	if ok {
		m.hits++
	}
	return v, ok
}
func (m *mapCache) Set(slug string, v cache.SnapshotView) { m.views[slug] = v }
func (m *mapCache) Invalidate(slug string)                { delete(m.views, slug) }

func Test_GetPending_CachedAndInvalidatedOnPublish(t *testing.T) {
	svc, _ := NewInMemoryService()
	mc := &mapCache{views: map[string]cache.SnapshotView{}}
	h := NewRouter(NewServer(svc, mc))

	rec := do(t, h, http.MethodGet, "/groups/gbp/pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, mc.views, "gbp")

	rec = do(t, h, http.MethodGet, "/groups/gbp/pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, mc.hits)

	rec = do(t, h, http.MethodPost, "/groups/gbp/publish", `{"destination":"@board"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, mc.views, "gbp")
}

type heldLock struct{}

func (heldLock) TryAcquire(context.Context, string) (bool, error) { return false, nil }
func (heldLock) Release(context.Context, string) error            { return nil }
