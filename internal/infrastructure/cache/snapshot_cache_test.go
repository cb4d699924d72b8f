package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rateboard-service/internal/application"
	"rateboard-service/internal/domain"
)

func sampleView(slug string) SnapshotView {
	return SnapshotView{
		Group: domain.Group{ID: "g-" + slug, Slug: slug, Kind: domain.GroupKindCategory},
		Items: []application.SnapshotItem{
			{
				Instrument: domain.Instrument{ID: "in-1", Name: "Pound account buy"},
				Entry:      domain.QuoteEntry{ID: "qe-1", Price: 163000},
			},
		},
	}
}

func TestSnapshotCache_SetAndGet(t *testing.T) {
	c, err := NewSnapshotCache(128, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set("gbp", sampleView("gbp"))
	c.cache.Wait()

	got, ok := c.Get("gbp")
	require.True(t, ok)
	require.Equal(t, "g-gbp", got.Group.ID)
	require.Len(t, got.Items, 1)
}

func TestSnapshotCache_GetMissWhenEmpty(t *testing.T) {
	c, err := NewSnapshotCache(64, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("gbp")
	require.False(t, ok)
}

func TestSnapshotCache_InvalidateDropsOnlyThatGroup(t *testing.T) {
	c, err := NewSnapshotCache(256, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set("gbp", sampleView("gbp"))
	c.Set("tether", sampleView("tether"))
	c.cache.Wait()

	c.Invalidate("gbp")

	_, ok := c.Get("gbp")
	require.False(t, ok)

	got, ok := c.Get("tether")
	require.True(t, ok)
	require.Equal(t, "g-tether", got.Group.ID)
}
