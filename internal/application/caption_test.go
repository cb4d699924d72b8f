package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rateboard-service/internal/domain"
)

func Test_BuildCaption_TemplateSelection(t *testing.T) {
	t.Parallel()
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := CaptionConfig{ContactLines: []string{"Manager +44 000"}, FooterNote: "no transfers without confirmation"}

	tether := buildCaption(domain.Group{Name: "تتر", Slug: "tether"}, nil, ts, cfg)
	require.Contains(t, tether, "تتر")
	require.Contains(t, tether, "Manager +44 000")
	require.Contains(t, tether, "no transfers without confirmation")

	pound := buildCaption(domain.Group{Name: "Pound", Slug: "pound"}, nil, ts, cfg)
	require.Contains(t, pound, "پوند")

	special := buildCaption(
		domain.Group{Name: "Special", Slug: "special-usd", Kind: domain.GroupKindSpecial},
		[]SnapshotItem{{Instrument: domain.Instrument{Name: "USD cash"}}},
		ts, CaptionConfig{},
	)
	require.Contains(t, special, "Special price • USD cash")

	other := buildCaption(domain.Group{Name: "Euro", Slug: "euro"}, nil, ts, CaptionConfig{})
	require.Contains(t, other, "Euro rates")
	require.Contains(t, other, "2025-03-01 12:00")
}
