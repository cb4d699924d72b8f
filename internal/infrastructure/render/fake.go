package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"rateboard-service/internal/application"
	"rateboard-service/internal/domain"
)

// FakeRenderer produces a deterministic textual stand-in for the board image.
// Used in development and wherever a real render service is not available.
type FakeRenderer struct{}

var _ application.BoardRenderer = (*FakeRenderer)(nil)

func (FakeRenderer) Render(_ context.Context, group domain.Group, items []application.SnapshotItem, ts time.Time) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "board %s (%s) @ %s\n", group.Slug, group.Kind, ts.UTC().Format(time.RFC3339))
	for _, it := range items {
		base, quote := it.Instrument.Pair()
		fmt.Fprintf(&b, "%s %s/%s %s %.2f\n",
			it.Instrument.Name, base, quote, it.Instrument.Side, it.Entry.Price)
	}
	return b.Bytes(), nil
}
