package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rateboard-service/internal/application"
	"rateboard-service/internal/domain"
)

// HTTPRenderer asks an external render service to draw the board image.
type HTTPRenderer struct {
	BaseURL string
	HTTP    *http.Client
}

var _ application.BoardRenderer = (*HTTPRenderer)(nil)

func NewHTTP(baseURL string, timeout time.Duration) *HTTPRenderer {
	return &HTTPRenderer{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type renderItem struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Pair         string   `json:"pair"`
	Side         string   `json:"side"`
	Price        float64  `json:"price"`
	CashPrice    *float64 `json:"cash_price,omitempty"`
	AccountPrice *float64 `json:"account_price,omitempty"`
}

type renderRequest struct {
	Group     string       `json:"group"`
	Kind      string       `json:"kind"`
	Items     []renderItem `json:"items"`
	Timestamp time.Time    `json:"timestamp"`
}

func (r *HTTPRenderer) Render(ctx context.Context, group domain.Group, items []application.SnapshotItem, ts time.Time) ([]byte, error) {
	if r.BaseURL == "" {
		return nil, fmt.Errorf("render: base url is not configured")
	}

	payload := renderRequest{
		Group:     group.Slug,
		Kind:      string(group.Kind),
		Timestamp: ts.UTC(),
	}
	for _, it := range items {
		base, quote := it.Instrument.Pair()
		payload.Items = append(payload.Items, renderItem{
			Name:         it.Instrument.Name,
			Slug:         it.Instrument.Slug,
			Pair:         base + "/" + quote,
			Side:         string(it.Instrument.Side),
			Price:        it.Entry.Price,
			CashPrice:    it.Entry.CashPrice,
			AccountPrice: it.Entry.AccountPrice,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("render: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("render: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := r.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render: status %d", resp.StatusCode)
	}
	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("render: read image: %w", err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("render: empty image")
	}
	return image, nil
}
