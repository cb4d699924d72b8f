package ratesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rateboard-service/internal/application"
	"rateboard-service/internal/domain"
)

// Client pushes canonical rates to the external rate API. The remote document
// is a flat JSON object keyed by canonical rate key; each POST upserts one key.
type Client struct {
	Endpoint string
	APIKey   string
	HTTP     *http.Client
	Log      *zap.Logger
}

var _ application.RateSyncer = (*Client)(nil)

func New(endpoint, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		Endpoint: endpoint,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: timeout},
		Log:      log,
	}
}

type ratePayload struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
	APIKey   string  `json:"api_key"`
}

// Sync upserts the classified rates, one POST per key, no retries. Keys the
// classifier did not produce are re-posted with their current remote value so
// the remote document always carries all four keys; when the remote document
// cannot be read, only the classified keys are posted.
func (c *Client) Sync(ctx context.Context, rates map[domain.RateKey]float64) application.SyncOutcome {
	var out application.SyncOutcome

	if c.Endpoint == "" || c.APIKey == "" {
		c.Log.Warn("ratesync.not_configured", zap.Error(application.ErrSyncNotConfigured))
		for _, key := range domain.RateKeys {
			v, ok := rates[key]
			if !ok {
				continue
			}
			out.Failed = append(out.Failed, application.RateValue{Key: key, Value: v})
		}
		return out
	}

	existing, fetchErr := c.fetch(ctx)
	if fetchErr != nil {
		c.Log.Warn("ratesync.fetch_failed", zap.Error(fetchErr))
	}

	for _, key := range domain.RateKeys {
		value, classified := rates[key]
		if !classified {
			if fetchErr != nil {
				continue
			}
			value = existing[string(key)]
		}

		rv := application.RateValue{Key: key, Value: value}
		if err := c.post(ctx, key, value); err != nil {
			c.Log.Warn("ratesync.post_failed", zap.String("currency", string(key)), zap.Error(err))
			out.Failed = append(out.Failed, rv)
			continue
		}
		out.Sent = append(out.Sent, rv)
	}
	return out
}

func (c *Client) fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ratesync: create request: %w", err)
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("ratesync: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ratesync: status %d", resp.StatusCode)
	}
	var doc map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("ratesync: decode response: %w", err)
	}
	return doc, nil
}

func (c *Client) post(ctx context.Context, key domain.RateKey, value float64) error {
	body, err := json.Marshal(ratePayload{
		Currency: string(key),
		Rate:     value,
		APIKey:   c.APIKey,
	})
	if err != nil {
		return fmt.Errorf("ratesync: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ratesync: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		return fmt.Errorf("ratesync: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ratesync: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}
