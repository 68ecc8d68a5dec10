package narrative

import (
	"context"
	"fmt"
	"time"

	"Resona/internal/domain/models"
	"Resona/internal/domain/service"
	xhttp "Resona/pkg/http"
)

const maxAttempts = 3

// Client talks to an external narrative service that turns an insight
// summary into a short human-readable blurb. Optional: when the base
// URL is empty the insights use case simply skips narratives.
type Client struct {
	baseURL string
	client  *xhttp.Client
}

// NewClient builds an HTTP narrative client with the given base URL and timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type narrativeRequest struct {
	TodayCount   int    `json:"todayCount"`
	MostFrequent string `json:"mostFrequent"`
	PeakHour     string `json:"peakHour"`
	Frequency    string `json:"frequency"`
}

type narrativeResponse struct {
	Text string `json:"text"`
}

// Generate implements service.NarrativeGenerator.
func (c *Client) Generate(ctx context.Context, summary models.InsightSummary) (string, error) {
	if c.client == nil || c.baseURL == "" {
		return "", fmt.Errorf("narrative client not initialized")
	}
	payload := narrativeRequest{
		TodayCount:   summary.TodayCount,
		MostFrequent: summary.MostFrequentText,
		PeakHour:     summary.PeakHour,
		Frequency:    summary.Frequency,
	}
	var resp narrativeResponse
	if err := c.postJSONWithRetry(ctx, "/narrative", payload, &resp, maxAttempts); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + path,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

func (c *Client) postJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return c.postJSON(ctx, path, payload, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = c.postJSON(ctx, path, payload, dest)
		if err == nil {
			return nil
		}
		// simple backoff
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

var _ service.NarrativeGenerator = (*Client)(nil)
