package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Failure describes an unsuccessful render attempt. Status is zero when the
// renderer was never reached (network error).
type Failure struct {
	Status int
	Reason string
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("render failed (status %d): %s", f.Status, f.Reason)
	}
	return fmt.Sprintf("render failed: %s", f.Reason)
}

// Client talks to an external PlantUML server. It performs no retries;
// retry policy belongs to callers.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Render encodes source and fetches the rendered image bytes from the
// PlantUML server. Any failure (network, non-2xx, empty body) comes back as
// a *Failure with the upstream status captured.
func (c *Client) Render(ctx context.Context, source string, format Format) ([]byte, error) {
	token := Encode(source)
	url := fmt.Sprintf("%s/%s/%s", c.BaseURL, format, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, &Failure{Reason: "build request: " + err.Error()}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &Failure{Reason: "renderer unreachable: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Failure{Status: resp.StatusCode, Reason: "read body: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Failure{Status: resp.StatusCode, Reason: fmt.Sprintf("renderer returned status %d", resp.StatusCode)}
	}
	if len(body) == 0 {
		return nil, &Failure{Status: resp.StatusCode, Reason: "renderer returned empty body"}
	}

	return body, nil
}
