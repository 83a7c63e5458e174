// Package social posts to the user's X account. The API is an opaque HTTP
// collaborator; only the post contract lives here.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Poster publishes a message on behalf of a user.
type Poster interface {
	Post(ctx context.Context, accessToken, text string) error
}

// XClient posts tweets via the X v2 API.
type XClient struct {
	BaseURL string // default https://api.x.com
	HTTP    *http.Client
}

func (c *XClient) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://api.x.com"
}

func (c *XClient) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// Post publishes text with the user's token.
func (c *XClient) Post(ctx context.Context, accessToken, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/2/tweets", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to x: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status code posting to x: %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
