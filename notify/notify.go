// Package notify sends push notifications. Delivery is best effort;
// callers log failures and move on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers one push notification to a device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string) error
}

// FCMSender sends through Firebase Cloud Messaging's HTTP API.
type FCMSender struct {
	ServerKey string
	Endpoint  string // default https://fcm.googleapis.com/fcm/send
	HTTP      *http.Client
}

func (s *FCMSender) endpoint() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return "https://fcm.googleapis.com/fcm/send"
}

func (s *FCMSender) httpClient() *http.Client {
	if s.HTTP != nil {
		return s.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

type fcmMessage struct {
	To           string          `json:"to"`
	Notification fcmNotification `json:"notification"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send pushes one notification.
func (s *FCMSender) Send(ctx context.Context, token, title, body string) error {
	payload, err := json.Marshal(fcmMessage{
		To:           token,
		Notification: fcmNotification{Title: title, Body: body},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "key="+s.ServerKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code sending push notification: %d", resp.StatusCode)
	}
	return nil
}
