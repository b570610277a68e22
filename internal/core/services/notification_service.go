package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"
)

// NotificationService posts events to a webhook relay (the relay fans out to
// email / push). Delivery is best effort: failures are logged and never
// surfaced to business flows. Implements Notifier.
type NotificationService struct {
	webhookURL string
	secret     string
	enabled    bool
	client     *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	webhookURL := os.Getenv("NOTIFY_WEBHOOK_URL")
	return &NotificationService{
		webhookURL: webhookURL,
		secret:     os.Getenv("NOTIFY_WEBHOOK_SECRET"),
		enabled:    webhookURL != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// Notify dispatches the event asynchronously and returns immediately.
func (s *NotificationService) Notify(recipientID uint, event string, payload map[string]interface{}) {
	if !s.enabled {
		return
	}
	go s.post(recipientID, event, payload)
}

func (s *NotificationService) post(recipientID uint, event string, payload map[string]interface{}) {
	body, err := json.Marshal(map[string]interface{}{
		"recipient_id": recipientID,
		"event":        event,
		"payload":      payload,
		"sent_at":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("⚠️ Notification marshal failed (%s): %v", event, err)
		return
	}

	req, err := http.NewRequest("POST", s.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		log.Printf("⚠️ Notification request failed (%s): %v", event, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		req.Header.Set("Authorization", "Bearer "+s.secret)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("⚠️ Notification delivery failed (%s): %v", event, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️ Notification webhook returned %d for event %s", resp.StatusCode, event)
	}
}
