package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"zentrack/internal/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// PushPayload represents the notification payload sent to clients
type PushPayload struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Icon  string                 `json:"icon,omitempty"`
	Tag   string                 `json:"tag,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// sendNotification is swapped out in tests.
var sendNotification func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) = webpush.SendNotification

// GetVapidOptions returns configured VAPID options from environment
func GetVapidOptions() *webpush.Options {
	return &webpush.Options{
		Subscriber:      os.Getenv("VAPID_SUBJECT"),
		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		TTL:             30,
	}
}

// IsWebPushConfigured checks if VAPID keys are configured
func IsWebPushConfigured() bool {
	return os.Getenv("VAPID_PUBLIC_KEY") != "" &&
		os.Getenv("VAPID_PRIVATE_KEY") != "" &&
		os.Getenv("VAPID_SUBJECT") != ""
}

// FanOutReminders delivers the given payload to every stored push
// subscription. A subscription whose endpoint reports 404 or 410 is removed
// from the store; any other delivery failure is logged and skipped so the
// remaining subscriptions still get their notification.
func FanOutReminders(db *sql.DB, payload PushPayload) error {
	if !IsWebPushConfigured() {
		log.Println("Web push not configured - skipping reminder fan-out")
		return nil
	}

	rows, err := db.Query("SELECT user_id, endpoint, p256dh, auth FROM push_subscriptions")
	if err != nil {
		return fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	defer rows.Close()

	// Collect before sending so cleanup deletes don't run against an open
	// result set.
	subs := []models.PushSubscription{}
	for rows.Next() {
		var s models.PushSubscription
		if err := rows.Scan(&s.UserID, &s.Endpoint, &s.P256dh, &s.Auth); err != nil {
			return fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	options := GetVapidOptions()
	successCount := 0
	failCount := 0

	for _, s := range subs {
		subscription := &webpush.Subscription{
			Endpoint: s.Endpoint,
			Keys: webpush.Keys{
				P256dh: s.P256dh,
				Auth:   s.Auth,
			},
		}

		resp, err := sendNotification(payloadJSON, subscription, options)
		if err != nil {
			log.Printf("Failed to send push to user %d: %v", s.UserID, err)
			failCount++
			if resp != nil {
				resp.Body.Close()
			}
			continue
		}
		if resp == nil {
			successCount++
			continue
		}

		// Endpoint permanently gone: drop the subscription so we stop
		// hammering it on every firing.
		if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
			if _, derr := db.Exec("DELETE FROM push_subscriptions WHERE endpoint = ?", s.Endpoint); derr != nil {
				log.Printf("Failed to remove gone subscription for user %d: %v", s.UserID, derr)
			} else {
				log.Printf("Removed gone subscription for user %d", s.UserID)
			}
			failCount++
			resp.Body.Close()
			continue
		}
		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			log.Printf("Push service error for user %d: status=%d body=%s", s.UserID, resp.StatusCode, string(body))
			failCount++
			resp.Body.Close()
			continue
		}
		resp.Body.Close()
		successCount++
	}

	log.Printf("Reminder fan-out: subscriptions=%d, success=%d, failed=%d", len(subs), successCount, failCount)
	return nil
}
