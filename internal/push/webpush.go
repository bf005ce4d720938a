package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"proposalhub/internal/microservices/http-api/models"
)

const (
	// webPushTTL is the time-to-live for browser push notifications (24 hours)
	webPushTTL = 60 * 60 * 24
)

// WebPushTransport delivers to browser push endpoints with a VAPID-signed
// payload. The service worker on the other end renders the notification and
// opens Payload.URL on click.
type WebPushTransport struct {
	subscriber      string // contact email for VAPID
	vapidPublicKey  string
	vapidPrivateKey string
}

func NewWebPushTransport(subscriber, publicKey, privateKey string) *WebPushTransport {
	return &WebPushTransport{
		subscriber:      subscriber,
		vapidPublicKey:  publicKey,
		vapidPrivateKey: privateKey,
	}
}

func (t *WebPushTransport) Name() string {
	return models.TransportWebPush
}

func (t *WebPushTransport) Send(ctx context.Context, sub models.PushSubscription, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal web push payload: %w", err)
	}

	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, s, &webpush.Options{
		Subscriber:      t.subscriber, // webpush-go adds mailto: automatically
		VAPIDPublicKey:  t.vapidPublicKey,
		VAPIDPrivateKey: t.vapidPrivateKey,
		TTL:             webPushTTL,
	})
	if err != nil {
		return fmt.Errorf("send web push: %w", err)
	}
	defer resp.Body.Close()

	// 410 Gone or 404 means the browser dropped the subscription
	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("web push status %d: %w", resp.StatusCode, ErrEndpointGone)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("web push status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
