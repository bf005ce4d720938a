package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"proposalhub/internal/microservices/http-api/models"
)

const defaultFCMURL = "https://fcm.googleapis.com/fcm/send"

// FCMTransport delivers to raw device tokens through the FCM legacy HTTP
// endpoint, authenticated with the project server key.
type FCMTransport struct {
	serverKey  string
	apiURL     string
	httpClient *http.Client
}

func NewFCMTransport(serverKey string) *FCMTransport {
	return &FCMTransport{
		serverKey: serverKey,
		apiURL:    defaultFCMURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (t *FCMTransport) Name() string {
	return models.TransportNativePush
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (t *FCMTransport) Send(ctx context.Context, sub models.PushSubscription, payload Payload) error {
	data := payload.Data
	if payload.URL != "" {
		if data == nil {
			data = map[string]string{}
		}
		data["url"] = payload.URL
	}

	reqBody, err := json.Marshal(fcmRequest{
		To:           sub.Endpoint,
		Notification: fcmNotification{Title: payload.Title, Body: payload.Body},
		Data:         data,
	})
	if err != nil {
		return fmt.Errorf("marshal fcm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+t.serverKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send fcm push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fcm status %d", resp.StatusCode)
	}

	var fcmResp fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&fcmResp); err != nil {
		return fmt.Errorf("decode fcm response: %w", err)
	}
	if len(fcmResp.Results) == 0 || fcmResp.Failure == 0 {
		return nil
	}

	// single-token request, so the first result is ours
	switch fcmResp.Results[0].Error {
	case "NotRegistered", "InvalidRegistration":
		return fmt.Errorf("fcm %s: %w", fcmResp.Results[0].Error, ErrEndpointGone)
	default:
		return fmt.Errorf("fcm error: %s", fcmResp.Results[0].Error)
	}
}
