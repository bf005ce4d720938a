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

const defaultExpoURL = "https://exp.host/--/api/v2/push/send"

// ExpoTransport delivers to the Expo push relay, which forwards to the
// native push services on the app's behalf.
type ExpoTransport struct {
	apiURL     string
	httpClient *http.Client
}

func NewExpoTransport() *ExpoTransport {
	return &ExpoTransport{
		apiURL: defaultExpoURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (t *ExpoTransport) Name() string {
	return models.TransportRelayPush
}

type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type expoResponse struct {
	Data []struct {
		Status  string `json:"status"` // "ok" or "error"
		Message string `json:"message"`
		Details struct {
			Error string `json:"error"` // e.g. "DeviceNotRegistered"
		} `json:"details"`
	} `json:"data"`
}

func (t *ExpoTransport) Send(ctx context.Context, sub models.PushSubscription, payload Payload) error {
	data := payload.Data
	if payload.URL != "" {
		if data == nil {
			data = map[string]string{}
		}
		data["url"] = payload.URL
	}

	reqBody, err := json.Marshal([]expoMessage{{
		To:    sub.Endpoint,
		Title: payload.Title,
		Body:  payload.Body,
		Data:  data,
	}})
	if err != nil {
		return fmt.Errorf("marshal expo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("build expo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send expo push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("expo status %d", resp.StatusCode)
	}

	var expoResp expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&expoResp); err != nil {
		return fmt.Errorf("decode expo response: %w", err)
	}
	if len(expoResp.Data) == 0 {
		return nil
	}

	ticket := expoResp.Data[0]
	if ticket.Status != "error" {
		return nil
	}
	if ticket.Details.Error == "DeviceNotRegistered" {
		return fmt.Errorf("expo DeviceNotRegistered: %w", ErrEndpointGone)
	}
	return fmt.Errorf("expo error: %s", ticket.Message)
}
