package push

import (
	"context"
	"errors"
	"strings"

	"proposalhub/internal/microservices/http-api/models"
)

// ErrEndpointGone marks a recipient the transport reported as permanently
// invalid (device unregistered, endpoint gone). The dispatcher deletes the
// subscription when a send fails with this error; any other failure is
// treated as transient and the subscription is kept.
var ErrEndpointGone = errors.New("push endpoint permanently invalid")

// Payload is the notification content handed to every transport. Each
// transport maps it onto its own wire format.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	URL   string            `json:"url,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Transport delivers one payload to one subscription. Exactly one attempt
// per call; retries are the next dispatch's problem.
type Transport interface {
	Name() string
	Send(ctx context.Context, sub models.PushSubscription, payload Payload) error
}

// DetectTransport resolves which transport a subscription belongs to. Rows
// written after the transport tag was introduced carry it explicitly; for
// older rows we fall back to the token-shape heuristic the clients used to
// rely on.
func DetectTransport(sub models.PushSubscription) string {
	if sub.Transport != "" {
		return sub.Transport
	}
	switch {
	case strings.HasPrefix(sub.Endpoint, "ExponentPushToken["):
		return models.TransportRelayPush
	case strings.HasPrefix(sub.Endpoint, "https://"):
		return models.TransportWebPush
	default:
		return models.TransportNativePush
	}
}
