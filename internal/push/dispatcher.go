package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"proposalhub/internal/microservices/http-api/models"
)

// SubscriptionStore is the slice of the push-subscription repository the
// dispatcher needs: fetching a user's endpoints and pruning dead ones.
type SubscriptionStore interface {
	GetByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)
	Delete(ctx context.Context, id int64) error
}

// Result is the outcome of one delivery attempt to one subscription.
type Result struct {
	SubscriptionID int64  `json:"subscription_id"`
	Transport      string `json:"transport"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// Dispatcher fans one notification out to every registered device of a user.
// Each subscription gets exactly one attempt; failures never block the other
// sends, and the call as a whole succeeds even when individual sends fail.
// Callers inspect the result list for partial failure.
type Dispatcher struct {
	store      SubscriptionStore
	transports map[string]Transport
	logger     *slog.Logger
}

func NewDispatcher(store SubscriptionStore, logger *slog.Logger, transports ...Transport) *Dispatcher {
	byName := make(map[string]Transport, len(transports))
	for _, t := range transports {
		byName[t.Name()] = t
	}
	return &Dispatcher{
		store:      store,
		transports: byName,
		logger:     logger,
	}
}

// Dispatch sends payload to all of the user's subscriptions concurrently.
// A subscription whose transport reports the endpoint as permanently gone is
// deleted; transient failures are reported in the result and the row kept.
// The returned error is non-nil only when the subscription list itself could
// not be fetched.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, payload Payload) ([]Result, error) {
	subs, err := d.store.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil, nil
	}

	results := make([]Result, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub models.PushSubscription) {
			defer wg.Done()
			results[i] = d.sendOne(ctx, sub, payload)
		}(i, sub)
	}
	wg.Wait()

	return results, nil
}

// SuccessCount tallies the successful sends in a result list.
func SuccessCount(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return n
}

func (d *Dispatcher) sendOne(ctx context.Context, sub models.PushSubscription, payload Payload) Result {
	name := DetectTransport(sub)
	result := Result{SubscriptionID: sub.ID, Transport: name}

	transport, ok := d.transports[name]
	if !ok {
		result.Error = fmt.Sprintf("no transport configured for %q", name)
		d.logger.Warn("push transport missing", "transport", name, "subscription_id", sub.ID)
		return result
	}

	err := transport.Send(ctx, sub, payload)
	if err == nil {
		result.Success = true
		d.logger.Debug("push sent", "transport", name, "subscription_id", sub.ID)
		return result
	}

	result.Error = err.Error()
	if errors.Is(err, ErrEndpointGone) {
		// self-heal: the endpoint will never work again
		if delErr := d.store.Delete(ctx, sub.ID); delErr != nil {
			d.logger.Error("failed to remove dead subscription",
				"subscription_id", sub.ID, "error", delErr)
		} else {
			d.logger.Info("removed dead push subscription",
				"transport", name, "subscription_id", sub.ID)
		}
		return result
	}

	d.logger.Warn("push send failed", "transport", name,
		"subscription_id", sub.ID, "error", err)
	return result
}
