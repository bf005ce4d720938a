package service

import (
	"context"
	"errors"
	"fmt"

	"proposalhub/internal/microservices/http-api/models"
	"proposalhub/internal/microservices/http-api/repository"
	"proposalhub/internal/push"
)

var ErrInvalidEndpoint = errors.New("endpoint is required")

// PushDispatcher is the fan-out used for registration test sends.
type PushDispatcher interface {
	Dispatch(ctx context.Context, userID string, payload push.Payload) ([]push.Result, error)
}

type PushSubscriptionService interface {
	Subscribe(ctx context.Context, sub *models.PushSubscription) error
	Unsubscribe(ctx context.Context, userID, endpoint string) error
	List(ctx context.Context, userID string) ([]models.PushSubscription, error)
	SendTest(ctx context.Context, userID string) ([]push.Result, error)
}

type pushSubscriptionService struct {
	repo       repository.PushSubscriptionRepository
	dispatcher PushDispatcher
}

func NewPushSubscriptionService(repo repository.PushSubscriptionRepository, dispatcher PushDispatcher) PushSubscriptionService {
	return &pushSubscriptionService{repo: repo, dispatcher: dispatcher}
}

// Subscribe registers a device endpoint. A missing transport tag is filled
// from the endpoint shape so every new row carries an explicit transport.
func (s *pushSubscriptionService) Subscribe(ctx context.Context, sub *models.PushSubscription) error {
	if sub.Endpoint == "" {
		return ErrInvalidEndpoint
	}
	if sub.Transport == "" {
		sub.Transport = push.DetectTransport(*sub)
	}
	return s.repo.Upsert(ctx, sub)
}

func (s *pushSubscriptionService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return ErrInvalidEndpoint
	}
	return s.repo.DeleteByEndpoint(ctx, userID, endpoint)
}

func (s *pushSubscriptionService) List(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	return s.repo.GetByUser(ctx, userID)
}

// SendTest pushes a probe message to every device of the user and returns
// the raw per-subscription outcomes so the client can show which device
// failed.
func (s *pushSubscriptionService) SendTest(ctx context.Context, userID string) ([]push.Result, error) {
	if s.dispatcher == nil {
		return nil, errors.New("push delivery is not configured")
	}
	results, err := s.dispatcher.Dispatch(ctx, userID, push.Payload{
		Title: "Test Notification",
		Body:  "Push notifications are working.",
		URL:   "/notifications",
	})
	if err != nil {
		return nil, fmt.Errorf("test dispatch: %w", err)
	}
	return results, nil
}
