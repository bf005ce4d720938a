package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"proposalhub/internal/microservices/http-api/models"
	"proposalhub/internal/microservices/http-api/repository"
)

// unreadCountTTL bounds staleness of the cached unread counter when an
// invalidation is missed.
const unreadCountTTL = 60 * time.Second

// FeedPublisher pushes a freshly created notification to the recipient's
// live connections. Nil-safe at the service level so the HTTP API can run
// without the websocket feed.
type FeedPublisher interface {
	Publish(userID string, notification models.Notification)
}

type NotificationService interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetUnread(ctx context.Context, userID string) ([]models.Notification, error)
	List(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo   repository.NotificationRepository
	cache  *redis.Client
	feed   FeedPublisher
	logger *slog.Logger
}

// NewNotificationService wires the notification read/write paths. cache and
// feed may be nil; the service then skips count caching and live publishing.
func NewNotificationService(repo repository.NotificationRepository, cache *redis.Client, feed FeedPublisher, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, cache: cache, feed: feed, logger: logger}
}

func unreadCountKey(userID string) string {
	return "notif:unread:" + userID
}

func (s *notificationService) Create(ctx context.Context, notification *models.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.invalidateCount(ctx, notification.UserID)
	if s.feed != nil {
		s.feed.Publish(notification.UserID, *notification)
	}
	return nil
}

func (s *notificationService) GetUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetUnreadByUser(ctx, userID)
}

func (s *notificationService) List(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListByUser(ctx, userID, page, pageSize)
}

// CountUnread serves the badge counter, cached briefly in Redis since every
// page load asks for it.
func (s *notificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, unreadCountKey(userID)).Result()
		if err == nil {
			if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				return count, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("unread count cache read failed", "error", err)
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, unreadCountKey(userID), count, unreadCountTTL).Err(); err != nil {
			s.logger.Warn("unread count cache write failed", "error", err)
		}
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	// verify the notification belongs to the caller before touching it
	notifications, err := s.repo.GetUnreadByUser(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	for _, n := range notifications {
		if n.ID == notificationID {
			found = true
			break
		}
	}
	if !found {
		return errors.New("notification not found or already read")
	}

	if err := s.repo.MarkAsRead(ctx, notificationID); err != nil {
		return err
	}
	s.invalidateCount(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateCount(ctx, userID)
	return nil
}

func (s *notificationService) invalidateCount(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		s.logger.Warn("unread count cache invalidation failed", "user_id", userID, "error", err)
	}
}
