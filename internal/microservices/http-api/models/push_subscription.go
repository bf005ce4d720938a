package models

import "time"

// Push transport tags. Stored at registration time so delivery never has to
// guess the token type from its shape.
const (
	TransportWebPush    = "webPush"    // browser endpoint + VAPID keys
	TransportNativePush = "nativePush" // raw device token, FCM legacy API
	TransportRelayPush  = "relayPush"  // vendor-hosted relay token (Expo)
)

// PushSubscription is one registered delivery endpoint for a user's device
// or browser. A user may hold several at once.
type PushSubscription struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_push_user_endpoint" json:"user_id"`
	Endpoint  string    `gorm:"not null;uniqueIndex:idx_push_user_endpoint" json:"endpoint"`
	P256dh    string    `json:"p256dh,omitempty"` // web push encryption key
	Auth      string    `json:"auth,omitempty"`   // web push auth secret
	Transport string    `json:"transport"`        // webPush, nativePush, relayPush
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
