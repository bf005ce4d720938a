package dto

// SubscribeRequest registers a device endpoint for push delivery. For web
// push the endpoint is the browser subscription URL and the key fields are
// required; for native and relay tokens only the endpoint carries meaning.
type SubscribeRequest struct {
	Endpoint  string `json:"endpoint" binding:"required"`
	P256dh    string `json:"p256dh"`
	Auth      string `json:"auth"`
	Transport string `json:"transport"`
	UserAgent string `json:"user_agent"`
}

// UnsubscribeRequest removes one of the caller's device endpoints.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}
