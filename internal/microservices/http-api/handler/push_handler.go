package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"proposalhub/internal/microservices/http-api/dto"
	"proposalhub/internal/microservices/http-api/models"
	"proposalhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type PushHandler struct {
	svc            service.PushSubscriptionService
	vapidPublicKey string
}

func NewPushHandler(svc service.PushSubscriptionService, vapidPublicKey string) *PushHandler {
	return &PushHandler{svc: svc, vapidPublicKey: vapidPublicKey}
}

func (h *PushHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/subscriptions", h.Subscribe)
	rg.DELETE("/subscriptions", h.Unsubscribe)
	rg.GET("/subscriptions", h.List)
	rg.GET("/vapid-public-key", h.VapidPublicKey)
	rg.POST("/test", h.SendTest)
}

// Subscribe registers a device endpoint for the authenticated user
func (h *PushHandler) Subscribe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := &models.PushSubscription{
		UserID:    userID.(string),
		Endpoint:  req.Endpoint,
		P256dh:    req.P256dh,
		Auth:      req.Auth,
		Transport: req.Transport,
		UserAgent: req.UserAgent,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Subscribe(ctx, sub); err != nil {
		if errors.Is(err, service.ErrInvalidEndpoint) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subscription": sub})
}

// Unsubscribe removes one of the caller's device endpoints
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Unsubscribe(ctx, userID.(string), req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns the caller's registered devices
func (h *PushHandler) List(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	subs, err := h.svc.List(ctx, userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// VapidPublicKey returns the key browsers need to create a web push subscription
func (h *PushHandler) VapidPublicKey(c *gin.Context) {
	if h.vapidPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "web push is not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.vapidPublicKey})
}

// SendTest pushes a probe message to all of the caller's devices and returns
// the per-device outcome
func (h *PushHandler) SendTest(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	results, err := h.svc.SendTest(ctx, userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
