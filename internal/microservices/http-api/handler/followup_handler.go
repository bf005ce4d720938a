package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"proposalhub/internal/microservices/http-api/dto"
	"proposalhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type FollowUpHandler struct {
	svc service.FollowUpService
}

func NewFollowUpHandler(svc service.FollowUpService) *FollowUpHandler {
	return &FollowUpHandler{svc: svc}
}

func (h *FollowUpHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/follow-up", h.Schedule)
	rg.POST("/:id/follow-up/complete", h.Complete)
	rg.GET("/:id/follow-up", h.Status)
	rg.GET("/:id/follow-up/history", h.History)
}

// Schedule sets the next follow-up date for a proposal
func (h *FollowUpHandler) Schedule(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.ScheduleFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_date must be YYYY-MM-DD"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Schedule(ctx, c.Param("id"), userID.(string), date, req.Notes); err != nil {
		respondFollowUpError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Complete marks the pending follow-up as done
func (h *FollowUpHandler) Complete(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	// notes are optional, an absent body is fine
	var req dto.CompleteFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = dto.CompleteFollowUpRequest{}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Complete(ctx, c.Param("id"), userID.(string), req.Notes); err != nil {
		respondFollowUpError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Status returns the follow-up state and badge for a proposal
func (h *FollowUpHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := h.svc.Status(ctx, c.Param("id"))
	if err != nil {
		respondFollowUpError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// History returns the follow-up audit trail for a proposal
func (h *FollowUpHandler) History(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.svc.History(ctx, c.Param("id"))
	if err != nil {
		respondFollowUpError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func respondFollowUpError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProposalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "proposal not found"})
	case errors.Is(err, service.ErrProposalClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "proposal is no longer active"})
	case errors.Is(err, service.ErrPastDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "follow-up date cannot be in the past"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
