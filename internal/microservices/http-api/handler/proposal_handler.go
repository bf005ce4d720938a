package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"proposalhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	svc service.ProposalService
}

func NewProposalHandler(svc service.ProposalService) *ProposalHandler {
	return &ProposalHandler{svc: svc}
}

func (h *ProposalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}

// List returns the caller's proposals with follow-up badges. Admins may pass
// ?all=true to see every representative's proposals.
func (h *ProposalHandler) List(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	repID := userID.(string)
	if c.Query("all") == "true" {
		if role, _ := c.Get("role"); role == "admin" {
			repID = ""
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	proposals, total, err := h.svc.List(ctx, repID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     total,
		"page":      page,
	})
}

// Get returns one proposal with its follow-up badge
func (h *ProposalHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	proposal, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProposalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "proposal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, proposal)
}
