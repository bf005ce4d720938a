package handler

import (
	"context"
	"net/http"
	"time"

	"proposalhub/internal/sweep"

	"github.com/gin-gonic/gin"
)

// SweepHandler exposes manual sweep triggers for admins, mirroring what the
// cron-driven sweeper binary runs on schedule.
type SweepHandler struct {
	sweeper *sweep.Sweeper
	lock    *sweep.Lock
}

func NewSweepHandler(sweeper *sweep.Sweeper, lock *sweep.Lock) *SweepHandler {
	return &SweepHandler{sweeper: sweeper, lock: lock}
}

func (h *SweepHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sweeps/:job", h.Trigger)
	rg.GET("/sweeps/:job", h.State)
}

// Trigger runs one sweep job immediately
func (h *SweepHandler) Trigger(c *gin.Context) {
	job := c.Param("job")
	switch job {
	case sweep.JobFollowUps, sweep.JobReminders, sweep.JobDeadlines:
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown sweep job"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	if h.lock != nil {
		acquired, err := h.lock.Acquire(ctx, job)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !acquired {
			c.JSON(http.StatusConflict, gin.H{"error": "sweep already running"})
			return
		}
		defer h.lock.Release(ctx, job)
	}

	result, err := h.sweeper.Run(ctx, job, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// State returns the last recorded run of one sweep job
func (h *SweepHandler) State(c *gin.Context) {
	job := c.Param("job")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := h.sweeper.State(ctx, job)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recorded runs for job"})
		return
	}

	c.JSON(http.StatusOK, state)
}
