package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"proposalhub/internal/followup"
	"proposalhub/internal/microservices/http-api/handler"
	"proposalhub/internal/microservices/http-api/models"
	"proposalhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICE ---

type MockFollowUpService struct {
	mock.Mock
}

func (m *MockFollowUpService) Schedule(ctx context.Context, proposalID, representativeID string, date time.Time, notes string) error {
	args := m.Called(ctx, proposalID, representativeID, date, notes)
	return args.Error(0)
}

func (m *MockFollowUpService) Complete(ctx context.Context, proposalID, representativeID string, notes string) error {
	args := m.Called(ctx, proposalID, representativeID, notes)
	return args.Error(0)
}

func (m *MockFollowUpService) Status(ctx context.Context, proposalID string) (*service.FollowUpStatus, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FollowUpStatus), args.Error(1)
}

func (m *MockFollowUpService) History(ctx context.Context, proposalID string) ([]models.FollowUpLog, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FollowUpLog), args.Error(1)
}

// --- SETUP ---

func mockAuthMiddleware(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "rep-1")
		c.Set("role", role)
		c.Next()
	}
}

func setupFollowUpRouter(mockService *MockFollowUpService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	h := handler.NewFollowUpHandler(mockService)

	rg := r.Group("/api/proposals")
	rg.Use(mockAuthMiddleware("representative"))
	h.RegisterRoutes(rg)
	return r
}

// --- TESTS ---

func TestFollowUpHandler_Schedule(t *testing.T) {
	mockService := new(MockFollowUpService)
	r := setupFollowUpRouter(mockService)

	t.Run("Success", func(t *testing.T) {
		expectedDate := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
		mockService.On("Schedule", mock.Anything, "prop-1", "rep-1", expectedDate, "call buyer").
			Return(nil).Once()

		body, _ := json.Marshal(map[string]string{
			"scheduled_date": "2030-06-01",
			"notes":          "call buyer",
		})
		req, _ := http.NewRequest(http.MethodPost, "/api/proposals/prop-1/follow-up", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("BadDateFormat", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"scheduled_date": "06/01/2030"})
		req, _ := http.NewRequest(http.MethodPost, "/api/proposals/prop-1/follow-up", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MissingDate", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/proposals/prop-1/follow-up", bytes.NewReader([]byte("{}")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("PastDate", func(t *testing.T) {
		mockService.On("Schedule", mock.Anything, "prop-1", "rep-1", mock.Anything, "").
			Return(service.ErrPastDate).Once()

		body, _ := json.Marshal(map[string]string{"scheduled_date": "2020-01-01"})
		req, _ := http.NewRequest(http.MethodPost, "/api/proposals/prop-1/follow-up", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ClosedProposal", func(t *testing.T) {
		mockService.On("Schedule", mock.Anything, "prop-closed", "rep-1", mock.Anything, "").
			Return(service.ErrProposalClosed).Once()

		body, _ := json.Marshal(map[string]string{"scheduled_date": "2030-06-01"})
		req, _ := http.NewRequest(http.MethodPost, "/api/proposals/prop-closed/follow-up", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestFollowUpHandler_Complete(t *testing.T) {
	mockService := new(MockFollowUpService)
	r := setupFollowUpRouter(mockService)

	t.Run("Success", func(t *testing.T) {
		mockService.On("Complete", mock.Anything, "prop-2", "rep-1", "visited office").
			Return(nil).Once()

		body, _ := json.Marshal(map[string]string{"notes": "visited office"})
		req, _ := http.NewRequest(http.MethodPost, "/api/proposals/prop-2/follow-up/complete", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyBodyAllowed", func(t *testing.T) {
		mockService.On("Complete", mock.Anything, "prop-2", "rep-1", "").
			Return(nil).Once()

		req, _ := http.NewRequest(http.MethodPost, "/api/proposals/prop-2/follow-up/complete", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService.On("Complete", mock.Anything, "prop-x", "rep-1", "").
			Return(service.ErrProposalNotFound).Once()

		req, _ := http.NewRequest(http.MethodPost, "/api/proposals/prop-x/follow-up/complete", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFollowUpHandler_Status(t *testing.T) {
	mockService := new(MockFollowUpService)
	r := setupFollowUpRouter(mockService)

	t.Run("Success", func(t *testing.T) {
		mockService.On("Status", mock.Anything, "prop-3").Return(&service.FollowUpStatus{
			ProposalID:  "prop-3",
			MissedCount: 2,
			Badge:       followup.Badge{Tier: followup.TierOverdueWarning, Label: "2 missed"},
		}, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/proposals/prop-3/follow-up", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, "prop-3", response["proposal_id"])
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService.On("Status", mock.Anything, "prop-x").
			Return(nil, service.ErrProposalNotFound).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/proposals/prop-x/follow-up", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFollowUpHandler_History(t *testing.T) {
	mockService := new(MockFollowUpService)
	r := setupFollowUpRouter(mockService)

	entries := []models.FollowUpLog{
		{ID: 1, ProposalID: "prop-4", ActionType: models.ActionScheduled},
		{ID: 2, ProposalID: "prop-4", ActionType: models.ActionCompleted},
	}
	mockService.On("History", mock.Anything, "prop-4").Return(entries, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/proposals/prop-4/follow-up/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response["history"], 2)
}
