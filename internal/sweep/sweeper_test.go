package sweep

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"proposalhub/internal/microservices/http-api/models"
	"proposalhub/internal/push"
)

// MockProposalRepository mocks the ProposalRepository interface
type MockProposalRepository struct {
	mock.Mock
}

func (m *MockProposalRepository) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *MockProposalRepository) List(ctx context.Context, representativeID string, page, pageSize int) ([]models.Proposal, int64, error) {
	args := m.Called(ctx, representativeID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Proposal), args.Get(1).(int64), args.Error(2)
}

func (m *MockProposalRepository) FindOverdueFollowUps(ctx context.Context, today time.Time) ([]models.Proposal, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *MockProposalRepository) FindStale(ctx context.Context, before time.Time) ([]models.Proposal, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *MockProposalRepository) FindFollowUpsBetween(ctx context.Context, from, to time.Time) ([]models.Proposal, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *MockProposalRepository) SetSchedule(ctx context.Context, id string, date time.Time) error {
	args := m.Called(ctx, id, date)
	return args.Error(0)
}

func (m *MockProposalRepository) ClearMissedSchedule(ctx context.Context, id string, newMissedCount int) error {
	args := m.Called(ctx, id, newMissedCount)
	return args.Error(0)
}

func (m *MockProposalRepository) CompleteFollowUp(ctx context.Context, id string, contactDate time.Time) error {
	args := m.Called(ctx, id, contactDate)
	return args.Error(0)
}

func (m *MockProposalRepository) StampReminderSent(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockFollowUpLogRepository mocks the FollowUpLogRepository interface
type MockFollowUpLogRepository struct {
	mock.Mock
}

func (m *MockFollowUpLogRepository) Create(ctx context.Context, entry *models.FollowUpLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockFollowUpLogRepository) ListByProposal(ctx context.Context, proposalID string) ([]models.FollowUpLog, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FollowUpLog), args.Error(1)
}

// MockNotificationRepository mocks the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetUnreadByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID int64) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockProfileRepository mocks the ProfileRepository interface
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindAdmins(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

// MockDispatcher mocks the push fan-out
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, userID string, payload push.Payload) ([]push.Result, error) {
	args := m.Called(ctx, userID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]push.Result), args.Error(1)
}

type sweeperFixture struct {
	proposals     *MockProposalRepository
	logs          *MockFollowUpLogRepository
	notifications *MockNotificationRepository
	profiles      *MockProfileRepository
	dispatcher    *MockDispatcher
	sweeper       *Sweeper
}

func newFixture() *sweeperFixture {
	f := &sweeperFixture{
		proposals:     new(MockProposalRepository),
		logs:          new(MockFollowUpLogRepository),
		notifications: new(MockNotificationRepository),
		profiles:      new(MockProfileRepository),
		dispatcher:    new(MockDispatcher),
	}
	f.sweeper = NewSweeper(f.proposals, f.logs, f.notifications, f.profiles, f.dispatcher, nil, slog.Default())
	return f
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRunFollowUps_ProcessesOverdueProposal(t *testing.T) {
	f := newFixture()
	now := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	today := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	overdue := []models.Proposal{{
		ID:                  "prop-x",
		ProposalNo:          "P-2024-001",
		CustomerName:        "Acme Corp",
		Status:              models.StatusSent,
		RepresentativeID:    "rep-1",
		NextFollowUpDate:    datePtr(2024, 1, 1),
		MissedFollowUpCount: 2,
	}}

	f.proposals.On("FindOverdueFollowUps", mock.Anything, today).Return(overdue, nil)
	f.logs.On("Create", mock.Anything, mock.MatchedBy(func(e *models.FollowUpLog) bool {
		return e.ProposalID == "prop-x" &&
			e.ActionType == models.ActionMissed &&
			e.ScheduledDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	})).Return(nil)
	f.proposals.On("ClearMissedSchedule", mock.Anything, "prop-x", 3).Return(nil)
	f.notifications.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ns []models.Notification) bool {
		return len(ns) == 1 && ns[0].UserID == "rep-1" && ns[0].Type == models.NotificationReminder
	})).Return(nil)
	f.profiles.On("FindAdmins", mock.Anything).Return([]models.Profile{{ID: "admin-1", Role: "admin"}}, nil)
	f.notifications.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ns []models.Notification) bool {
		return len(ns) == 1 && ns[0].UserID == "admin-1" && ns[0].Type == models.NotificationSystem
	})).Return(nil)
	f.dispatcher.On("Dispatch", mock.Anything, "rep-1", mock.MatchedBy(func(p push.Payload) bool {
		return p.Title == "Missed Follow-up" && p.URL == "/proposals/prop-x"
	})).Return([]push.Result{{SubscriptionID: 1, Success: true}}, nil)

	result, err := f.sweeper.RunFollowUps(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, []string{"prop-x"}, result.ProcessedIDs)
	assert.Equal(t, 0, result.Skipped)
	f.proposals.AssertExpectations(t)
	f.logs.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
	f.dispatcher.AssertExpectations(t)
}

func TestRunFollowUps_RerunIsIdempotent(t *testing.T) {
	f := newFixture()
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	today := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	// processed proposals no longer carry a date, so a second run sees nothing
	f.proposals.On("FindOverdueFollowUps", mock.Anything, today).Return([]models.Proposal{}, nil)
	f.notifications.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	result, err := f.sweeper.RunFollowUps(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	f.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.proposals.AssertNotCalled(t, "ClearMissedSchedule", mock.Anything, mock.Anything, mock.Anything)
	f.profiles.AssertNotCalled(t, "FindAdmins", mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunFollowUps_SkipsFailedProposalAndContinues(t *testing.T) {
	f := newFixture()
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	overdue := []models.Proposal{
		{ID: "prop-a", ProposalNo: "P-1", RepresentativeID: "rep-1", NextFollowUpDate: datePtr(2024, 1, 2)},
		{ID: "prop-b", ProposalNo: "P-2", RepresentativeID: "rep-2", NextFollowUpDate: datePtr(2024, 1, 3)},
	}
	f.proposals.On("FindOverdueFollowUps", mock.Anything, mock.Anything).Return(overdue, nil)
	f.logs.On("Create", mock.Anything, mock.MatchedBy(func(e *models.FollowUpLog) bool {
		return e.ProposalID == "prop-a"
	})).Return(errors.New("insert failed"))
	f.logs.On("Create", mock.Anything, mock.MatchedBy(func(e *models.FollowUpLog) bool {
		return e.ProposalID == "prop-b"
	})).Return(nil)
	f.proposals.On("ClearMissedSchedule", mock.Anything, "prop-b", 1).Return(nil)
	f.notifications.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.profiles.On("FindAdmins", mock.Anything).Return([]models.Profile{}, nil)
	f.dispatcher.On("Dispatch", mock.Anything, "rep-2", mock.Anything).Return(nil, nil)

	result, err := f.sweeper.RunFollowUps(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"prop-b"}, result.ProcessedIDs)
	// the failed proposal must not have its state touched
	f.proposals.AssertNotCalled(t, "ClearMissedSchedule", mock.Anything, "prop-a", mock.Anything)
}

func TestRunFollowUps_SelectionErrorAbortsRun(t *testing.T) {
	f := newFixture()
	f.proposals.On("FindOverdueFollowUps", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	result, err := f.sweeper.RunFollowUps(context.Background(), time.Now())

	assert.Error(t, err)
	assert.Nil(t, result)
	f.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunReminders_NotifiesAndStamps(t *testing.T) {
	f := newFixture()
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	stale := []models.Proposal{{
		ID:               "prop-s",
		ProposalNo:       "P-2024-044",
		CustomerName:     "Globex",
		Status:           models.StatusSent,
		RepresentativeID: "rep-9",
	}}
	f.proposals.On("FindStale", mock.Anything, now.AddDate(0, 0, -5)).Return(stale, nil)
	f.notifications.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ns []models.Notification) bool {
		return len(ns) == 1 && ns[0].UserID == "rep-9" && ns[0].Title == "Reminder: P-2024-044"
	})).Return(nil)
	f.proposals.On("StampReminderSent", mock.Anything, "prop-s", now).Return(nil)
	f.dispatcher.On("Dispatch", mock.Anything, "rep-9", mock.Anything).Return(nil, nil)

	result, err := f.sweeper.RunReminders(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Notified)
	f.proposals.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
}

func TestRunReminders_InsertFailureFailsRun(t *testing.T) {
	f := newFixture()
	now := time.Now()

	stale := []models.Proposal{{ID: "prop-s", RepresentativeID: "rep-9"}}
	f.proposals.On("FindStale", mock.Anything, mock.Anything).Return(stale, nil)
	f.notifications.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	result, err := f.sweeper.RunReminders(context.Background(), now)

	assert.Error(t, err)
	assert.Nil(t, result)
	// no notifications persisted means no stamps either
	f.proposals.AssertNotCalled(t, "StampReminderSent", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDeadlines_NotifiesWithoutMutatingProposals(t *testing.T) {
	f := newFixture()
	now := time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	due := []models.Proposal{{
		ID:               "prop-d",
		ProposalNo:       "P-2024-007",
		CustomerName:     "Initech",
		Status:           models.StatusRevised,
		RepresentativeID: "rep-5",
		NextFollowUpDate: &tomorrow,
	}}
	f.proposals.On("FindFollowUpsBetween", mock.Anything, tomorrow, tomorrow).Return(due, nil)
	f.notifications.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ns []models.Notification) bool {
		return len(ns) == 1 && ns[0].Title == "Follow-up Reminder"
	})).Return(nil)
	f.dispatcher.On("Dispatch", mock.Anything, "rep-5", mock.Anything).Return(nil, nil)

	result, err := f.sweeper.RunDeadlines(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	f.proposals.AssertNotCalled(t, "ClearMissedSchedule", mock.Anything, mock.Anything, mock.Anything)
	f.proposals.AssertNotCalled(t, "CompleteFollowUp", mock.Anything, mock.Anything, mock.Anything)
	f.proposals.AssertNotCalled(t, "StampReminderSent", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_UnknownJob(t *testing.T) {
	f := newFixture()

	result, err := f.sweeper.Run(context.Background(), "vacuum", time.Now())

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "unknown sweep job")
}

func TestRunFollowUps_PushFailureDoesNotAffectResult(t *testing.T) {
	f := newFixture()
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	overdue := []models.Proposal{{
		ID: "prop-x", ProposalNo: "P-1", RepresentativeID: "rep-1",
		NextFollowUpDate: datePtr(2024, 1, 1),
	}}
	f.proposals.On("FindOverdueFollowUps", mock.Anything, mock.Anything).Return(overdue, nil)
	f.logs.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.proposals.On("ClearMissedSchedule", mock.Anything, "prop-x", 1).Return(nil)
	f.notifications.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.profiles.On("FindAdmins", mock.Anything).Return([]models.Profile{}, nil)
	f.dispatcher.On("Dispatch", mock.Anything, "rep-1", mock.Anything).
		Return(nil, errors.New("push service down"))

	result, err := f.sweeper.RunFollowUps(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Notified)
}
