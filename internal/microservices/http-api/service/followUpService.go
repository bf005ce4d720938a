package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proposalhub/internal/followup"
	"proposalhub/internal/microservices/http-api/models"
	"proposalhub/internal/microservices/http-api/repository"
)

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrProposalClosed   = errors.New("proposal is no longer active")
	ErrPastDate         = errors.New("follow-up date cannot be in the past")
)

// FollowUpStatus is the read-model for one proposal's follow-up state.
type FollowUpStatus struct {
	ProposalID       string         `json:"proposal_id"`
	NextFollowUpDate *time.Time     `json:"next_follow_up_date"`
	MissedCount      int            `json:"missed_follow_up_count"`
	Badge            followup.Badge `json:"badge"`
}

type FollowUpService interface {
	Schedule(ctx context.Context, proposalID, representativeID string, date time.Time, notes string) error
	Complete(ctx context.Context, proposalID, representativeID string, notes string) error
	Status(ctx context.Context, proposalID string) (*FollowUpStatus, error)
	History(ctx context.Context, proposalID string) ([]models.FollowUpLog, error)
}

type followUpService struct {
	proposals repository.ProposalRepository
	logs      repository.FollowUpLogRepository
}

func NewFollowUpService(proposals repository.ProposalRepository, logs repository.FollowUpLogRepository) FollowUpService {
	return &followUpService{proposals: proposals, logs: logs}
}

// Schedule sets the next follow-up date for a proposal and records the
// action. Scheduling for a past day is rejected; today is allowed.
func (s *followUpService) Schedule(ctx context.Context, proposalID, representativeID string, date time.Time, notes string) error {
	p, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return ErrProposalNotFound
	}
	if !p.IsActive() {
		return ErrProposalClosed
	}

	day := followup.Midnight(date)
	if day.Before(followup.Midnight(time.Now())) {
		return ErrPastDate
	}

	if err := s.proposals.SetSchedule(ctx, proposalID, day); err != nil {
		return fmt.Errorf("schedule follow-up: %w", err)
	}

	entry := &models.FollowUpLog{
		ProposalID:       proposalID,
		RepresentativeID: representativeID,
		ActionType:       models.ActionScheduled,
		ScheduledDate:    day,
		Notes:            notes,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("record scheduled follow-up: %w", err)
	}
	return nil
}

// Complete marks the pending follow-up as done: the schedule is cleared, the
// last contact date moves to today, and a completed entry lands in the log.
// When no follow-up was scheduled the completion is still recorded, dated
// today, so ad-hoc customer contact shows up in the history.
func (s *followUpService) Complete(ctx context.Context, proposalID, representativeID string, notes string) error {
	p, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return ErrProposalNotFound
	}

	now := time.Now()
	today := followup.Midnight(now)

	scheduled := today
	if p.NextFollowUpDate != nil {
		scheduled = *p.NextFollowUpDate
	}

	if err := s.proposals.CompleteFollowUp(ctx, proposalID, today); err != nil {
		return fmt.Errorf("complete follow-up: %w", err)
	}

	entry := &models.FollowUpLog{
		ProposalID:       proposalID,
		RepresentativeID: representativeID,
		ActionType:       models.ActionCompleted,
		ScheduledDate:    scheduled,
		CompletedAt:      &now,
		Notes:            notes,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("record completed follow-up: %w", err)
	}
	return nil
}

func (s *followUpService) Status(ctx context.Context, proposalID string) (*FollowUpStatus, error) {
	p, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, ErrProposalNotFound
	}

	return &FollowUpStatus{
		ProposalID:       p.ID,
		NextFollowUpDate: p.NextFollowUpDate,
		MissedCount:      p.MissedFollowUpCount,
		Badge:            followup.Classify(p.NextFollowUpDate, p.MissedFollowUpCount, time.Now()),
	}, nil
}

func (s *followUpService) History(ctx context.Context, proposalID string) ([]models.FollowUpLog, error) {
	if _, err := s.proposals.GetByID(ctx, proposalID); err != nil {
		return nil, ErrProposalNotFound
	}
	return s.logs.ListByProposal(ctx, proposalID)
}
