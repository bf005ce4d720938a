package service

import (
	"context"
	"time"

	"proposalhub/internal/followup"
	"proposalhub/internal/microservices/http-api/models"
	"proposalhub/internal/microservices/http-api/repository"
)

// ProposalView is a proposal decorated with its follow-up badge.
type ProposalView struct {
	models.Proposal
	Badge followup.Badge `json:"follow_up_badge"`
}

type ProposalService interface {
	Get(ctx context.Context, id string) (*ProposalView, error)
	List(ctx context.Context, representativeID string, page, pageSize int) ([]ProposalView, int64, error)
}

type proposalService struct {
	repo repository.ProposalRepository
}

func NewProposalService(repo repository.ProposalRepository) ProposalService {
	return &proposalService{repo: repo}
}

func (s *proposalService) Get(ctx context.Context, id string) (*ProposalView, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrProposalNotFound
	}
	return &ProposalView{
		Proposal: *p,
		Badge:    followup.Classify(p.NextFollowUpDate, p.MissedFollowUpCount, time.Now()),
	}, nil
}

func (s *proposalService) List(ctx context.Context, representativeID string, page, pageSize int) ([]ProposalView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	proposals, total, err := s.repo.List(ctx, representativeID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	views := make([]ProposalView, 0, len(proposals))
	for _, p := range proposals {
		views = append(views, ProposalView{
			Proposal: p,
			Badge:    followup.Classify(p.NextFollowUpDate, p.MissedFollowUpCount, now),
		})
	}
	return views, total, nil
}
