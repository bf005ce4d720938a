package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"proposalhub/internal/followup"
	"proposalhub/internal/microservices/http-api/models"
	"proposalhub/internal/microservices/http-api/repository"
	"proposalhub/internal/push"
)

// Job names, used for locking and run-state bookkeeping.
const (
	JobFollowUps = "follow-ups"
	JobReminders = "reminders"
	JobDeadlines = "deadlines"
)

// staleAfterDays is how long a proposal may sit without activity before the
// reminder job nudges its representative, and also the minimum gap between
// two reminders for the same proposal.
const staleAfterDays = 5

// Dispatcher is the push fan-out the sweeper calls after notifications are
// persisted. Delivery is best-effort; a failed dispatch never affects
// proposal state.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID string, payload push.Payload) ([]push.Result, error)
}

// Result summarizes one sweep run.
type Result struct {
	Job          string    `json:"job"`
	Date         time.Time `json:"date"`
	Processed    int       `json:"processed_count"`
	ProcessedIDs []string  `json:"processed_ids"`
	Skipped      int       `json:"skipped_count"`
	Notified     int       `json:"notified_count"`
}

// Sweeper runs the periodic follow-up reconciliation jobs. Each run is
// stateless; everything it needs comes from the store and the clock.
type Sweeper struct {
	proposals     repository.ProposalRepository
	logs          repository.FollowUpLogRepository
	notifications repository.NotificationRepository
	profiles      repository.ProfileRepository
	dispatcher    Dispatcher // may be nil when push is not configured
	state         StateStore // may be nil; runs are then not recorded
	logger        *slog.Logger
}

func NewSweeper(
	proposals repository.ProposalRepository,
	logs repository.FollowUpLogRepository,
	notifications repository.NotificationRepository,
	profiles repository.ProfileRepository,
	dispatcher Dispatcher,
	state StateStore,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		proposals:     proposals,
		logs:          logs,
		notifications: notifications,
		profiles:      profiles,
		dispatcher:    dispatcher,
		state:         state,
		logger:        logger,
	}
}

// Run executes the named job once.
func (s *Sweeper) Run(ctx context.Context, job string, now time.Time) (*Result, error) {
	switch job {
	case JobFollowUps:
		return s.RunFollowUps(ctx, now)
	case JobReminders:
		return s.RunReminders(ctx, now)
	case JobDeadlines:
		return s.RunDeadlines(ctx, now)
	default:
		return nil, fmt.Errorf("unknown sweep job %q", job)
	}
}

// RunFollowUps reconciles overdue follow-ups: for every active proposal
// whose follow-up date has passed it appends a "missed" log entry, bumps the
// miss counter, clears the schedule, and queues a reminder for the owning
// representative. A store error on a single proposal skips that proposal and
// the run continues. Rerunning the same day is harmless: processed proposals
// no longer carry a date and drop out of the eligible set.
func (s *Sweeper) RunFollowUps(ctx context.Context, now time.Time) (*Result, error) {
	today := followup.Midnight(now)
	s.logger.Info("follow-up sweep starting", "date", today.Format("2006-01-02"))

	overdue, err := s.proposals.FindOverdueFollowUps(ctx, today)
	if err != nil {
		s.recordState(ctx, JobFollowUps, StatusFailed, 0, err)
		return nil, err
	}

	result := &Result{Job: JobFollowUps, Date: today}
	var notifications []models.Notification

	for _, p := range overdue {
		if p.NextFollowUpDate == nil {
			continue // defensive against a racing manual completion
		}
		prior := *p.NextFollowUpDate

		entry := &models.FollowUpLog{
			ProposalID:       p.ID,
			RepresentativeID: p.RepresentativeID,
			ActionType:       models.ActionMissed,
			ScheduledDate:    prior,
			Notes:            fmt.Sprintf("Automatic: follow-up scheduled for %s was missed", prior.Format("2006-01-02")),
		}
		if err := s.logs.Create(ctx, entry); err != nil {
			s.logger.Error("log insert failed, skipping proposal",
				"proposal_no", p.ProposalNo, "error", err)
			result.Skipped++
			continue
		}

		newCount := p.MissedFollowUpCount + 1
		if err := s.proposals.ClearMissedSchedule(ctx, p.ID, newCount); err != nil {
			s.logger.Error("proposal update failed, skipping proposal",
				"proposal_no", p.ProposalNo, "error", err)
			result.Skipped++
			continue
		}

		if p.RepresentativeID != "" {
			proposalID := p.ID
			notifications = append(notifications, models.Notification{
				UserID:     p.RepresentativeID,
				ProposalID: &proposalID,
				Type:       models.NotificationReminder,
				Title:      "Missed Follow-up",
				Message: fmt.Sprintf("Follow-up for proposal %s (%s) was missed. Missed %d times so far.",
					p.ProposalNo, p.CustomerName, newCount),
			})
		}

		result.ProcessedIDs = append(result.ProcessedIDs, p.ID)
		result.Processed++
	}

	// Notification persistence is intentionally outside the per-proposal
	// unit: proposal state already committed above stays committed even if
	// this insert fails.
	if err := s.notifications.CreateBatch(ctx, notifications); err != nil {
		s.logger.Error("notification insert failed", "count", len(notifications), "error", err)
	} else {
		result.Notified = len(notifications)
	}

	if result.Processed > 0 {
		s.notifyAdmins(ctx, result.Processed)
	}

	s.fanOut(ctx, notifications)
	s.recordState(ctx, JobFollowUps, StatusCompleted, result.Processed, nil)

	s.logger.Info("follow-up sweep completed",
		"processed", result.Processed, "skipped", result.Skipped)
	return result, nil
}

// RunReminders nudges representatives about stale proposals: active, older
// than the threshold, and not reminded within it. It stamps
// last_reminder_sent_at so the next run stays quiet for another window.
func (s *Sweeper) RunReminders(ctx context.Context, now time.Time) (*Result, error) {
	cutoff := now.AddDate(0, 0, -staleAfterDays)
	s.logger.Info("reminder sweep starting", "cutoff", cutoff.Format(time.RFC3339))

	stale, err := s.proposals.FindStale(ctx, cutoff)
	if err != nil {
		s.recordState(ctx, JobReminders, StatusFailed, 0, err)
		return nil, err
	}

	result := &Result{Job: JobReminders, Date: followup.Midnight(now)}
	var notifications []models.Notification

	for _, p := range stale {
		if p.RepresentativeID == "" {
			continue
		}
		proposalID := p.ID
		notifications = append(notifications, models.Notification{
			UserID:     p.RepresentativeID,
			ProposalID: &proposalID,
			Type:       models.NotificationReminder,
			Title:      fmt.Sprintf("Reminder: %s", p.ProposalNo),
			Message: fmt.Sprintf("No activity on %s for %d days. Please follow up.",
				p.CustomerName, staleAfterDays),
		})
		result.ProcessedIDs = append(result.ProcessedIDs, p.ID)
		result.Processed++
	}

	if err := s.notifications.CreateBatch(ctx, notifications); err != nil {
		s.recordState(ctx, JobReminders, StatusFailed, result.Processed, err)
		return nil, fmt.Errorf("insert reminder notifications: %w", err)
	}
	result.Notified = len(notifications)

	for _, id := range result.ProcessedIDs {
		if err := s.proposals.StampReminderSent(ctx, id, now); err != nil {
			s.logger.Error("failed to stamp reminder", "proposal_id", id, "error", err)
			result.Skipped++
		}
	}

	s.fanOut(ctx, notifications)
	s.recordState(ctx, JobReminders, StatusCompleted, result.Processed, nil)

	s.logger.Info("reminder sweep completed", "processed", result.Processed)
	return result, nil
}

// RunDeadlines sends a heads-up for follow-ups falling due tomorrow. Pure
// notification; no proposal state is touched, so drafts and repeated runs
// only cost duplicate messages, not state drift.
func (s *Sweeper) RunDeadlines(ctx context.Context, now time.Time) (*Result, error) {
	tomorrow := followup.Midnight(now).AddDate(0, 0, 1)
	s.logger.Info("deadline sweep starting", "date", tomorrow.Format("2006-01-02"))

	due, err := s.proposals.FindFollowUpsBetween(ctx, tomorrow, tomorrow)
	if err != nil {
		s.recordState(ctx, JobDeadlines, StatusFailed, 0, err)
		return nil, err
	}

	result := &Result{Job: JobDeadlines, Date: tomorrow}
	var notifications []models.Notification

	for _, p := range due {
		if p.RepresentativeID == "" {
			continue
		}
		proposalID := p.ID
		notifications = append(notifications, models.Notification{
			UserID:     p.RepresentativeID,
			ProposalID: &proposalID,
			Type:       models.NotificationReminder,
			Title:      "Follow-up Reminder",
			Message: fmt.Sprintf("Proposal %s (%s) is due for follow-up tomorrow!",
				p.ProposalNo, p.CustomerName),
		})
		result.ProcessedIDs = append(result.ProcessedIDs, p.ID)
		result.Processed++
	}

	if err := s.notifications.CreateBatch(ctx, notifications); err != nil {
		s.recordState(ctx, JobDeadlines, StatusFailed, result.Processed, err)
		return nil, fmt.Errorf("insert deadline notifications: %w", err)
	}
	result.Notified = len(notifications)

	s.fanOut(ctx, notifications)
	s.recordState(ctx, JobDeadlines, StatusCompleted, result.Processed, nil)

	s.logger.Info("deadline sweep completed", "processed", result.Processed)
	return result, nil
}

// State returns the last recorded run of the named job.
func (s *Sweeper) State(ctx context.Context, job string) (*SweepState, error) {
	if s.state == nil {
		return nil, fmt.Errorf("sweep state tracking is not configured")
	}
	return s.state.Get(ctx, job)
}

// notifyAdmins inserts one daily summary per admin profile.
func (s *Sweeper) notifyAdmins(ctx context.Context, processed int) {
	admins, err := s.profiles.FindAdmins(ctx)
	if err != nil {
		s.logger.Error("failed to load admin profiles", "error", err)
		return
	}
	if len(admins) == 0 {
		return
	}

	summaries := make([]models.Notification, 0, len(admins))
	for _, admin := range admins {
		summaries = append(summaries, models.Notification{
			UserID:  admin.ID,
			Type:    models.NotificationSystem,
			Title:   "Daily Follow-up Report",
			Message: fmt.Sprintf("%d follow-ups were missed today. See the reports for details.", processed),
		})
	}
	if err := s.notifications.CreateBatch(ctx, summaries); err != nil {
		s.logger.Error("failed to insert admin summaries", "error", err)
	}
}

// fanOut pushes persisted notifications to each recipient's devices.
// Best-effort by design: partial or total delivery failure is logged and
// otherwise ignored.
func (s *Sweeper) fanOut(ctx context.Context, notifications []models.Notification) {
	if s.dispatcher == nil {
		return
	}
	for _, n := range notifications {
		url := "/notifications"
		if n.ProposalID != nil {
			url = "/proposals/" + *n.ProposalID
		}
		results, err := s.dispatcher.Dispatch(ctx, n.UserID, push.Payload{
			Title: n.Title,
			Body:  n.Message,
			URL:   url,
		})
		if err != nil {
			s.logger.Warn("push dispatch failed", "user_id", n.UserID, "error", err)
			continue
		}
		if len(results) > 0 {
			s.logger.Debug("push dispatched",
				"user_id", n.UserID, "sent", push.SuccessCount(results), "total", len(results))
		}
	}
}

func (s *Sweeper) recordState(ctx context.Context, job, status string, processed int, runErr error) {
	if s.state == nil {
		return
	}
	if err := s.state.Record(ctx, job, status, processed, runErr); err != nil {
		s.logger.Error("failed to record sweep state", "job", job, "error", err)
	}
}
