package dto

// ScheduleFollowUpRequest sets the next follow-up date for a proposal.
// Date uses YYYY-MM-DD; the time of day is ignored server-side.
type ScheduleFollowUpRequest struct {
	Date  string `json:"scheduled_date" binding:"required"`
	Notes string `json:"notes"`
}

// CompleteFollowUpRequest closes out the pending follow-up.
type CompleteFollowUpRequest struct {
	Notes string `json:"notes"`
}
