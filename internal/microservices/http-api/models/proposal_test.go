package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProposal_IsActive(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusDraft, true},
		{StatusSent, true},
		{StatusRevised, true},
		{StatusApproved, false},
		{StatusRejected, false},
		{StatusCancelled, false},
	}
	for _, tt := range tests {
		p := Proposal{Status: tt.status}
		assert.Equal(t, tt.want, p.IsActive(), tt.status)
	}
}
