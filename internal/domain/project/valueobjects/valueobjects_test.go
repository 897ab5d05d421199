package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from ProjectStatus
		to   ProjectStatus
		want bool
	}{
		{StatusSubmitted, StatusAccepted, true},
		{StatusSubmitted, StatusInProgress, false},
		{StatusAccepted, StatusInProgress, true},
		{StatusInProgress, StatusQA, true},
		{StatusQA, StatusCompleted, true},
		{StatusInProgress, StatusCompleted, false},
		{StatusSubmitted, StatusRejected, true},
		{StatusAccepted, StatusRejected, true},
		{StatusInProgress, StatusRejected, false},
		{StatusQA, StatusDisputed, true},
		{StatusCompleted, StatusDisputed, false},
		{StatusRejected, StatusDisputed, false},
		{StatusDisputed, StatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestProjectStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusDisputed.IsTerminal())
}

func TestProjectStatus_AnalystTargets(t *testing.T) {
	assert.True(t, StatusInProgress.IsAnalystTarget())
	assert.True(t, StatusCompleted.IsAnalystTarget())
	assert.False(t, StatusAccepted.IsAnalystTarget())
	assert.False(t, StatusRejected.IsAnalystTarget())
}

func TestNewProjectStatus(t *testing.T) {
	s, err := NewProjectStatus("qa")
	require.NoError(t, err)
	assert.Equal(t, StatusQA, s)

	_, err = NewProjectStatus("archived")
	assert.Error(t, err)
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusProcessing))
	assert.True(t, PaymentStatusProcessing.CanTransitionTo(PaymentStatusCompleted))
	assert.True(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusProcessing))
	assert.True(t, PaymentStatusCompleted.CanTransitionTo(PaymentStatusRefunded))
	assert.False(t, PaymentStatusPending.CanTransitionTo(PaymentStatusCompleted))
	assert.False(t, PaymentStatusRefunded.CanTransitionTo(PaymentStatusProcessing))
}

func TestStageAndSupportType(t *testing.T) {
	_, err := NewStage("methodology")
	assert.NoError(t, err)
	_, err = NewStage("brainstorm")
	assert.Error(t, err)

	_, err = NewSupportType("reproducible_notebook")
	assert.NoError(t, err)
	_, err = NewSupportType("ghostwriting")
	assert.Error(t, err)
}

func TestMoney_Split(t *testing.T) {
	tests := []struct {
		cents         int64
		wantFee       int64
		wantRemainder int64
	}{
		{10000, 2000, 8000},
		{999, 199, 800},
		{1, 0, 1},
	}

	for _, tt := range tests {
		fee, rest := NewMoney(tt.cents, "usd").Split(20)
		assert.Equal(t, tt.wantFee, fee.AmountInCents())
		assert.Equal(t, tt.wantRemainder, rest.AmountInCents())
		assert.Equal(t, tt.cents, fee.AmountInCents()+rest.AmountInCents())
	}
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "12.05 usd", NewMoney(1205, "usd").String())
}
