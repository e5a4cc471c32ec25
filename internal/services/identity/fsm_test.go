package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

var allStates = []models.IdentityStatus{
	models.IdentityPending,
	models.IdentitySubmitted,
	models.IdentityUnderReview,
	models.IdentityApproved,
	models.IdentityRejected,
	models.IdentityResubmitRequired,
}

func TestNext_SubmittedOnlyViaUpload(t *testing.T) {
	events := []Event{EventUpload, EventOpenReview, EventApprove, EventReject, EventRequestResubmit}
	for _, from := range allStates {
		for _, ev := range events {
			to, err := Next(from, ev)
			if err != nil {
				assert.ErrorIs(t, err, ErrTransition)
				continue
			}
			if to == models.IdentitySubmitted {
				assert.Equal(t, EventUpload, ev, "from %s", from)
				assert.Contains(t, []models.IdentityStatus{
					models.IdentityPending, models.IdentityRejected, models.IdentityResubmitRequired,
				}, from)
			}
		}
	}
}

func TestNext_Transitions(t *testing.T) {
	tests := []struct {
		from    models.IdentityStatus
		ev      Event
		want    models.IdentityStatus
		wantErr bool
	}{
		{models.IdentityPending, EventUpload, models.IdentitySubmitted, false},
		{models.IdentitySubmitted, EventOpenReview, models.IdentityUnderReview, false},
		{models.IdentitySubmitted, EventApprove, models.IdentityApproved, false},
		{models.IdentityUnderReview, EventReject, models.IdentityRejected, false},
		{models.IdentityUnderReview, EventRequestResubmit, models.IdentityResubmitRequired, false},
		{models.IdentityRejected, EventUpload, models.IdentitySubmitted, false},
		{models.IdentityResubmitRequired, EventUpload, models.IdentitySubmitted, false},
		{models.IdentityApproved, EventRequestResubmit, models.IdentityResubmitRequired, false},
		{models.IdentityApproved, EventReject, models.IdentityRejected, false},
		{models.IdentityApproved, EventUpload, "", true},
		{models.IdentityApproved, EventOpenReview, "", true},
		{models.IdentitySubmitted, EventUpload, "", true},
		{models.IdentityUnderReview, EventOpenReview, "", true},
		{models.IdentityPending, EventApprove, "", true},
		{models.IdentityStatus("archived"), EventUpload, "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			got, err := Next(tt.from, tt.ev)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReview(t *testing.T) {
	got, err := Review(models.IdentityApproved, models.IdentityApproved)
	require.NoError(t, err)
	assert.Equal(t, models.IdentityApproved, got)

	got, err = Review(models.IdentitySubmitted, models.IdentityResubmitRequired)
	require.NoError(t, err)
	assert.Equal(t, models.IdentityResubmitRequired, got)

	got, err = Review(models.IdentityApproved, models.IdentityRejected)
	require.NoError(t, err)
	assert.Equal(t, models.IdentityRejected, got)

	_, err = Review(models.IdentityApproved, models.IdentityUnderReview)
	assert.ErrorIs(t, err, ErrTransition)

	_, err = Review(models.IdentityRejected, models.IdentitySubmitted)
	assert.ErrorIs(t, err, ErrTransition)

	_, err = Review(models.IdentityPending, models.IdentityPending)
	assert.ErrorIs(t, err, ErrTransition)
}

func TestReviewerSettable(t *testing.T) {
	for _, st := range allStates {
		want := st != models.IdentityPending && st != models.IdentitySubmitted
		assert.Equal(t, want, ReviewerSettable(st), "%s", st)
	}
}

func TestApprovedCreatorCanBeReverified(t *testing.T) {
	assert.False(t, CanUpload(models.IdentityApproved))

	st, err := Review(models.IdentityApproved, models.IdentityResubmitRequired)
	require.NoError(t, err)
	assert.Equal(t, models.IdentityResubmitRequired, st)
	require.True(t, CanUpload(st))

	st, err = Next(st, EventUpload)
	require.NoError(t, err)
	assert.Equal(t, models.IdentitySubmitted, st)
}
