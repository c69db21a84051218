package submissions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yfkiwi/growthPartnerAI/app/models"
)

func TestCreateBundle(t *testing.T) {
	svc, _ := newTestService(t)

	bundle, err := svc.CreateBundle(bg, " founder@example.com ")
	require.NoError(t, err)
	assert.NotEmpty(t, bundle.ID)
	assert.Equal(t, "founder@example.com", bundle.UserEmail)
	assert.Equal(t, models.BundlePaymentPending, bundle.PaymentStatus)

	_, err = svc.CreateBundle(bg, "")
	assert.ErrorIs(t, err, ErrMissingUserEmail)

	_, err = svc.CreateBundle(bg, "founder")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestGetBundle(t *testing.T) {
	svc, db := newTestService(t)
	bundle := seedBundle(t, db, models.BundlePaymentPaid)

	var ids []string
	for i, rt := range []string{models.ReportTypeMVP, models.ReportTypeGTM, models.ReportTypeInvestor} {
		in := validInput(rt)
		in.BundleID = bundle.ID
		s, err := svc.Create(bg, in)
		require.NoError(t, err)
		createdAt := time.Date(2026, time.February, i+1, 9, 0, 0, 0, time.UTC)
		require.NoError(t, db.Exec("UPDATE submissions SET created_at = ? WHERE id = ?", createdAt, s.ID).Error)
		ids = append(ids, s.ID)
	}
	// a submission outside the bundle is not counted
	_, err := svc.Create(bg, validInput(models.ReportTypeMVP))
	require.NoError(t, err)

	status, err := svc.GetBundle(bg, bundle.ID)
	require.NoError(t, err)

	assert.Equal(t, bundle.ID, status.Bundle.ID)
	assert.Equal(t, 3, status.Used)
	assert.Equal(t, models.BundleCapacity, status.Limit)
	assert.Equal(t, 2, status.Remaining())
	require.Len(t, status.Submissions, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{
		status.Submissions[0].ID, status.Submissions[1].ID, status.Submissions[2].ID,
	})
}

func TestGetBundleEmptyAndMissing(t *testing.T) {
	svc, db := newTestService(t)
	bundle := seedBundle(t, db, models.BundlePaymentPending)

	status, err := svc.GetBundle(bg, bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Used)
	assert.NotNil(t, status.Submissions)

	_, err = svc.GetBundle(bg, "missing")
	assert.ErrorIs(t, err, ErrBundleNotFound)
}

func TestCreateBundleForSubmission(t *testing.T) {
	svc, _ := newTestService(t)
	submission, err := svc.Create(bg, validInput(models.ReportTypeValidation))
	require.NoError(t, err)

	bundle, err := svc.CreateBundleForSubmission(bg, submission)
	require.NoError(t, err)
	assert.Equal(t, models.BundlePaymentPending, bundle.PaymentStatus)
	assert.Equal(t, submission.Email, bundle.UserEmail)

	stored, err := svc.Get(bg, submission.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.BundleID)
	assert.Equal(t, bundle.ID, *stored.BundleID)
	require.NotNil(t, stored.BundleSlot)
	assert.Equal(t, 0, *stored.BundleSlot)
	assert.Equal(t, models.PaymentStatusFree, stored.PaymentStatus, "paid_bundle arrives with the payment event")

	_, err = svc.CreateBundleForSubmission(bg, &models.Submission{ID: "missing", Email: "x@y.io"})
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}
