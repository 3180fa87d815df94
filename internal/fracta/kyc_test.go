package fracta

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracta-city/fracta/internal/models"
)

func prosperaRequest() *models.ProsperaKYCRequest {
	return &models.ProsperaKYCRequest{
		PermitID:    "PRS-2024-0042",
		PermitType:  "resident",
		FirstName:   "Ana",
		LastName:    "Reyes",
		DateOfBirth: "1990-04-12",
		Nationality: "HN",
	}
}

func internationalRequest(expiry string) *models.InternationalKYCRequest {
	return &models.InternationalKYCRequest{
		DocumentType:       "passport",
		DocumentNumber:     "X1234567",
		DocumentCountry:    "DE",
		DocumentExpiry:     expiry,
		FirstName:          "Jonas",
		LastName:           "Weber",
		DateOfBirth:        "1985-11-02",
		Nationality:        "DE",
		CountryOfResidence: "DE",
		AddressLine1:       "Hauptstrasse 1",
		City:               "Berlin",
		PostalCode:         "10115",
		AddressCountry:     "DE",
	}
}

func TestProsperaKYC_Lifecycle(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.user(t, models.KYCStatusPending, "")

	record, err := e.f.SubmitProsperaKYC(ctx, user.ID, prosperaRequest())
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusPending, record.Status)
	assert.Equal(t, models.JurisdictionProspera, record.Jurisdiction)
	assert.Equal(t, models.ComplianceStatusPending, record.ComplianceStatus)
	require.NotNil(t, record.ExpiresAt)

	_, err = e.f.SubmitProsperaKYC(ctx, user.ID, prosperaRequest())
	requireKind(t, err, models.KindStateConflict)

	summary, err := e.f.KYCStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, summary.HasKYC)
	assert.Equal(t, stepsPending, summary.NextSteps)
	assert.False(t, summary.CanInvestProspera)

	approved, err := e.f.ApproveKYC(ctx, record.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusApproved, approved.Status)
	assert.Equal(t, models.ComplianceStatusCompliant, approved.ComplianceStatus)
	require.NotNil(t, approved.VerifiedBy)
	assert.Equal(t, "admin", *approved.VerifiedBy)
	assert.NotNil(t, approved.ApprovedAt)

	stored, err := e.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusApproved, stored.KYCStatus)
	assert.Equal(t, models.JurisdictionProspera, stored.Jurisdiction())
	assert.True(t, stored.IsVerified)
	require.NotNil(t, stored.ProsperaPermitID)
	assert.Equal(t, "PRS-2024-0042", *stored.ProsperaPermitID)

	summary, err = e.f.KYCStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, summary.CanInvestProspera)
	assert.True(t, summary.CanInvestInternational)
	assert.Equal(t, stepsProspera, summary.NextSteps)

	// terminal states cannot be reviewed again
	_, err = e.f.RejectKYC(ctx, record.ID, "ops", "late")
	requireKind(t, err, models.KindStateConflict)

	_, err = e.f.SubmitProsperaKYC(ctx, user.ID, prosperaRequest())
	appErr := requireKind(t, err, models.KindValidation)
	assert.Equal(t, "user already has approved KYC verification", appErr.Message)

	e.f.Wait()
	assert.Equal(t, []string{models.NotificationKYCSubmitted, models.NotificationKYCReviewed}, e.notifier.kinds())
}

func TestKYC_RejectAllowsResubmission(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.user(t, models.KYCStatusPending, "")

	record, err := e.f.SubmitInternationalKYC(ctx, user.ID, internationalRequest("2099-01-01"))
	require.NoError(t, err)
	assert.Equal(t, models.JurisdictionInternational, record.Jurisdiction)

	_, err = e.f.RejectKYC(ctx, record.ID, "ops", "  ")
	requireKind(t, err, models.KindValidation)

	rejected, err := e.f.RejectKYC(ctx, record.ID, "ops", "document unreadable")
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusRejected, rejected.Status)
	assert.Equal(t, models.ComplianceStatusNonCompliant, rejected.ComplianceStatus)
	require.NotNil(t, rejected.VerificationNotes)
	assert.Equal(t, "document unreadable", *rejected.VerificationNotes)

	stored, err := e.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusRejected, stored.KYCStatus)

	summary, err := e.f.KYCStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, stepsRejected, summary.NextSteps)

	_, err = e.f.SubmitInternationalKYC(ctx, user.ID, internationalRequest("2099-01-01"))
	require.NoError(t, err)
}

func TestKYC_StoresContactEmail(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.user(t, models.KYCStatusPending, "")

	req := prosperaRequest()
	req.Email = strPtr(" Ana.Reyes@Example.com ")
	record, err := e.f.SubmitProsperaKYC(ctx, user.ID, req)
	require.NoError(t, err)

	stored, err := e.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Email)
	assert.Equal(t, "ana.reyes@example.com", *stored.Email)

	_, err = e.f.ApproveKYC(ctx, record.ID, "ops")
	require.NoError(t, err)
	e.f.Wait()
	e.notifier.mu.Lock()
	for _, n := range e.notifier.sent {
		require.NotNil(t, n.Email)
		assert.Equal(t, "ana.reyes@example.com", *n.Email)
	}
	e.notifier.mu.Unlock()

	// the address belongs to the first user now
	other := e.user(t, models.KYCStatusPending, "")
	req = prosperaRequest()
	req.Email = strPtr("ana.reyes@example.com")
	_, err = e.f.SubmitProsperaKYC(ctx, other.ID, req)
	appErr := requireKind(t, err, models.KindValidation)
	assert.Equal(t, "email address is already in use", appErr.Message)
}

func TestKYC_ApproveInternational(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.user(t, models.KYCStatusPending, "")

	record, err := e.f.SubmitInternationalKYC(ctx, user.ID, internationalRequest("2099-01-01"))
	require.NoError(t, err)
	_, err = e.f.ApproveKYC(ctx, record.ID, "ops")
	require.NoError(t, err)

	summary, err := e.f.KYCStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, summary.CanInvestProspera)
	assert.True(t, summary.CanInvestInternational)
	assert.Equal(t, stepsInternational, summary.NextSteps)

	p := e.property(t, 10, models.KYCTypeProsperaPermit)
	_, err = e.f.Purchase(ctx, user.ID, p.ID, 1)
	appErr := requireKind(t, err, models.KindAuthorization)
	assert.Equal(t, []models.ReasonCode{models.ReasonJurisdictionMismatch}, appErr.Codes)

	intl := e.property(t, 10, models.KYCTypeInternationalKYC)
	_, err = e.f.Purchase(ctx, user.ID, intl.ID, 1)
	require.NoError(t, err)
}

func TestKYC_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.user(t, models.KYCStatusPending, "")

	record, err := e.f.SubmitProsperaKYC(ctx, user.ID, prosperaRequest())
	require.NoError(t, err)
	_, err = e.f.ApproveKYC(ctx, record.ID, "ops")
	require.NoError(t, err)

	later := time.Now().UTC().Add(e.cfg.KYCValidity + 24*time.Hour)
	e.f.now = func() time.Time { return later }

	summary, err := e.f.KYCStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusExpired, summary.CurrentRecordStatus)
	assert.True(t, summary.RequiresRenewal)
	assert.Equal(t, stepsExpired, summary.NextSteps)

	got, err := e.f.KYCRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusExpired, got.Status)

	// an expired approval does not block a new submission
	_, err = e.f.SubmitProsperaKYC(ctx, user.ID, prosperaRequest())
	require.NoError(t, err)
}

func TestKYC_Validation(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	user := e.user(t, models.KYCStatusPending, "")

	tests := []struct {
		name   string
		submit func() error
	}{
		{"missing fields", func() error {
			req := prosperaRequest()
			req.PermitID = ""
			req.LastName = " "
			_, err := e.f.SubmitProsperaKYC(ctx, user.ID, req)
			return err
		}},
		{"unknown permit type", func() error {
			req := prosperaRequest()
			req.PermitType = "tourist"
			_, err := e.f.SubmitProsperaKYC(ctx, user.ID, req)
			return err
		}},
		{"bad date", func() error {
			req := prosperaRequest()
			req.DateOfBirth = "12/04/1990"
			_, err := e.f.SubmitProsperaKYC(ctx, user.ID, req)
			return err
		}},
		{"unknown document type", func() error {
			req := internationalRequest("2099-01-01")
			req.DocumentType = "library_card"
			_, err := e.f.SubmitInternationalKYC(ctx, user.ID, req)
			return err
		}},
		{"bad email", func() error {
			req := prosperaRequest()
			req.Email = strPtr("not-an-email")
			_, err := e.f.SubmitProsperaKYC(ctx, user.ID, req)
			return err
		}},
		{"expired document", func() error {
			_, err := e.f.SubmitInternationalKYC(ctx, user.ID, internationalRequest("2001-01-01"))
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireKind(t, tt.submit(), models.KindValidation)
		})
	}

	records, err := e.f.KYCRecords(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = e.f.SubmitProsperaKYC(ctx, 999, prosperaRequest())
	requireKind(t, err, models.KindNotFound)

	_, err = e.f.ApproveKYC(ctx, 999, "ops")
	requireKind(t, err, models.KindNotFound)
}

func TestKYCStatus_NoSubmission(t *testing.T) {
	e := newTestEnv(t)
	user := e.user(t, models.KYCStatusPending, "")

	summary, err := e.f.KYCStatus(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, summary.HasKYC)
	assert.Equal(t, stepsNoKYC, summary.NextSteps)
}

func TestAdminKYCRecords(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	e.f.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	first, err := e.f.SubmitProsperaKYC(ctx, e.user(t, models.KYCStatusPending, "").ID, prosperaRequest())
	require.NoError(t, err)
	second, err := e.f.SubmitInternationalKYC(ctx, e.user(t, models.KYCStatusPending, "").ID, internationalRequest("2099-01-01"))
	require.NoError(t, err)
	third, err := e.f.SubmitProsperaKYC(ctx, e.user(t, models.KYCStatusPending, "").ID, prosperaRequest())
	require.NoError(t, err)
	_, err = e.f.ApproveKYC(ctx, third.ID, "ops")
	require.NoError(t, err)

	pending, err := e.f.PendingKYC(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)

	all, err := e.f.AdminKYCRecords(ctx, "all", "all")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)

	prospera, err := e.f.AdminKYCRecords(ctx, "", models.JurisdictionProspera)
	require.NoError(t, err)
	assert.Len(t, prospera, 2)

	approved, err := e.f.AdminKYCRecords(ctx, models.KYCStatusApproved, "")
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, third.ID, approved[0].ID)

	_, err = e.f.AdminKYCRecords(ctx, "archived", "")
	requireKind(t, err, models.KindValidation)
	_, err = e.f.AdminKYCRecords(ctx, "", "mars")
	requireKind(t, err, models.KindValidation)
}
