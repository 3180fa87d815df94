package fracta

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fracta-city/fracta/internal/models"
)

const dateLayout = "2006-01-02"

const verificationManual = "manual"

var validate = validator.New()

var (
	prosperaPermitTypes = map[string]bool{"resident": true, "investor": true, "business": true}
	documentTypes       = map[string]bool{"passport": true, "drivers_license": true, "national_id": true}
)

// Next steps shown with the KYC status summary.
var (
	stepsNoKYC = []string{
		"Complete KYC verification to start investing",
		"Choose between Prospera permit or international KYC",
	}
	stepsPending  = []string{"KYC verification is being reviewed"}
	stepsRejected = []string{
		"Previous KYC was rejected",
		"Contact support or submit new documentation",
	}
	stepsExpired = []string{
		"KYC verification has expired",
		"Submit new documentation to continue investing",
	}
	stepsRenewal       = []string{"KYC renewal required - please update your information"}
	stepsProspera      = []string{"You can invest in all Prospera properties"}
	stepsInternational = []string{"You can invest in international properties"}
)

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, models.NewValidationError("invalid date format for " + field + ", use YYYY-MM-DD")
	}
	return t, nil
}

type requiredField struct {
	name, value string
}

func requireFields(fields ...requiredField) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return models.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// contactEmail validates an optional notification address.
func contactEmail(email *string) (string, error) {
	if email == nil || strings.TrimSpace(*email) == "" {
		return "", nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if err := validate.Var(e, "email"); err != nil {
		return "", models.NewValidationError("invalid email address")
	}
	return e, nil
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	return &s
}

func optionalStr(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return strPtr(*s)
}

// SubmitProsperaKYC records a Prospera permit for manual review.
func (f *Fracta) SubmitProsperaKYC(ctx context.Context, userID int64, req *models.ProsperaKYCRequest) (*models.KYCRecord, error) {
	if err := requireFields(
		requiredField{"prospera_permit_id", req.PermitID},
		requiredField{"prospera_permit_type", req.PermitType},
		requiredField{"first_name", req.FirstName},
		requiredField{"last_name", req.LastName},
		requiredField{"date_of_birth", req.DateOfBirth},
		requiredField{"nationality", req.Nationality},
	); err != nil {
		return nil, err
	}
	if !prosperaPermitTypes[req.PermitType] {
		return nil, models.NewValidationError("permit type must be resident, investor, or business")
	}
	dob, err := parseDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	email, err := contactEmail(req.Email)
	if err != nil {
		return nil, err
	}

	now := f.now()
	expires := now.Add(f.config.KYCValidity)
	review := now.Add(f.config.KYCValidity)
	record := &models.KYCRecord{
		UserID:             userID,
		KYCType:            models.KYCTypeProsperaPermit,
		Status:             models.KYCStatusPending,
		Jurisdiction:       models.JurisdictionProspera,
		ProsperaPermitID:   strPtr(req.PermitID),
		ProsperaPermitType: strPtr(req.PermitType),
		FirstName:          strPtr(req.FirstName),
		LastName:           strPtr(req.LastName),
		DateOfBirth:        &dob,
		Nationality:        strPtr(req.Nationality),
		VerificationMethod: strPtr(verificationManual),
		ComplianceStatus:   models.ComplianceStatusPending,
		SubmittedAt:        now,
		ExpiresAt:          &expires,
		AnnualReviewDue:    &review,
	}
	return f.submitKYC(ctx, record, email)
}

// SubmitInternationalKYC records an identity document for manual review. The
// record expires with the document.
func (f *Fracta) SubmitInternationalKYC(ctx context.Context, userID int64, req *models.InternationalKYCRequest) (*models.KYCRecord, error) {
	if err := requireFields(
		requiredField{"document_type", req.DocumentType},
		requiredField{"document_number", req.DocumentNumber},
		requiredField{"document_country", req.DocumentCountry},
		requiredField{"document_expiry", req.DocumentExpiry},
		requiredField{"first_name", req.FirstName},
		requiredField{"last_name", req.LastName},
		requiredField{"date_of_birth", req.DateOfBirth},
		requiredField{"nationality", req.Nationality},
		requiredField{"country_of_residence", req.CountryOfResidence},
		requiredField{"address_line1", req.AddressLine1},
		requiredField{"city", req.City},
		requiredField{"postal_code", req.PostalCode},
		requiredField{"address_country", req.AddressCountry},
	); err != nil {
		return nil, err
	}
	if !documentTypes[req.DocumentType] {
		return nil, models.NewValidationError("document type must be passport, drivers_license, or national_id")
	}
	dob, err := parseDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	expiry, err := parseDate("document_expiry", req.DocumentExpiry)
	if err != nil {
		return nil, err
	}
	email, err := contactEmail(req.Email)
	if err != nil {
		return nil, err
	}

	now := f.now()
	if !expiry.After(now) {
		return nil, models.NewValidationError("document has expired")
	}
	review := now.Add(f.config.KYCValidity)
	record := &models.KYCRecord{
		UserID:             userID,
		KYCType:            models.KYCTypeInternationalKYC,
		Status:             models.KYCStatusPending,
		Jurisdiction:       models.JurisdictionInternational,
		DocumentType:       strPtr(req.DocumentType),
		DocumentNumber:     strPtr(req.DocumentNumber),
		DocumentCountry:    strPtr(req.DocumentCountry),
		DocumentExpiry:     &expiry,
		FirstName:          strPtr(req.FirstName),
		LastName:           strPtr(req.LastName),
		DateOfBirth:        &dob,
		Nationality:        strPtr(req.Nationality),
		CountryOfResidence: strPtr(req.CountryOfResidence),
		AddressLine1:       strPtr(req.AddressLine1),
		AddressLine2:       optionalStr(req.AddressLine2),
		City:               strPtr(req.City),
		StateProvince:      optionalStr(req.StateProvince),
		PostalCode:         strPtr(req.PostalCode),
		AddressCountry:     strPtr(req.AddressCountry),
		VerificationMethod: strPtr(verificationManual),
		ComplianceStatus:   models.ComplianceStatusPending,
		SubmittedAt:        now,
		ExpiresAt:          &expiry,
		AnnualReviewDue:    &review,
	}
	return f.submitKYC(ctx, record, email)
}

// submitKYC stores a new pending record and the contact email, if any. A user
// holding a valid approval or a submission awaiting review cannot submit again.
func (f *Fracta) submitKYC(ctx context.Context, record *models.KYCRecord, email string) (*models.KYCRecord, error) {
	user, err := f.getUser(ctx, record.UserID)
	if err != nil {
		return nil, err
	}
	existing, err := f.repo.ListKYCRecordsByUser(ctx, user.ID)
	if err != nil {
		return nil, f.storeError(err, "user not found", "failed to list kyc records")
	}
	now := f.now()
	for _, r := range existing {
		if r.IsValid(now) {
			return nil, models.NewValidationError("user already has approved KYC verification")
		}
		if r.IsPending() {
			return nil, models.NewStateConflictError("a KYC submission is already awaiting review", nil)
		}
	}

	if email != "" && (user.Email == nil || *user.Email != email) {
		if err := f.repo.SetUserEmail(ctx, user.ID, email); err != nil {
			if errors.Is(err, models.ErrStateConflict) {
				return nil, models.NewValidationError("email address is already in use")
			}
			return nil, f.storeError(err, "user not found", "failed to save email")
		}
		user.Email = &email
	}
	if err := f.repo.CreateKYCRecord(ctx, record); err != nil {
		return nil, f.storeError(err, "user not found", "failed to submit kyc")
	}

	f.metrics.ObserveKYCTransition(models.KYCStatusPending)
	f.logger.Info("KYC submitted", "record_id", record.ID, "user_id", user.ID, "type", record.KYCType)
	f.notify(&models.Notification{
		Kind:        models.NotificationKYCSubmitted,
		Wallet:      user.WalletAddress,
		Email:       user.Email,
		KYCRecordID: record.ID,
		KYCType:     record.KYCType,
		KYCStatus:   record.Status,
	})
	return record, nil
}

// ApproveKYC approves a pending record and grants its jurisdiction to the owner
// in the same transaction.
func (f *Fracta) ApproveKYC(ctx context.Context, recordID int64, reviewer string) (*models.KYCRecord, error) {
	return f.reviewKYC(ctx, recordID, reviewer, "", func(record *models.KYCRecord, user *models.User, now time.Time) {
		record.Status = models.KYCStatusApproved
		record.ComplianceStatus = models.ComplianceStatusCompliant
		record.ApprovedAt = &now

		jurisdiction := record.Jurisdiction
		user.KYCStatus = models.KYCStatusApproved
		user.KYCJurisdiction = &jurisdiction
		user.IsVerified = true
		if record.ProsperaPermitID != nil {
			user.ProsperaPermitID = record.ProsperaPermitID
		}
		if user.FirstName == nil {
			user.FirstName = record.FirstName
		}
		if user.LastName == nil {
			user.LastName = record.LastName
		}
		if user.Country == nil {
			user.Country = record.CountryOfResidence
		}
	})
}

// RejectKYC rejects a pending record and marks the owner rejected.
func (f *Fracta) RejectKYC(ctx context.Context, recordID int64, reviewer, reason string) (*models.KYCRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.NewValidationError("rejection reason is required")
	}
	return f.reviewKYC(ctx, recordID, reviewer, reason, func(record *models.KYCRecord, user *models.User, _ time.Time) {
		record.Status = models.KYCStatusRejected
		record.ComplianceStatus = models.ComplianceStatusNonCompliant
		record.VerificationNotes = &reason

		user.KYCStatus = models.KYCStatusRejected
	})
}

// reviewKYC moves a pending record to a terminal status. apply mutates the
// record and its owner; both are saved together.
func (f *Fracta) reviewKYC(
	ctx context.Context,
	recordID int64,
	reviewer, note string,
	apply func(record *models.KYCRecord, user *models.User, now time.Time),
) (*models.KYCRecord, error) {
	if reviewer == "" {
		reviewer = "admin"
	}
	var (
		reviewed *models.KYCRecord
		owner    *models.User
	)
	err := f.repo.ReviewKYC(ctx, recordID, func(record *models.KYCRecord, user *models.User) error {
		if !record.IsPending() {
			return models.NewStateConflictError("kyc record is "+record.Status+", only pending records can be reviewed", nil)
		}
		now := f.now()
		apply(record, user, now)
		record.ReviewedAt = &now
		record.VerifiedBy = &reviewer
		reviewed, owner = record, user
		return nil
	})
	if err != nil {
		return nil, f.storeError(err, "kyc record not found", "failed to review kyc")
	}

	f.metrics.ObserveKYCTransition(reviewed.Status)
	f.logger.Info("KYC reviewed", "record_id", reviewed.ID, "user_id", owner.ID, "status", reviewed.Status)
	f.notify(&models.Notification{
		Kind:        models.NotificationKYCReviewed,
		Wallet:      owner.WalletAddress,
		Email:       owner.Email,
		KYCRecordID: reviewed.ID,
		KYCType:     reviewed.KYCType,
		KYCStatus:   reviewed.Status,
		Note:        note,
	})
	return reviewed, nil
}

// KYCStatus summarises the user's gate values and their latest submission.
func (f *Fracta) KYCStatus(ctx context.Context, userID int64) (*models.KYCStatusSummary, error) {
	user, err := f.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := &models.KYCStatusSummary{
		KYCStatus:              user.KYCStatus,
		KYCJurisdiction:        user.KYCJurisdiction,
		CanInvestProspera:      user.CanInvestInProspera(),
		CanInvestInternational: user.CanInvestInternational(),
	}

	latest, err := f.repo.LatestKYCRecord(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrKYCRecordNotFound) {
		return nil, f.storeError(err, "kyc record not found", "failed to load kyc record")
	}
	if latest == nil {
		summary.NextSteps = stepsNoKYC
		return summary, nil
	}

	now := f.now()
	summary.HasKYC = true
	summary.CurrentRecordStatus = latest.EffectiveStatus(now)
	summary.RequiresRenewal = latest.RequiresRenewal(now)
	summary.ExpiresAt = latest.ExpiresAt

	switch {
	case latest.IsPending():
		summary.NextSteps = stepsPending
	case latest.Status == models.KYCStatusRejected:
		summary.NextSteps = stepsRejected
	case summary.CurrentRecordStatus == models.KYCStatusExpired:
		summary.NextSteps = stepsExpired
	case summary.RequiresRenewal:
		summary.NextSteps = stepsRenewal
	case user.CanInvestInProspera():
		summary.NextSteps = stepsProspera
	case user.IsKYCApproved():
		summary.NextSteps = stepsInternational
	default:
		summary.NextSteps = []string{}
	}
	return summary, nil
}

// KYCRecords lists the user's records, newest first.
func (f *Fracta) KYCRecords(ctx context.Context, userID int64) ([]*models.KYCRecord, error) {
	records, err := f.repo.ListKYCRecordsByUser(ctx, userID)
	if err != nil {
		return nil, f.storeError(err, "user not found", "failed to list kyc records")
	}
	return f.withEffectiveStatus(records), nil
}

// PendingKYC is the review queue, oldest submission first.
func (f *Fracta) PendingKYC(ctx context.Context) ([]*models.KYCRecord, error) {
	records, err := f.repo.ListKYCRecordsByStatus(ctx, models.KYCStatusPending)
	if err != nil {
		return nil, f.storeError(err, "kyc record not found", "failed to list pending kyc records")
	}
	return records, nil
}

// AdminKYCRecords lists records newest first. Empty or "all" filters match everything.
func (f *Fracta) AdminKYCRecords(ctx context.Context, status, jurisdiction string) ([]*models.KYCRecord, error) {
	if status == "all" {
		status = ""
	}
	if jurisdiction == "all" {
		jurisdiction = ""
	}
	switch status {
	case "", models.KYCStatusPending, models.KYCStatusApproved, models.KYCStatusRejected:
	default:
		return nil, models.NewValidationError("status must be pending, approved, rejected or all")
	}
	switch jurisdiction {
	case "", models.JurisdictionProspera, models.JurisdictionInternational:
	default:
		return nil, models.NewValidationError("jurisdiction must be prospera, international or all")
	}

	records, err := f.repo.ListKYCRecordsByStatus(ctx, status)
	if err != nil {
		return nil, f.storeError(err, "kyc record not found", "failed to list kyc records")
	}
	out := make([]*models.KYCRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if jurisdiction == "" || records[i].Jurisdiction == jurisdiction {
			out = append(out, records[i])
		}
	}
	return f.withEffectiveStatus(out), nil
}

func (f *Fracta) KYCRecord(ctx context.Context, recordID int64) (*models.KYCRecord, error) {
	record, err := f.repo.GetKYCRecord(ctx, recordID)
	if err != nil {
		return nil, f.storeError(err, "kyc record not found", "failed to load kyc record")
	}
	record.Status = record.EffectiveStatus(f.now())
	return record, nil
}

// withEffectiveStatus applies lazy expiry to records about to be returned.
func (f *Fracta) withEffectiveStatus(records []*models.KYCRecord) []*models.KYCRecord {
	now := f.now()
	for _, r := range records {
		r.Status = r.EffectiveStatus(now)
	}
	return records
}
