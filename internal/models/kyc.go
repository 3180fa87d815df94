package models

import "time"

// KYC record types. A property's KYCRequired field uses the same values.
const (
	KYCTypeProsperaPermit   = "prospera-permit"
	KYCTypeInternationalKYC = "international-kyc"
)

// Compliance statuses of a KYC record.
const (
	ComplianceStatusPending      = "pending"
	ComplianceStatusCompliant    = "compliant"
	ComplianceStatusNonCompliant = "non_compliant"
)

// KYCRecord is a single verification submission. A user may hold several over time;
// the most recently created one is the "current" record shown to the user.
type KYCRecord struct {
	ID     int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID int64 `json:"user_id" gorm:"column:user_id;index;not null"`

	KYCType      string `json:"kyc_type" gorm:"column:kyc_type;size:20;not null"`
	Status       string `json:"status" gorm:"column:status;size:20;not null;default:pending;index"`
	Jurisdiction string `json:"jurisdiction" gorm:"column:jurisdiction;size:20;not null"`

	// Prospera permit fields
	ProsperaPermitID   *string `json:"prospera_permit_id,omitempty" gorm:"column:prospera_permit_id;size:100"`
	ProsperaPermitType *string `json:"prospera_permit_type,omitempty" gorm:"column:prospera_permit_type;size:50"`

	// International document fields
	DocumentType    *string    `json:"document_type,omitempty" gorm:"column:document_type;size:30"`
	DocumentNumber  *string    `json:"-" gorm:"column:document_number;size:100"`
	DocumentCountry *string    `json:"document_country,omitempty" gorm:"column:document_country;size:100"`
	DocumentExpiry  *time.Time `json:"document_expiry,omitempty" gorm:"column:document_expiry"`

	FirstName          *string    `json:"first_name,omitempty" gorm:"column:first_name;size:100"`
	LastName           *string    `json:"last_name,omitempty" gorm:"column:last_name;size:100"`
	DateOfBirth        *time.Time `json:"-" gorm:"column:date_of_birth"`
	Nationality        *string    `json:"nationality,omitempty" gorm:"column:nationality;size:100"`
	CountryOfResidence *string    `json:"country_of_residence,omitempty" gorm:"column:country_of_residence;size:100"`

	AddressLine1   *string `json:"-" gorm:"column:address_line1;size:200"`
	AddressLine2   *string `json:"-" gorm:"column:address_line2;size:200"`
	City           *string `json:"-" gorm:"column:city;size:100"`
	StateProvince  *string `json:"-" gorm:"column:state_province;size:100"`
	PostalCode     *string `json:"-" gorm:"column:postal_code;size:20"`
	AddressCountry *string `json:"-" gorm:"column:address_country;size:100"`

	VerificationMethod *string `json:"verification_method,omitempty" gorm:"column:verification_method;size:50"`
	VerifiedBy         *string `json:"verified_by,omitempty" gorm:"column:verified_by;size:100"`
	VerificationNotes  *string `json:"verification_notes,omitempty" gorm:"column:verification_notes;type:text"`
	RiskLevel          *string `json:"risk_level,omitempty" gorm:"column:risk_level;size:20"`

	ComplianceStatus string     `json:"compliance_status" gorm:"column:compliance_status;size:20;not null;default:pending"`
	AnnualReviewDue  *time.Time `json:"annual_review_due,omitempty" gorm:"column:annual_review_due"`

	SubmittedAt time.Time  `json:"submitted_at" gorm:"column:submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" gorm:"column:expires_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (KYCRecord) TableName() string {
	return "kyc_records"
}

func (r *KYCRecord) IsApproved() bool {
	return r.Status == KYCStatusApproved
}

func (r *KYCRecord) IsPending() bool {
	return r.Status == KYCStatusPending
}

// IsExpired reports whether the record's expiry has passed at now.
func (r *KYCRecord) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// IsValid is true for approved records that have not expired.
func (r *KYCRecord) IsValid(now time.Time) bool {
	return r.IsApproved() && !r.IsExpired(now)
}

// RequiresRenewal is an advisory flag: the annual review date has passed.
// It never changes Status.
func (r *KYCRecord) RequiresRenewal(now time.Time) bool {
	return r.AnnualReviewDue != nil && r.AnnualReviewDue.Before(now)
}

// EffectiveStatus is Status with lazy expiry applied: approved records past
// ExpiresAt read as expired.
func (r *KYCRecord) EffectiveStatus(now time.Time) string {
	if r.IsApproved() && r.IsExpired(now) {
		return KYCStatusExpired
	}
	return r.Status
}
