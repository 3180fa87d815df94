package models

import "time"

// KYC statuses shared by users and records.
const (
	KYCStatusPending  = "pending"
	KYCStatusApproved = "approved"
	KYCStatusRejected = "rejected"
	KYCStatusExpired  = "expired"
)

// Jurisdictions a user can be cleared for and a property can belong to.
const (
	JurisdictionProspera      = "prospera"
	JurisdictionInternational = "international"
)

// User represents an investor identified by their wallet.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// WalletAddress is the normalized (lowercase, 0x-prefixed) wallet address. It is the identity key.
	WalletAddress string `json:"wallet_address" gorm:"column:wallet_address;size:42;uniqueIndex;not null"`
	// Email is optional and only used for notifications.
	Email *string `json:"email,omitempty" gorm:"column:email;size:255;uniqueIndex"`
	// KYCStatus is the authoritative gate value: pending, approved or rejected.
	KYCStatus string `json:"kyc_status" gorm:"column:kyc_status;size:20;not null;default:pending"`
	// KYCJurisdiction is set when a KYC record is approved: prospera or international.
	KYCJurisdiction *string `json:"kyc_jurisdiction" gorm:"column:kyc_jurisdiction;size:20"`
	// ProsperaPermitID is copied from an approved Prospera permit record.
	ProsperaPermitID *string `json:"prospera_permit_id,omitempty" gorm:"column:prospera_permit_id;size:100"`

	FirstName *string `json:"first_name,omitempty" gorm:"column:first_name;size:100"`
	LastName  *string `json:"last_name,omitempty" gorm:"column:last_name;size:100"`
	Country   *string `json:"country,omitempty" gorm:"column:country;size:100"`

	// IsActive is false for suspended accounts. Users are never hard-deleted.
	IsActive   bool `json:"is_active" gorm:"column:is_active;not null;default:true"`
	IsVerified bool `json:"is_verified" gorm:"column:is_verified;not null;default:false"`
	IsAdmin    bool `json:"is_admin" gorm:"column:is_admin;not null;default:false"`

	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty" gorm:"column:last_login"`
}

func (User) TableName() string {
	return "users"
}

// IsKYCApproved reports whether the user's KYC gate value is approved.
func (u *User) IsKYCApproved() bool {
	return u.KYCStatus == KYCStatusApproved
}

// Jurisdiction returns the KYC jurisdiction or an empty string when unset.
func (u *User) Jurisdiction() string {
	if u.KYCJurisdiction == nil {
		return ""
	}
	return *u.KYCJurisdiction
}

// CanInvestInProspera is true iff KYC is approved for the prospera jurisdiction.
func (u *User) CanInvestInProspera() bool {
	return u.IsKYCApproved() && u.Jurisdiction() == JurisdictionProspera
}

// CanInvestInternational is true iff KYC is approved for either jurisdiction.
// Prospera clearance also grants international access.
func (u *User) CanInvestInternational() bool {
	if !u.IsKYCApproved() {
		return false
	}
	j := u.Jurisdiction()
	return j == JurisdictionProspera || j == JurisdictionInternational
}
