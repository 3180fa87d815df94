package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EligibilityReport is the pre-flight answer for a prospective purchase.
type EligibilityReport struct {
	CanInvest         bool            `json:"can_invest"`
	Reasons           []string        `json:"reasons"`
	Codes             []ReasonCode    `json:"codes"`
	RequestedTokens   int64           `json:"requested_tokens"`
	PropertyStatus    string          `json:"property_status"`
	TokensRemaining   int64           `json:"tokens_remaining"`
	MinimumInvestment decimal.Decimal `json:"minimum_investment"`
	UserKYCStatus     string          `json:"user_kyc_status"`
	UserJurisdiction  *string         `json:"user_jurisdiction"`
}

// PurchaseResult is returned by a successful purchase.
type PurchaseResult struct {
	Success         bool            `json:"success"`
	TransactionRef  string          `json:"transaction_ref"`
	TokensPurchased int64           `json:"tokens_purchased"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Investment      *Investment     `json:"investment"`
}

// TransactionStatus reports the settlement state of an investment.
type TransactionStatus struct {
	Hash        string     `json:"hash"`
	Status      string     `json:"status"`
	BlockNumber *int64     `json:"block_number,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

type ProsperaKYCRequest struct {
	PermitID    string `json:"prospera_permit_id"`
	PermitType  string `json:"prospera_permit_type"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Nationality string `json:"nationality"`
	// Email, when given, is stored on the user for notifications.
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
}

type InternationalKYCRequest struct {
	DocumentType       string  `json:"document_type"`
	DocumentNumber     string  `json:"document_number"`
	DocumentCountry    string  `json:"document_country"`
	DocumentExpiry     string  `json:"document_expiry"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	DateOfBirth        string  `json:"date_of_birth"`
	Nationality        string  `json:"nationality"`
	CountryOfResidence string  `json:"country_of_residence"`
	AddressLine1       string  `json:"address_line1"`
	AddressLine2       *string `json:"address_line2"`
	City               string  `json:"city"`
	StateProvince      *string `json:"state_province"`
	PostalCode         string  `json:"postal_code"`
	AddressCountry     string  `json:"address_country"`
	Email              *string `json:"email,omitempty" binding:"omitempty,email"`
}

// KYCStatusSummary is the user-facing view of KYC state.
type KYCStatusSummary struct {
	HasKYC                 bool       `json:"has_kyc"`
	KYCStatus              string     `json:"kyc_status"`
	KYCJurisdiction        *string    `json:"kyc_jurisdiction"`
	CurrentRecordStatus    string     `json:"current_record_status,omitempty"`
	CanInvestProspera      bool       `json:"can_invest_prospera"`
	CanInvestInternational bool       `json:"can_invest_international"`
	RequiresRenewal        bool       `json:"requires_renewal"`
	ExpiresAt              *time.Time `json:"expires_at,omitempty"`
	NextSteps              []string   `json:"next_steps"`
}

type PropertyCreateRequest struct {
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Location      string          `json:"location"`
	Jurisdiction  string          `json:"jurisdiction"`
	KYCRequired   string          `json:"kyc_required"`
	FullPrice     decimal.Decimal `json:"full_price"`
	TokenPrice    decimal.Decimal `json:"token_price"`
	TotalTokens   int64           `json:"total_tokens"`
	ExpectedYield decimal.Decimal `json:"expected_yield"`
	PropertyType  *string         `json:"property_type"`
	SquareFeet    *int64          `json:"square_feet"`
	Bedrooms      *int64          `json:"bedrooms"`
	Bathrooms     *int64          `json:"bathrooms"`
	PrimaryImage  *string         `json:"primary_image"`
	Status        string          `json:"status"`
	IsFeatured    bool            `json:"is_featured"`
}

// PropertyUpdateRequest carries optional changes; nil fields are left alone.
type PropertyUpdateRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Status          *string          `json:"status"`
	ExpectedYield   *decimal.Decimal `json:"expected_yield"`
	IsFeatured      *bool            `json:"is_featured"`
	IsActive        *bool            `json:"is_active"`
	ContractAddress *string          `json:"contract_address"`
}

// LoginChallenge is the message a wallet must sign to log in.
type LoginChallenge struct {
	Wallet    string    `json:"wallet_address"`
	Message   string    `json:"message"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}

type WalletLoginRequest struct {
	WalletAddress string `json:"wallet_address"`
	Message       string `json:"message"`
	// Signature is hex encoded.
	Signature string `json:"signature"`
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user"`
}

// ChainProperty is the tracked pilot property as seen on chain, merged with
// catalog data when the pilot row exists.
type ChainProperty struct {
	Name          string          `json:"name"`
	Location      string          `json:"location"`
	FullPrice     decimal.Decimal `json:"full_price"`
	ExpectedYield decimal.Decimal `json:"expected_yield"`
	KYCRequired   string          `json:"kyc_required"`
	TotalTokens   int64           `json:"total_tokens"`
	PropertyID    *int64          `json:"property_id,omitempty"`
	Sale          *SaleSnapshot   `json:"blockchain"`
}

// HealthStatus reports backing service connectivity.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Chain    string `json:"chain"`
}

// FractaI is the application surface consumed by the HTTP layer.
type FractaI interface {
	CheckEligibility(ctx context.Context, userID, propertyID, amount int64) (*EligibilityReport, error)
	Purchase(ctx context.Context, userID, propertyID, amount int64) (*PurchaseResult, error)
	MintToken(ctx context.Context, userID, propertyID int64) (*Token, error)

	SubmitProsperaKYC(ctx context.Context, userID int64, req *ProsperaKYCRequest) (*KYCRecord, error)
	SubmitInternationalKYC(ctx context.Context, userID int64, req *InternationalKYCRequest) (*KYCRecord, error)
	ApproveKYC(ctx context.Context, recordID int64, reviewer string) (*KYCRecord, error)
	RejectKYC(ctx context.Context, recordID int64, reviewer, reason string) (*KYCRecord, error)
	KYCStatus(ctx context.Context, userID int64) (*KYCStatusSummary, error)
	KYCRecords(ctx context.Context, userID int64) ([]*KYCRecord, error)
	PendingKYC(ctx context.Context) ([]*KYCRecord, error)
	AdminKYCRecords(ctx context.Context, status, jurisdiction string) ([]*KYCRecord, error)
	KYCRecord(ctx context.Context, recordID int64) (*KYCRecord, error)

	ListProperties(ctx context.Context, filter PropertyFilter) (*PropertyPage, error)
	FeaturedProperties(ctx context.Context) ([]*Property, error)
	GetProperty(ctx context.Context, propertyID int64) (*Property, error)
	CreateProperty(ctx context.Context, req *PropertyCreateRequest) (*Property, error)
	UpdateProperty(ctx context.Context, propertyID int64, req *PropertyUpdateRequest) (*Property, error)

	UserTransactions(ctx context.Context, userID int64) ([]*UserTransaction, error)
	TransactionStatus(ctx context.Context, userID int64, reference string) (*TransactionStatus, error)
	Portfolio(ctx context.Context, userID int64) (*Portfolio, error)
	PropertyTokens(ctx context.Context, propertyID int64) ([]*Token, error)

	LoginChallenge(ctx context.Context, wallet string) (*LoginChallenge, error)
	WalletLogin(ctx context.Context, req *WalletLoginRequest) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*User, error)
	Logout(ctx context.Context, token string) error

	ChainProperty(ctx context.Context) (*ChainProperty, error)
	NetworkStatus(ctx context.Context) *NetworkInfo
	ChainBalance(ctx context.Context, wallet string) (*WalletBalance, error)
	Health(ctx context.Context) *HealthStatus
}

// APIServer is the public HTTP surface.
type APIServer interface {
	// Start blocks serving requests until Shutdown is called.
	Start() error
	Shutdown() error
}
