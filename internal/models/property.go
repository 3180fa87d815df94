package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property statuses.
const (
	PropertyStatusComingSoon = "coming-soon"
	PropertyStatusLive       = "live"
	PropertyStatusSoldOut    = "sold-out"
	PropertyStatusClosed     = "closed"
)

var hundred = decimal.NewFromInt(100)

// Property is an investable listing. TotalTokens is fixed at creation and
// TokensSold is only ever changed by the investment ledger.
type Property struct {
	ID          int64   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"column:name;size:200;not null;index"`
	Description *string `json:"description,omitempty" gorm:"column:description;type:text"`
	Location    string  `json:"location" gorm:"column:location;size:200;not null"`

	// Jurisdiction is prospera or international.
	Jurisdiction string `json:"jurisdiction" gorm:"column:jurisdiction;size:20;not null;index"`
	// KYCRequired is prospera-permit or international-kyc.
	KYCRequired string `json:"kyc_required" gorm:"column:kyc_required;size:30;not null"`

	FullPrice     decimal.Decimal `json:"full_price" gorm:"column:full_price;type:numeric(20,2);not null"`
	TokenPrice    decimal.Decimal `json:"token_price" gorm:"column:token_price;type:numeric(10,2);not null"`
	TotalTokens   int64           `json:"total_tokens" gorm:"column:total_tokens;not null;check:chk_total_tokens,total_tokens > 0"`
	TokensSold    int64           `json:"tokens_sold" gorm:"column:tokens_sold;not null;default:0;check:chk_tokens_sold,tokens_sold >= 0 AND tokens_sold <= total_tokens"`
	ExpectedYield decimal.Decimal `json:"expected_yield" gorm:"column:expected_yield;type:numeric(5,2);not null"`

	PropertyType *string `json:"property_type,omitempty" gorm:"column:property_type;size:50"`
	SquareFeet   *int64  `json:"square_feet,omitempty" gorm:"column:square_feet"`
	Bedrooms     *int64  `json:"bedrooms,omitempty" gorm:"column:bedrooms"`
	Bathrooms    *int64  `json:"bathrooms,omitempty" gorm:"column:bathrooms"`
	PrimaryImage *string `json:"primary_image,omitempty" gorm:"column:primary_image;size:500"`

	Status        string     `json:"status" gorm:"column:status;size:20;not null;default:coming-soon;index"`
	ListingDate   *time.Time `json:"listing_date,omitempty" gorm:"column:listing_date"`
	SaleStartDate *time.Time `json:"sale_start_date,omitempty" gorm:"column:sale_start_date"`
	SaleEndDate   *time.Time `json:"sale_end_date,omitempty" gorm:"column:sale_end_date"`

	ContractAddress *string `json:"contract_address,omitempty" gorm:"column:contract_address;size:50"`
	TokenStandard   string  `json:"token_standard" gorm:"column:token_standard;size:10;not null;default:ERC-20"`

	TotalRaised   decimal.Decimal `json:"total_raised" gorm:"column:total_raised;type:numeric(20,2);not null;default:0"`
	InvestorCount int64           `json:"investor_count" gorm:"column:investor_count;not null;default:0"`

	IsActive   bool `json:"is_active" gorm:"column:is_active;not null;default:true"`
	IsFeatured bool `json:"is_featured" gorm:"column:is_featured;not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// TokensRemaining is total_tokens - tokens_sold.
func (p *Property) TokensRemaining() int64 {
	return p.TotalTokens - p.TokensSold
}

// FundingPercentage is the sold share of supply in percent, rounded to 2 places.
func (p *Property) FundingPercentage() decimal.Decimal {
	if p.TotalTokens == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(p.TokensSold).
		Mul(hundred).
		Div(decimal.NewFromInt(p.TotalTokens)).
		Round(2)
}

func (p *Property) IsFullyFunded() bool {
	return p.TokensSold >= p.TotalTokens
}

func (p *Property) RequiresProsperaPermit() bool {
	return p.KYCRequired == KYCTypeProsperaPermit
}

// MinimumInvestment is the price of one token.
func (p *Property) MinimumInvestment() decimal.Decimal {
	return p.TokenPrice
}

// IsValidPropertyStatus reports whether s is a known property status.
func IsValidPropertyStatus(s string) bool {
	switch s {
	case PropertyStatusComingSoon, PropertyStatusLive, PropertyStatusSoldOut, PropertyStatusClosed:
		return true
	}
	return false
}
