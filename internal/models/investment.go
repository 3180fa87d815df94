package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment statuses.
const (
	InvestmentStatusPending   = "pending"
	InvestmentStatusConfirmed = "confirmed"
	InvestmentStatusFailed    = "failed"
	InvestmentStatusRefunded  = "refunded"
)

// Investment is a ledger entry for a bulk token purchase. It is only created
// by the ledger, together with the matching tokens_sold increment.
type Investment struct {
	ID         int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID     int64 `json:"user_id" gorm:"column:user_id;index;not null"`
	PropertyID int64 `json:"property_id" gorm:"column:property_id;index;not null"`

	TokensPurchased      int64           `json:"tokens_purchased" gorm:"column:tokens_purchased;not null;check:chk_tokens_purchased,tokens_purchased > 0"`
	TokenPriceAtPurchase decimal.Decimal `json:"token_price_at_purchase" gorm:"column:token_price_at_purchase;type:numeric(10,2);not null"`
	TotalAmount          decimal.Decimal `json:"total_amount" gorm:"column:total_amount;type:numeric(20,2);not null"`

	// TransactionHash is the reference returned to the caller.
	TransactionHash string  `json:"transaction_hash" gorm:"column:transaction_hash;size:66;uniqueIndex;not null"`
	BlockNumber     *int64  `json:"block_number,omitempty" gorm:"column:block_number"`
	ContractAddress *string `json:"contract_address,omitempty" gorm:"column:contract_address;size:50"`

	Status        string  `json:"status" gorm:"column:status;size:20;not null;default:pending"`
	PaymentMethod *string `json:"payment_method,omitempty" gorm:"column:payment_method;size:30"`

	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;index"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty" gorm:"column:confirmed_at"`
}

func (Investment) TableName() string {
	return "investments"
}

// UserTransaction is an investment joined with its property name.
type UserTransaction struct {
	Investment
	PropertyName string `json:"property_name"`
}

// Portfolio summarises a user's investments.
type Portfolio struct {
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalTokens     int64           `json:"total_tokens"`
	PropertiesCount int             `json:"properties_count"`
	Investments     int             `json:"investments"`
}
