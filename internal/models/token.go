package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Token is a single numbered unit minted for a property.
// Numbers per property are contiguous starting at 1.
type Token struct {
	// ID is the unique identifier for the token row.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// TokenNumber is the per-property sequence number.
	TokenNumber int64 `json:"token_number" gorm:"column:token_number;not null;uniqueIndex:idx_property_token_number"`
	// PropertyID is the property the token belongs to.
	PropertyID int64 `json:"property_id" gorm:"column:property_id;not null;uniqueIndex:idx_property_token_number"`
	// OwnerID is the user who minted the token.
	OwnerID int64 `json:"owner_id" gorm:"column:owner_id;index;not null"`
	// MintPrice is the property's token price at mint time.
	MintPrice decimal.Decimal `json:"mint_price" gorm:"column:mint_price;type:numeric(10,2);not null"`
	// CurrentPrice is set when the token is listed for resale.
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty" gorm:"column:current_price;type:numeric(10,2)"`
	IsForSale    bool             `json:"is_for_sale" gorm:"column:is_for_sale;not null;default:false"`
	MintedAt     time.Time        `json:"minted_at" gorm:"column:minted_at"`
}

func (Token) TableName() string {
	return "tokens"
}
