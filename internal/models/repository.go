package models

import (
	"context"
	"time"
)

// PropertyFilter narrows a property listing. Zero values mean "any".
type PropertyFilter struct {
	Jurisdiction string
	Status       string
	// Search matches name, location or description case-insensitively.
	Search   string
	Featured *bool
	Page     int
	Size     int
}

// PropertyPage is one page of a property listing.
type PropertyPage struct {
	Items   []*Property `json:"properties"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Size    int         `json:"size"`
	HasNext bool        `json:"has_next"`
}

type Repository interface {
	Ping(ctx context.Context) error

	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByWallet(ctx context.Context, wallet string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
	SetUserActive(ctx context.Context, userID int64, active bool) error
	SetUserAdmin(ctx context.Context, userID int64, admin bool) error
	// SetUserEmail fails with StateConflict when another user holds the address.
	SetUserEmail(ctx context.Context, userID int64, email string) error

	CreateKYCRecord(ctx context.Context, record *KYCRecord) error
	GetKYCRecord(ctx context.Context, id int64) (*KYCRecord, error)
	// ListKYCRecordsByUser returns the user's records, newest first.
	ListKYCRecordsByUser(ctx context.Context, userID int64) ([]*KYCRecord, error)
	// LatestKYCRecord returns ErrKYCRecordNotFound when the user has none.
	LatestKYCRecord(ctx context.Context, userID int64) (*KYCRecord, error)
	// ListKYCRecordsByStatus lists records in submission order. An empty status lists all.
	ListKYCRecordsByStatus(ctx context.Context, status string) ([]*KYCRecord, error)
	// ReviewKYC locks the record and its owner and calls fn with both. When fn
	// returns nil both rows are saved in the same transaction, otherwise nothing is written.
	ReviewKYC(ctx context.Context, recordID int64, fn func(record *KYCRecord, user *User) error) error

	CreateProperty(ctx context.Context, property *Property) error
	GetProperty(ctx context.Context, id int64) (*Property, error)
	ListProperties(ctx context.Context, filter PropertyFilter) (*PropertyPage, error)
	// UpdateProperty applies fn to the locked row. total_tokens and tokens_sold
	// are never written by this call.
	UpdateProperty(ctx context.Context, id int64, fn func(property *Property) error) (*Property, error)

	// ReserveTokens locks the property row and calls fn with it. When fn returns
	// nil the property counters and every row created through tx are committed
	// together; when it returns an error nothing is written.
	ReserveTokens(ctx context.Context, propertyID int64, fn func(property *Property, tx LedgerTx) error) error

	ListUserTransactions(ctx context.Context, userID int64) ([]*UserTransaction, error)
	GetInvestmentByReference(ctx context.Context, userID int64, reference string) (*Investment, error)
	ListPropertyTokens(ctx context.Context, propertyID int64) ([]*Token, error)
}

// LedgerTx is the write surface available inside ReserveTokens.
type LedgerTx interface {
	GetUser(userID int64) (*User, error)
	HasInvested(userID, propertyID int64) (bool, error)
	CreateInvestment(investment *Investment) error
	// LastTokenNumber returns 0 when no token was minted for the property.
	LastTokenNumber(propertyID int64) (int64, error)
	CreateToken(token *Token) error
}
