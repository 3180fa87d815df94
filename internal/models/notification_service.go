package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Notification kinds.
const (
	NotificationKYCSubmitted      = "kyc_submitted"
	NotificationKYCReviewed       = "kyc_reviewed"
	NotificationPurchaseConfirmed = "purchase_confirmed"
)

type NotificationService interface {
	SendNotification(ctx context.Context, notification *Notification)
}

type Notification struct {
	Kind   string  `json:"kind"`
	Wallet string  `json:"wallet"`
	Email  *string `json:"email,omitempty"`

	KYCRecordID int64  `json:"kyc_record_id,omitempty"`
	KYCType     string `json:"kyc_type,omitempty"`
	KYCStatus   string `json:"kyc_status,omitempty"`
	Note        string `json:"note,omitempty"`

	PropertyName    string          `json:"property_name,omitempty"`
	Tokens          int64           `json:"tokens,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionHash string          `json:"transaction_hash,omitempty"`
}

// ToAdmin reports whether the notification goes to the operators' chat.
func (n *Notification) ToAdmin() bool {
	return n.Kind == NotificationKYCSubmitted
}

func (n *Notification) Subject() string {
	switch n.Kind {
	case NotificationKYCSubmitted:
		return "New KYC submission"
	case NotificationKYCReviewed:
		return "Your KYC verification was " + n.KYCStatus
	case NotificationPurchaseConfirmed:
		return "Investment confirmed: " + n.PropertyName
	}
	return "Fracta notification"
}

func (n *Notification) String() string {
	var b strings.Builder
	switch n.Kind {
	case NotificationKYCSubmitted:
		fmt.Fprintf(&b, "KYC record #%d (%s) submitted by %s and awaiting review.", n.KYCRecordID, n.KYCType, n.Wallet)
	case NotificationKYCReviewed:
		fmt.Fprintf(&b, "KYC record #%d for %s is now %s.", n.KYCRecordID, n.Wallet, n.KYCStatus)
		if n.Note != "" {
			fmt.Fprintf(&b, "\nNote: %s", n.Note)
		}
	case NotificationPurchaseConfirmed:
		fmt.Fprintf(&b, "Purchase of %d tokens of %s confirmed.\nTotal: %s USD\nReference: %s",
			n.Tokens, n.PropertyName, n.Amount.StringFixed(2), n.TransactionHash)
	default:
		fmt.Fprintf(&b, "Notification for %s", n.Wallet)
	}
	return b.String()
}
