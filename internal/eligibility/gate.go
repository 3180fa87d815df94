// Package eligibility decides whether a user may buy tokens of a property.
// Evaluate is pure: it receives snapshots and performs no I/O.
package eligibility

import (
	"fmt"

	"github.com/fracta-city/fracta/internal/models"
)

// Subject is the investor side of a decision.
type Subject struct {
	KYCStatus       string
	KYCJurisdiction string
	IsActive        bool
}

// Offering is the property side of a decision.
type Offering struct {
	Status      string
	KYCRequired string
	TotalTokens int64
	TokensSold  int64
}

func (o Offering) remaining() int64 {
	return o.TotalTokens - o.TokensSold
}

func (o Offering) fullyFunded() bool {
	return o.TokensSold >= o.TotalTokens
}

// Reason is a single failed rule.
type Reason struct {
	Code    models.ReasonCode `json:"code"`
	Message string            `json:"message"`
}

// Result holds the decision and every failing rule in decision order.
// Reasons is empty iff Eligible.
type Result struct {
	Eligible bool     `json:"eligible"`
	Reasons  []Reason `json:"reasons"`
}

func SubjectFromUser(u *models.User) Subject {
	return Subject{
		KYCStatus:       u.KYCStatus,
		KYCJurisdiction: u.Jurisdiction(),
		IsActive:        u.IsActive,
	}
}

func OfferingFromProperty(p *models.Property) Offering {
	return Offering{
		Status:      p.Status,
		KYCRequired: p.KYCRequired,
		TotalTokens: p.TotalTokens,
		TokensSold:  p.TokensSold,
	}
}

// Evaluate checks a purchase of n tokens. Rule order:
//  1. property status is live
//  2. property is not fully funded
//  3. KYC approved, with prospera jurisdiction for prospera-permit properties
//  4. account is active
//  5. n does not exceed the remaining supply (skipped when already fully funded)
func Evaluate(s Subject, o Offering, n int64) Result {
	reasons := make([]Reason, 0, 2)
	add := func(code models.ReasonCode, msg string) {
		reasons = append(reasons, Reason{Code: code, Message: msg})
	}

	if o.Status != models.PropertyStatusLive {
		add(models.ReasonPropertyNotLive, fmt.Sprintf("property is %s", o.Status))
	}

	funded := o.fullyFunded()
	if funded {
		add(models.ReasonFullyFunded, "property is fully funded")
	}

	approved := s.KYCStatus == models.KYCStatusApproved
	switch {
	case !approved:
		add(models.ReasonKYCRequired, "KYC verification required")
	case o.KYCRequired == models.KYCTypeProsperaPermit && s.KYCJurisdiction != models.JurisdictionProspera:
		add(models.ReasonJurisdictionMismatch, "Prospera permit required for this property")
	case s.KYCJurisdiction != models.JurisdictionProspera && s.KYCJurisdiction != models.JurisdictionInternational:
		add(models.ReasonJurisdictionMismatch, "approved KYC jurisdiction required for this property")
	}

	if !s.IsActive {
		add(models.ReasonAccountInactive, "account is inactive")
	}

	if !funded && n > o.remaining() {
		add(models.ReasonCapacityExceeded,
			fmt.Sprintf("requested %d tokens but only %d remaining", n, o.remaining()))
	}

	return Result{Eligible: len(reasons) == 0, Reasons: reasons}
}

func (r Result) Messages() []string {
	out := make([]string, len(r.Reasons))
	for i, reason := range r.Reasons {
		out[i] = reason.Message
	}
	return out
}

func (r Result) Codes() []models.ReasonCode {
	out := make([]models.ReasonCode, len(r.Reasons))
	for i, reason := range r.Reasons {
		out[i] = reason.Code
	}
	return out
}

// Has reports whether code is among the reasons.
func (r Result) Has(code models.ReasonCode) bool {
	for _, reason := range r.Reasons {
		if reason.Code == code {
			return true
		}
	}
	return false
}

// Err converts a rejection into an application error. A rejection whose first
// reason is capacity yields CapacityExceeded, anything else Authorization.
func (r Result) Err() error {
	if r.Eligible {
		return nil
	}
	codes, msgs := r.Codes(), r.Messages()
	if codes[0] == models.ReasonCapacityExceeded {
		return models.NewCapacityExceededError(msgs[0], codes, msgs)
	}
	return models.NewAuthorizationError("not eligible to invest", codes, msgs)
}

// LedgerErr is Err for a decision taken on a locked property row. When every
// reason comes from exhausted supply (fully funded, sold out with nothing left,
// or short of the requested amount) the rejection is CapacityExceeded.
func (r Result) LedgerErr(o Offering) error {
	if r.Eligible || !r.supplyOnly(o) {
		return r.Err()
	}
	codes, msgs := r.Codes(), r.Messages()
	msg := "not enough tokens remaining"
	if codes[0] == models.ReasonCapacityExceeded {
		msg = msgs[0]
	}
	return models.NewCapacityExceededError(msg, codes, msgs)
}

func (r Result) supplyOnly(o Offering) bool {
	for _, reason := range r.Reasons {
		switch reason.Code {
		case models.ReasonFullyFunded, models.ReasonCapacityExceeded:
		case models.ReasonPropertyNotLive:
			if o.Status != models.PropertyStatusSoldOut || !o.fullyFunded() {
				return false
			}
		default:
			return false
		}
	}
	return true
}
