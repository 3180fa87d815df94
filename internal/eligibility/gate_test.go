package eligibility

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracta-city/fracta/internal/models"
)

func prosperaInvestor() Subject {
	return Subject{KYCStatus: models.KYCStatusApproved, KYCJurisdiction: models.JurisdictionProspera, IsActive: true}
}

func pilot() Offering {
	return Offering{
		Status:      models.PropertyStatusLive,
		KYCRequired: models.KYCTypeProsperaPermit,
		TotalTokens: 1190,
		TokensSold:  0,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		subject  Subject
		offering Offering
		n        int64
		codes    []models.ReasonCode
		messages []string
	}{
		{
			name:     "eligible prospera investor",
			subject:  prosperaInvestor(),
			offering: pilot(),
			n:        120,
		},
		{
			name:     "pending kyc",
			subject:  Subject{KYCStatus: models.KYCStatusPending, IsActive: true},
			offering: pilot(),
			n:        1,
			codes:    []models.ReasonCode{models.ReasonKYCRequired},
			messages: []string{"KYC verification required"},
		},
		{
			name:     "international investor on prospera property",
			subject:  Subject{KYCStatus: models.KYCStatusApproved, KYCJurisdiction: models.JurisdictionInternational, IsActive: true},
			offering: pilot(),
			n:        1,
			codes:    []models.ReasonCode{models.ReasonJurisdictionMismatch},
			messages: []string{"Prospera permit required for this property"},
		},
		{
			name:    "prospera investor on international property",
			subject: prosperaInvestor(),
			offering: Offering{
				Status:      models.PropertyStatusLive,
				KYCRequired: models.KYCTypeInternationalKYC,
				TotalTokens: 100,
			},
			n: 1,
		},
		{
			name:    "approved without jurisdiction on international property",
			subject: Subject{KYCStatus: models.KYCStatusApproved, IsActive: true},
			offering: Offering{
				Status:      models.PropertyStatusLive,
				KYCRequired: models.KYCTypeInternationalKYC,
				TotalTokens: 100,
			},
			n:     1,
			codes: []models.ReasonCode{models.ReasonJurisdictionMismatch},
		},
		{
			name:     "inactive account",
			subject:  Subject{KYCStatus: models.KYCStatusApproved, KYCJurisdiction: models.JurisdictionProspera},
			offering: pilot(),
			n:        1,
			codes:    []models.ReasonCode{models.ReasonAccountInactive},
			messages: []string{"account is inactive"},
		},
		{
			name:     "over capacity",
			subject:  prosperaInvestor(),
			offering: Offering{Status: models.PropertyStatusLive, KYCRequired: models.KYCTypeProsperaPermit, TotalTokens: 10, TokensSold: 5},
			n:        10,
			codes:    []models.ReasonCode{models.ReasonCapacityExceeded},
			messages: []string{"requested 10 tokens but only 5 remaining"},
		},
		{
			name:     "sold out",
			subject:  prosperaInvestor(),
			offering: Offering{Status: models.PropertyStatusSoldOut, KYCRequired: models.KYCTypeProsperaPermit, TotalTokens: 10, TokensSold: 3},
			n:        1,
			codes:    []models.ReasonCode{models.ReasonPropertyNotLive},
			messages: []string{"property is sold-out"},
		},
		{
			name:     "fully funded does not also report capacity",
			subject:  prosperaInvestor(),
			offering: Offering{Status: models.PropertyStatusLive, KYCRequired: models.KYCTypeProsperaPermit, TotalTokens: 10, TokensSold: 10},
			n:        1,
			codes:    []models.ReasonCode{models.ReasonFullyFunded},
			messages: []string{"property is fully funded"},
		},
		{
			name:     "every reason in decision order",
			subject:  Subject{KYCStatus: models.KYCStatusRejected},
			offering: Offering{Status: models.PropertyStatusClosed, KYCRequired: models.KYCTypeProsperaPermit, TotalTokens: 10, TokensSold: 10},
			n:        1,
			codes: []models.ReasonCode{
				models.ReasonPropertyNotLive,
				models.ReasonFullyFunded,
				models.ReasonKYCRequired,
				models.ReasonAccountInactive,
			},
		},
		{
			name:     "not live and over capacity",
			subject:  prosperaInvestor(),
			offering: Offering{Status: models.PropertyStatusComingSoon, KYCRequired: models.KYCTypeProsperaPermit, TotalTokens: 10, TokensSold: 8},
			n:        3,
			codes:    []models.ReasonCode{models.ReasonPropertyNotLive, models.ReasonCapacityExceeded},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.subject, tt.offering, tt.n)

			assert.Equal(t, len(tt.codes) == 0, result.Eligible)
			assert.Len(t, result.Reasons, len(tt.codes))
			if len(tt.codes) > 0 {
				assert.Equal(t, tt.codes, result.Codes())
			}
			if tt.messages != nil {
				assert.Equal(t, tt.messages, result.Messages())
			}
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	s := Subject{KYCStatus: models.KYCStatusPending, IsActive: false}
	o := Offering{Status: models.PropertyStatusSoldOut, KYCRequired: models.KYCTypeProsperaPermit, TotalTokens: 5, TokensSold: 5}

	first := Evaluate(s, o, 2)
	second := Evaluate(s, o, 2)

	assert.Equal(t, first, second)
}

func TestResultErr(t *testing.T) {
	t.Run("eligible has no error", func(t *testing.T) {
		assert.NoError(t, Evaluate(prosperaInvestor(), pilot(), 1).Err())
	})

	t.Run("capacity first maps to capacity exceeded", func(t *testing.T) {
		o := pilot()
		o.TokensSold = 1185
		err := Evaluate(prosperaInvestor(), o, 10).Err()

		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrCapacityExceeded))
		assert.Equal(t, models.KindCapacityExceeded, models.KindOf(err))
	})

	t.Run("gate rejection carries reason codes", func(t *testing.T) {
		err := Evaluate(Subject{KYCStatus: models.KYCStatusPending, IsActive: true}, pilot(), 1).Err()

		var appErr *models.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.KindAuthorization, appErr.Kind)
		assert.Equal(t, []models.ReasonCode{models.ReasonKYCRequired}, appErr.Codes)
		assert.Equal(t, []string{"KYC verification required"}, appErr.Reasons)
	})
}

func TestResultLedgerErr(t *testing.T) {
	soldOut := pilot()
	soldOut.Status = models.PropertyStatusSoldOut
	soldOut.TokensSold = soldOut.TotalTokens

	tests := []struct {
		name     string
		subject  Subject
		offering Offering
		kind     models.ErrorKind
	}{
		{name: "sold out by the ledger", subject: prosperaInvestor(), offering: soldOut, kind: models.KindCapacityExceeded},
		{
			name:     "short of requested amount",
			subject:  prosperaInvestor(),
			offering: Offering{Status: models.PropertyStatusLive, KYCRequired: models.KYCTypeProsperaPermit, TotalTokens: 10, TokensSold: 5},
			kind:     models.KindCapacityExceeded,
		},
		{
			name:     "marked sold out with supply left",
			subject:  prosperaInvestor(),
			offering: Offering{Status: models.PropertyStatusSoldOut, KYCRequired: models.KYCTypeProsperaPermit, TotalTokens: 10, TokensSold: 5},
			kind:     models.KindAuthorization,
		},
		{
			name:     "sold out and KYC pending",
			subject:  Subject{KYCStatus: models.KYCStatusPending, IsActive: true},
			offering: soldOut,
			kind:     models.KindAuthorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Evaluate(tt.subject, tt.offering, 5).LedgerErr(tt.offering)
			require.Error(t, err)
			assert.Equal(t, tt.kind, models.KindOf(err))
		})
	}

	assert.NoError(t, Evaluate(prosperaInvestor(), pilot(), 5).LedgerErr(pilot()))
}

func TestFromModels(t *testing.T) {
	jurisdiction := models.JurisdictionProspera
	u := &models.User{KYCStatus: models.KYCStatusApproved, KYCJurisdiction: &jurisdiction, IsActive: true}
	p := &models.Property{Status: models.PropertyStatusLive, KYCRequired: models.KYCTypeProsperaPermit, TotalTokens: 1190, TokensSold: 1000}

	assert.Equal(t, prosperaInvestor(), SubjectFromUser(u))
	assert.Equal(t, int64(190), OfferingFromProperty(p).remaining())
	assert.Equal(t, Subject{KYCStatus: models.KYCStatusPending}, SubjectFromUser(&models.User{KYCStatus: models.KYCStatusPending}))
}
