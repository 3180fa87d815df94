package fracta

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fracta-city/fracta/internal/blockchain"
	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/validation"
)

// Display values of the pilot property when its catalog row is absent.
const (
	pilotName     = "Duna Residences Studio"
	pilotLocation = "Roatán, Prospera ZEDE"
)

var (
	pilotFullPrice     = decimal.NewFromInt(119000)
	pilotExpectedYield = decimal.RequireFromString("8.5")
)

// ChainProperty merges the mirrored sale state with the pilot catalog row.
// The result is display data and never feeds the ledger.
func (f *Fracta) ChainProperty(ctx context.Context) (*models.ChainProperty, error) {
	out := &models.ChainProperty{
		Name:          pilotName,
		Location:      pilotLocation,
		FullPrice:     pilotFullPrice,
		ExpectedYield: pilotExpectedYield,
		KYCRequired:   models.KYCTypeProsperaPermit,
		TotalTokens:   blockchain.FallbackTotalTokens,
		Sale:          f.mirror.Snapshot(ctx),
	}

	if f.config.PilotPropertyID <= 0 {
		return out, nil
	}
	p, err := f.repo.GetProperty(ctx, f.config.PilotPropertyID)
	switch {
	case models.IsNotFound(err):
		f.logger.Debug("Pilot property not in catalog", "property_id", f.config.PilotPropertyID)
	case err != nil:
		f.logger.Warn("Failed to load pilot property", "property_id", f.config.PilotPropertyID, "error", err)
	case p.IsActive:
		out.Name = p.Name
		out.Location = p.Location
		out.FullPrice = p.FullPrice
		out.ExpectedYield = p.ExpectedYield
		out.KYCRequired = p.KYCRequired
		out.TotalTokens = p.TotalTokens
		out.PropertyID = &p.ID
	}
	return out, nil
}

// NetworkStatus never fails; connectivity problems are reported in the result.
func (f *Fracta) NetworkStatus(ctx context.Context) *models.NetworkInfo {
	return f.mirror.Network(ctx)
}

// ChainBalance reads the wallet's property token balance. Only a malformed
// address is an error; chain failures are reported in the result.
func (f *Fracta) ChainBalance(ctx context.Context, wallet string) (*models.WalletBalance, error) {
	address, err := validation.ValidateAndNormalizeAddress(wallet)
	if err != nil {
		return nil, models.NewValidationError("invalid wallet address")
	}
	return f.mirror.Balance(ctx, address), nil
}
