package fracta

import (
	"context"
	"strings"

	"github.com/core-coin/go-core/v2/common"
	"github.com/shopspring/decimal"

	"github.com/fracta-city/fracta/internal/models"
)

const (
	featuredLimit   = 6
	maxPageSize     = 100
	defaultStandard = "ERC-20"
)

// yieldCeiling is the first value a numeric(5,2) yield column cannot hold.
var yieldCeiling = decimal.NewFromInt(1000)

func validJurisdiction(j string) bool {
	return j == models.JurisdictionProspera || j == models.JurisdictionInternational
}

func validKYCType(k string) bool {
	return k == models.KYCTypeProsperaPermit || k == models.KYCTypeInternationalKYC
}

func validateYield(y decimal.Decimal) error {
	if y.IsNegative() || y.GreaterThanOrEqual(yieldCeiling) {
		return models.NewValidationError("expected yield must be between 0 and 999.99")
	}
	return nil
}

// ListProperties pages through active listings, newest first.
func (f *Fracta) ListProperties(ctx context.Context, filter models.PropertyFilter) (*models.PropertyPage, error) {
	if filter.Page < 0 {
		return nil, models.NewValidationError("page must be at least 1")
	}
	if filter.Size < 0 || filter.Size > maxPageSize {
		return nil, models.NewValidationError("size must be between 1 and 100")
	}
	if filter.Jurisdiction != "" && !validJurisdiction(filter.Jurisdiction) {
		return nil, models.NewValidationError("jurisdiction must be prospera or international")
	}
	if filter.Status != "" && !models.IsValidPropertyStatus(filter.Status) {
		return nil, models.NewValidationError("status must be live, coming-soon, sold-out, or closed")
	}
	filter.Search = strings.TrimSpace(filter.Search)

	page, err := f.repo.ListProperties(ctx, filter)
	if err != nil {
		return nil, f.storeError(err, "property not found", "failed to list properties")
	}
	return page, nil
}

// FeaturedProperties returns the newest featured listings for the homepage.
func (f *Fracta) FeaturedProperties(ctx context.Context) ([]*models.Property, error) {
	featured := true
	page, err := f.ListProperties(ctx, models.PropertyFilter{Featured: &featured, Page: 1, Size: featuredLimit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (f *Fracta) GetProperty(ctx context.Context, propertyID int64) (*models.Property, error) {
	return f.getListedProperty(ctx, propertyID)
}

// CreateProperty lists a new property. Supply is fixed from here on.
func (f *Fracta) CreateProperty(ctx context.Context, req *models.PropertyCreateRequest) (*models.Property, error) {
	if err := requireFields(
		requiredField{"name", req.Name},
		requiredField{"location", req.Location},
	); err != nil {
		return nil, err
	}
	if !validJurisdiction(req.Jurisdiction) {
		return nil, models.NewValidationError("jurisdiction must be prospera or international")
	}
	if !validKYCType(req.KYCRequired) {
		return nil, models.NewValidationError("kyc_required must be prospera-permit or international-kyc")
	}
	if !req.TokenPrice.IsPositive() || !req.FullPrice.IsPositive() {
		return nil, models.NewValidationError("prices must be positive")
	}
	if req.TotalTokens < 1 {
		return nil, models.NewValidationError("total_tokens must be at least 1")
	}
	if err := validateYield(req.ExpectedYield); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.PropertyStatusComingSoon
	}
	if !models.IsValidPropertyStatus(status) || status == models.PropertyStatusSoldOut {
		return nil, models.NewValidationError("status must be live, coming-soon, or closed")
	}

	now := f.now()
	property := &models.Property{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Location:      strings.TrimSpace(req.Location),
		Jurisdiction:  req.Jurisdiction,
		KYCRequired:   req.KYCRequired,
		FullPrice:     req.FullPrice,
		TokenPrice:    req.TokenPrice,
		TotalTokens:   req.TotalTokens,
		ExpectedYield: req.ExpectedYield,
		PropertyType:  req.PropertyType,
		SquareFeet:    req.SquareFeet,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		PrimaryImage:  req.PrimaryImage,
		Status:        status,
		ListingDate:   &now,
		TokenStandard: defaultStandard,
		TotalRaised:   decimal.Zero,
		IsActive:      true,
		IsFeatured:    req.IsFeatured,
	}
	if err := f.repo.CreateProperty(ctx, property); err != nil {
		return nil, f.storeError(err, "property not found", "failed to create property")
	}
	f.logger.Info("Property created", "property_id", property.ID, "name", property.Name, "total_tokens", property.TotalTokens)
	return property, nil
}

// UpdateProperty applies the non-nil fields of req. Supply and ledger
// counters cannot be changed here.
func (f *Fracta) UpdateProperty(ctx context.Context, propertyID int64, req *models.PropertyUpdateRequest) (*models.Property, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, models.NewValidationError("name cannot be empty")
	}
	if req.Status != nil && !models.IsValidPropertyStatus(*req.Status) {
		return nil, models.NewValidationError("status must be live, coming-soon, sold-out, or closed")
	}
	if req.ExpectedYield != nil {
		if err := validateYield(*req.ExpectedYield); err != nil {
			return nil, err
		}
	}
	if req.ContractAddress != nil && *req.ContractAddress != "" {
		if _, err := common.HexToAddress(*req.ContractAddress); err != nil {
			return nil, models.NewValidationError("invalid contract address")
		}
	}

	property, err := f.repo.UpdateProperty(ctx, propertyID, func(p *models.Property) error {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			p.Description = req.Description
		}
		if req.Status != nil {
			p.Status = *req.Status
		}
		if req.ExpectedYield != nil {
			p.ExpectedYield = *req.ExpectedYield
		}
		if req.IsFeatured != nil {
			p.IsFeatured = *req.IsFeatured
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}
		if req.ContractAddress != nil {
			p.ContractAddress = optionalStr(req.ContractAddress)
		}
		p.UpdatedAt = f.now()
		return nil
	})
	if err != nil {
		return nil, f.storeError(err, "property not found", "failed to update property")
	}
	f.logger.Info("Property updated", "property_id", property.ID, "status", property.Status, "active", property.IsActive)
	return property, nil
}
