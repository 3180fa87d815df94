package fracta

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"

	"github.com/fracta-city/fracta/internal/eligibility"
	"github.com/fracta-city/fracta/internal/metrics"
	"github.com/fracta-city/fracta/internal/models"
)

var errAllMinted = models.NewCapacityExceededError("all tokens have been minted",
	[]models.ReasonCode{models.ReasonCapacityExceeded}, []string{"all tokens have been minted"})

func validateAmount(amount int64) error {
	if amount < 1 {
		return models.NewValidationError("token amount must be at least 1")
	}
	return nil
}

// CheckEligibility runs the eligibility gate without writing anything.
func (f *Fracta) CheckEligibility(ctx context.Context, userID, propertyID, amount int64) (*models.EligibilityReport, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	user, err := f.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	property, err := f.getListedProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	result := eligibility.Evaluate(eligibility.SubjectFromUser(user), eligibility.OfferingFromProperty(property), amount)
	if !result.Eligible {
		f.logger.Debug("Eligibility check rejected", "user_id", userID, "property_id", propertyID, "codes", result.Codes())
	}

	return &models.EligibilityReport{
		CanInvest:         result.Eligible,
		Reasons:           result.Messages(),
		Codes:             result.Codes(),
		RequestedTokens:   amount,
		PropertyStatus:    property.Status,
		TokensRemaining:   property.TokensRemaining(),
		MinimumInvestment: property.MinimumInvestment(),
		UserKYCStatus:     user.KYCStatus,
		UserJurisdiction:  user.KYCJurisdiction,
	}, nil
}

// Purchase buys amount tokens of a property. The gate is evaluated against the
// locked property row, and the tokens_sold increment is committed together
// with the confirmed investment.
func (f *Fracta) Purchase(ctx context.Context, userID, propertyID, amount int64) (*models.PurchaseResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var (
		buyer      *models.User
		property   models.Property
		investment *models.Investment
	)
	err := f.repo.ReserveTokens(ctx, propertyID, func(p *models.Property, tx models.LedgerTx) error {
		if !p.IsActive {
			return models.NewNotFoundError("property not found", models.ErrPropertyNotFound)
		}
		user, err := tx.GetUser(userID)
		if err != nil {
			return f.storeError(err, "user not found", "failed to load user")
		}
		if err := f.gate(user, p, amount); err != nil {
			return err
		}
		invested, err := tx.HasInvested(userID, p.ID)
		if err != nil {
			return err
		}

		total := p.TokenPrice.Mul(decimal.NewFromInt(amount))
		reserve(p, amount, total)
		if !invested {
			p.InvestorCount++
		}

		now := f.now()
		inv := &models.Investment{
			UserID:               userID,
			PropertyID:           p.ID,
			TokensPurchased:      amount,
			TokenPriceAtPurchase: p.TokenPrice,
			TotalAmount:          total,
			TransactionHash:      transactionReference(userID, p.ID),
			ContractAddress:      p.ContractAddress,
			Status:               models.InvestmentStatusConfirmed,
			CreatedAt:            now,
			ConfirmedAt:          &now,
		}
		if err := tx.CreateInvestment(inv); err != nil {
			return err
		}

		buyer, property, investment = user, *p, inv
		return nil
	})
	if err != nil {
		f.metrics.ObservePurchase(outcomeOf(err), amount)
		return nil, f.ledgerError(err, "purchase failed", "user_id", userID, "property_id", propertyID, "amount", amount)
	}

	f.metrics.ObservePurchase(metrics.OutcomeSuccess, amount)
	f.logger.Info("Tokens purchased",
		"user_id", userID,
		"property_id", propertyID,
		"tokens", amount,
		"total", investment.TotalAmount.String(),
		"tokens_sold", property.TokensSold,
		"reference", investment.TransactionHash)

	f.notify(&models.Notification{
		Kind:            models.NotificationPurchaseConfirmed,
		Wallet:          buyer.WalletAddress,
		Email:           buyer.Email,
		PropertyName:    property.Name,
		Tokens:          amount,
		Amount:          investment.TotalAmount,
		TransactionHash: investment.TransactionHash,
	})

	return &models.PurchaseResult{
		Success:         true,
		TransactionRef:  investment.TransactionHash,
		TokensPurchased: amount,
		TotalCost:       investment.TotalAmount,
		Investment:      investment,
	}, nil
}

// MintToken creates the next numbered token of a property for the user.
func (f *Fracta) MintToken(ctx context.Context, userID, propertyID int64) (*models.Token, error) {
	var token *models.Token
	err := f.repo.ReserveTokens(ctx, propertyID, func(p *models.Property, tx models.LedgerTx) error {
		if !p.IsActive {
			return models.NewNotFoundError("property not found", models.ErrPropertyNotFound)
		}
		user, err := tx.GetUser(userID)
		if err != nil {
			return f.storeError(err, "user not found", "failed to load user")
		}
		if err := f.gate(user, p, 1); err != nil {
			return err
		}

		last, err := tx.LastTokenNumber(p.ID)
		if err != nil {
			return err
		}
		next := last + 1
		if next > p.TotalTokens {
			return errAllMinted
		}

		reserve(p, 1, p.TokenPrice)
		t := &models.Token{
			TokenNumber: next,
			PropertyID:  p.ID,
			OwnerID:     userID,
			MintPrice:   p.TokenPrice,
			MintedAt:    f.now(),
		}
		if err := tx.CreateToken(t); err != nil {
			return err
		}
		token = t
		return nil
	})
	if err != nil {
		f.metrics.ObserveMint(outcomeOf(err))
		return nil, f.ledgerError(err, "mint failed", "user_id", userID, "property_id", propertyID)
	}

	f.metrics.ObserveMint(metrics.OutcomeSuccess)
	f.logger.Info("Token minted", "user_id", userID, "property_id", propertyID, "token_number", token.TokenNumber)
	return token, nil
}

// gate evaluates eligibility on the locked snapshot. Losing a race for the
// last tokens is reported as CapacityExceeded even when the winner sold the
// property out.
func (f *Fracta) gate(user *models.User, p *models.Property, amount int64) error {
	offering := eligibility.OfferingFromProperty(p)
	result := eligibility.Evaluate(eligibility.SubjectFromUser(user), offering, amount)
	if result.Eligible {
		return nil
	}
	f.metrics.ObserveRejection(reasonLabels(result.Codes()))
	return result.LedgerErr(offering)
}

// reserve applies a sale of n tokens worth total to the locked property.
func reserve(p *models.Property, n int64, total decimal.Decimal) {
	p.TokensSold += n
	p.TotalRaised = p.TotalRaised.Add(total)
	if p.IsFullyFunded() {
		p.Status = models.PropertyStatusSoldOut
	}
}

func (f *Fracta) ledgerError(err error, msg string, keysAndValues ...interface{}) error {
	kv := append(keysAndValues, "error", err)
	switch models.KindOf(err) {
	case models.KindAuthorization, models.KindCapacityExceeded:
		f.logger.Warn(msg+": not eligible", kv...)
	case models.KindStateConflict:
		f.logger.Warn(msg+": conflict", kv...)
	}
	return f.storeError(err, "property not found", msg)
}

func outcomeOf(err error) string {
	switch models.KindOf(err) {
	case models.KindAuthorization, models.KindCapacityExceeded, models.KindNotFound, models.KindValidation:
		return metrics.OutcomeRejected
	case models.KindStateConflict:
		return metrics.OutcomeConflict
	}
	return metrics.OutcomeError
}

func reasonLabels(codes []models.ReasonCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

// transactionReference is a 0x-prefixed keccak-256 hex digest, unique per purchase.
func transactionReference(userID, propertyID int64) string {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "%d|%d|%s", userID, propertyID, uuid.NewString())
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

func (f *Fracta) UserTransactions(ctx context.Context, userID int64) ([]*models.UserTransaction, error) {
	txs, err := f.repo.ListUserTransactions(ctx, userID)
	if err != nil {
		return nil, f.storeError(err, "user not found", "failed to list transactions")
	}
	return txs, nil
}

// TransactionStatus looks up a purchase by reference. References belonging to
// other users are reported as missing.
func (f *Fracta) TransactionStatus(ctx context.Context, userID int64, reference string) (*models.TransactionStatus, error) {
	if reference == "" {
		return nil, models.NewValidationError("transaction reference is required")
	}
	inv, err := f.repo.GetInvestmentByReference(ctx, userID, reference)
	if err != nil {
		if errors.Is(err, models.ErrInvestmentNotFound) {
			return nil, models.NewNotFoundError("transaction not found", err)
		}
		return nil, f.storeError(err, "transaction not found", "failed to load transaction")
	}
	return &models.TransactionStatus{
		Hash:        inv.TransactionHash,
		Status:      inv.Status,
		BlockNumber: inv.BlockNumber,
		ConfirmedAt: inv.ConfirmedAt,
	}, nil
}

// Portfolio sums the user's investments.
func (f *Fracta) Portfolio(ctx context.Context, userID int64) (*models.Portfolio, error) {
	txs, err := f.UserTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	portfolio := &models.Portfolio{TotalInvested: decimal.Zero}
	properties := make(map[int64]struct{})
	for _, tx := range txs {
		portfolio.TotalInvested = portfolio.TotalInvested.Add(tx.TotalAmount)
		portfolio.TotalTokens += tx.TokensPurchased
		properties[tx.PropertyID] = struct{}{}
	}
	portfolio.PropertiesCount = len(properties)
	portfolio.Investments = len(txs)
	return portfolio, nil
}

func (f *Fracta) PropertyTokens(ctx context.Context, propertyID int64) ([]*models.Token, error) {
	if _, err := f.getListedProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	tokens, err := f.repo.ListPropertyTokens(ctx, propertyID)
	if err != nil {
		return nil, f.storeError(err, "property not found", "failed to list tokens")
	}
	return tokens, nil
}
