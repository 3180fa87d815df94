package fracta

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/fracta-city/fracta/internal/auth"
	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/validation"
)

const tokenTypeBearer = "bearer"

func challengeMessage(wallet, nonce string, issuedAt int64) string {
	return fmt.Sprintf("Fracta.city Login\nWallet: %s\nNonce: %s\nTimestamp: %d", wallet, nonce, issuedAt)
}

func decodeHex(field, value string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X"))
	if err != nil || len(b) == 0 {
		return nil, models.NewValidationError(field + " must be hex encoded")
	}
	return b, nil
}

// LoginChallenge issues a single-use message for the wallet to sign.
func (f *Fracta) LoginChallenge(ctx context.Context, wallet string) (*models.LoginChallenge, error) {
	address, err := validation.ValidateAndNormalizeAddress(wallet)
	if err != nil {
		return nil, models.NewValidationError("invalid wallet address")
	}

	now := f.now()
	nonce := uuid.NewString()
	message := challengeMessage(address, nonce, now.Unix())
	if err := f.store.SaveChallenge(ctx, address, message, f.config.LoginChallengeTTL); err != nil {
		f.logger.Error("Failed to save login challenge", "wallet", address, "error", err)
		return nil, models.NewInternalError("failed to issue login challenge", err)
	}

	return &models.LoginChallenge{
		Wallet:    address,
		Message:   message,
		Nonce:     nonce,
		ExpiresAt: now.Add(f.config.LoginChallengeTTL),
	}, nil
}

// WalletLogin verifies a signed challenge, creates the user on first login and
// issues an access token.
func (f *Fracta) WalletLogin(ctx context.Context, req *models.WalletLoginRequest) (*models.LoginResult, error) {
	address, err := validation.ValidateAndNormalizeAddress(req.WalletAddress)
	if err != nil {
		return nil, models.NewValidationError("invalid wallet address")
	}
	signature, err := decodeHex("signature", req.Signature)
	if err != nil {
		return nil, err
	}

	expected, err := f.store.ConsumeChallenge(ctx, address)
	if errors.Is(err, auth.ErrChallengeNotFound) {
		return nil, models.NewUnauthenticatedError("login challenge not found or expired", err)
	}
	if err != nil {
		f.logger.Error("Failed to consume login challenge", "wallet", address, "error", err)
		return nil, models.NewInternalError("failed to verify login", err)
	}
	if expected != req.Message {
		return nil, models.NewUnauthenticatedError("message does not match the issued challenge", nil)
	}
	signer, err := f.recoverer.RecoverAddress(req.Message, signature)
	if err != nil {
		f.logger.Warn("Wallet signature rejected", "wallet", address, "error", err)
		return nil, models.NewUnauthenticatedError("invalid signature", err)
	}
	if !validation.SameAddress(signer, address) {
		f.logger.Warn("Wallet signature from another address", "wallet", address, "signer", signer)
		return nil, models.NewUnauthenticatedError("invalid signature", nil)
	}

	user, err := f.userForLogin(ctx, address)
	if err != nil {
		return nil, err
	}

	now := f.now()
	if err := f.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, f.storeError(err, "user not found", "failed to record login")
	}
	user.LastLogin = &now

	token, _, err := f.jwt.GenerateAccessToken(user.ID, user.WalletAddress)
	if err != nil {
		f.logger.Error("Failed to sign access token", "user_id", user.ID, "error", err)
		return nil, models.NewInternalError("failed to issue access token", err)
	}

	f.logger.Info("Wallet logged in", "user_id", user.ID, "wallet", address)
	return &models.LoginResult{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(f.jwt.TTL().Seconds()),
		User:        user,
	}, nil
}

// userForLogin loads or creates the wallet's user and applies admin bootstrap.
func (f *Fracta) userForLogin(ctx context.Context, address string) (*models.User, error) {
	user, err := f.repo.GetUserByWallet(ctx, address)
	if errors.Is(err, models.ErrUserNotFound) {
		user = &models.User{
			WalletAddress: address,
			KYCStatus:     models.KYCStatusPending,
			IsActive:      true,
		}
		err = f.repo.CreateUser(ctx, user)
		if errors.Is(err, models.ErrStateConflict) {
			// lost a race with a concurrent first login
			user, err = f.repo.GetUserByWallet(ctx, address)
		} else if err == nil {
			f.logger.Info("User created", "user_id", user.ID, "wallet", address)
		}
	}
	if err != nil {
		return nil, f.storeError(err, "user not found", "failed to load user")
	}

	if !user.IsAdmin && slices.Contains(f.config.AdminWallets, address) {
		if err := f.repo.SetUserAdmin(ctx, user.ID, true); err != nil {
			return nil, f.storeError(err, "user not found", "failed to grant admin")
		}
		user.IsAdmin = true
		f.logger.Info("Admin rights granted", "user_id", user.ID, "wallet", address)
	}
	return user, nil
}

// Authenticate resolves a bearer token to its user.
func (f *Fracta) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := f.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := f.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		f.logger.Error("Failed to check token revocation", "error", err)
		return nil, models.NewInternalError("failed to verify token", err)
	}
	if revoked {
		return nil, models.NewUnauthenticatedError("token has been revoked", nil)
	}

	user, err := f.repo.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.NewUnauthenticatedError("user not found", err)
	}
	if err != nil {
		return nil, f.storeError(err, "user not found", "failed to load user")
	}
	if !validation.SameAddress(user.WalletAddress, claims.Subject) {
		return nil, models.NewUnauthenticatedError("invalid token claims", nil)
	}
	return user, nil
}

// Logout revokes the token for the rest of its lifetime.
func (f *Fracta) Logout(ctx context.Context, token string) error {
	claims, err := f.jwt.ValidateToken(token)
	if err != nil {
		return err
	}
	if err := f.store.Revoke(ctx, claims.ID, f.jwt.RemainingTTL(claims)); err != nil {
		f.logger.Error("Failed to revoke token", "error", err)
		return models.NewInternalError("failed to log out", err)
	}
	f.logger.Info("Wallet logged out", "user_id", claims.UserID)
	return nil
}
