package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot sources.
const (
	SnapshotSourceChain    = "chain"
	SnapshotSourceFallback = "fallback"
)

// SaleSnapshot is the on-chain sale state of the tracked property.
// It is display data only.
type SaleSnapshot struct {
	ContractAddress string          `json:"contract_address"`
	TokenPrice      decimal.Decimal `json:"token_price"`
	TokensSold      int64           `json:"tokens_sold"`
	TokensRemaining int64           `json:"tokens_remaining"`
	SaleStart       *time.Time      `json:"sale_start,omitempty"`
	SaleEnd         *time.Time      `json:"sale_end,omitempty"`
	SaleActive      bool            `json:"sale_active"`
	BlockNumber     uint64          `json:"block_number"`
	Source          string          `json:"source"`
	FetchedAt       time.Time       `json:"fetched_at"`
}

// NetworkInfo describes the connected chain.
type NetworkInfo struct {
	Connected   bool   `json:"connected"`
	NetworkID   int64  `json:"network_id"`
	BlockNumber uint64 `json:"block_number"`
	Error       string `json:"error,omitempty"`
}

// WalletBalance is a wallet's holding of the property token. Balance is zero
// and Error is set when the chain could not be read.
type WalletBalance struct {
	WalletAddress   string          `json:"wallet_address"`
	ContractAddress string          `json:"contract_address"`
	Balance         decimal.Decimal `json:"balance"`
	Connected       bool            `json:"connected"`
	Error           string          `json:"error,omitempty"`
}

// ChainReader reads sale state for the single tracked property contract.
type ChainReader interface {
	SaleSnapshot(ctx context.Context) (*SaleSnapshot, error)
	NetworkInfo(ctx context.Context) (*NetworkInfo, error)
	TokenBalance(ctx context.Context, wallet string) (decimal.Decimal, error)
}

// ChainMirror serves cached chain data and never fails; it falls back to
// static data when the chain is unavailable.
type ChainMirror interface {
	Snapshot(ctx context.Context) *SaleSnapshot
	Network(ctx context.Context) *NetworkInfo
	Balance(ctx context.Context, wallet string) *WalletBalance
}
