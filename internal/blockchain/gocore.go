package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/core-coin/go-core/v2/accounts/abi"
	"github.com/core-coin/go-core/v2/accounts/abi/bind"
	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/xcbclient"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/logger"
)

// RPCTimeout bounds every read against the node.
const RPCTimeout = 10 * time.Second

var errNotConnected = errors.New("not connected to the core RPC server")

var _ models.ChainReader = (*Gocore)(nil)

// Gocore reads the property token sale through a go-core RPC node.
type Gocore struct {
	logger          *logger.Logger
	apiURL          string
	contractAddress string
	networkID       *big.Int

	mu       sync.RWMutex
	client   *xcbclient.Client
	contract *bind.BoundContract
}

// NewGocore creates a new Gocore instance.
func NewGocore(apiURL, contractAddress string, networkID *big.Int, logger *logger.Logger) *Gocore {
	return &Gocore{
		apiURL:          apiURL,
		contractAddress: contractAddress,
		networkID:       networkID,
		logger:          logger,
	}
}

func (g *Gocore) Run() error {
	err := g.ConnectToRPC()
	if err != nil {
		return fmt.Errorf("failed to connect to the core RPC server: %w", err)
	}
	err = g.BuildBindings()
	if err != nil {
		return fmt.Errorf("failed to build bindings: %w", err)
	}
	g.logger.Info("Connected to property token contract", "rpc", g.apiURL, "contract", g.contractAddress)
	return nil
}

func (g *Gocore) ConnectToRPC() error {
	client, err := xcbclient.Dial(g.apiURL)
	if err != nil {
		return fmt.Errorf("failed to connect to the core RPC server: %w", err)
	}
	g.mu.Lock()
	g.client = client
	g.mu.Unlock()
	return nil
}

func (g *Gocore) BuildBindings() error {
	address, err := common.HexToAddress(g.contractAddress)
	if err != nil {
		return fmt.Errorf("failed to parse property token contract address: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(PropertyTokenABI))
	if err != nil {
		return fmt.Errorf("failed to parse property token ABI: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return errNotConnected
	}
	g.contract = bind.NewBoundContract(address, parsedABI, g.client, g.client, g.client)
	return nil
}

func (g *Gocore) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		g.client.Close()
		g.client = nil
	}
	g.contract = nil
	return nil
}

func (g *Gocore) bindings() (*xcbclient.Client, *bind.BoundContract, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.client == nil || g.contract == nil {
		return nil, nil, errNotConnected
	}
	return g.client, g.contract, nil
}

// SaleSnapshot reads getSaleInfo and the head block number concurrently.
func (g *Gocore) SaleSnapshot(ctx context.Context) (*models.SaleSnapshot, error) {
	client, contract, err := g.bindings()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, RPCTimeout)
	defer cancel()

	var (
		snapshot *models.SaleSnapshot
		head     uint64
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		results := []interface{}{}
		if err := contract.Call(&bind.CallOpts{Context: egCtx}, &results, "getSaleInfo"); err != nil {
			return fmt.Errorf("failed to call getSaleInfo: %w", err)
		}
		s, err := decodeSaleInfo(results)
		if err != nil {
			return err
		}
		snapshot = s
		return nil
	})
	eg.Go(func() error {
		header, err := client.HeaderByNumber(egCtx, nil)
		if err != nil {
			return fmt.Errorf("failed to get head block: %w", err)
		}
		head = header.Number.Uint64()
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	snapshot.ContractAddress = g.contractAddress
	snapshot.BlockNumber = head
	snapshot.Source = models.SnapshotSourceChain
	snapshot.FetchedAt = time.Now().UTC()
	return snapshot, nil
}

// NetworkInfo reports the node's network id and head block.
func (g *Gocore) NetworkInfo(ctx context.Context) (*models.NetworkInfo, error) {
	client, _, err := g.bindings()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, RPCTimeout)
	defer cancel()

	info := &models.NetworkInfo{Connected: true}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		id, err := client.NetworkID(egCtx)
		if err != nil {
			return fmt.Errorf("failed to get network id: %w", err)
		}
		info.NetworkID = id.Int64()
		return nil
	})
	eg.Go(func() error {
		header, err := client.HeaderByNumber(egCtx, nil)
		if err != nil {
			return fmt.Errorf("failed to get head block: %w", err)
		}
		info.BlockNumber = header.Number.Uint64()
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if g.networkID != nil && info.NetworkID != g.networkID.Int64() {
		g.logger.Warn("Node reports unexpected network id", "expected", g.networkID.String(), "actual", info.NetworkID)
	}
	return info, nil
}

// TokenBalance reads balanceOf for wallet.
func (g *Gocore) TokenBalance(ctx context.Context, wallet string) (decimal.Decimal, error) {
	_, contract, err := g.bindings()
	if err != nil {
		return decimal.Zero, err
	}
	address, err := common.HexToAddress(wallet)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse wallet address: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, RPCTimeout)
	defer cancel()

	results := []interface{}{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &results, "balanceOf", address); err != nil {
		return decimal.Zero, fmt.Errorf("failed to call balanceOf: %w", err)
	}
	if len(results) != 1 {
		return decimal.Zero, fmt.Errorf("balanceOf returned %d values, expected 1", len(results))
	}
	v, ok := results[0].(*big.Int)
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("balanceOf value has unexpected type %T", results[0])
	}
	return decimal.NewFromBigInt(v, -tokenDecimals), nil
}

// decodeSaleInfo maps the getSaleInfo outputs
// (price, sold, remaining, start, end, active) onto a snapshot.
func decodeSaleInfo(results []interface{}) (*models.SaleSnapshot, error) {
	if len(results) != 6 {
		return nil, fmt.Errorf("getSaleInfo returned %d values, expected 6", len(results))
	}

	ints := make([]*big.Int, 5)
	for i := range ints {
		v, ok := results[i].(*big.Int)
		if !ok || v == nil {
			return nil, fmt.Errorf("getSaleInfo value %d has unexpected type %T", i, results[i])
		}
		ints[i] = v
	}
	active, ok := results[5].(bool)
	if !ok {
		return nil, fmt.Errorf("getSaleInfo value 5 has unexpected type %T", results[5])
	}
	if !ints[1].IsInt64() || !ints[2].IsInt64() {
		return nil, errors.New("getSaleInfo token counts overflow int64")
	}

	return &models.SaleSnapshot{
		TokenPrice:      decimal.NewFromBigInt(ints[0], -tokenDecimals),
		TokensSold:      ints[1].Int64(),
		TokensRemaining: ints[2].Int64(),
		SaleStart:       unixTime(ints[3]),
		SaleEnd:         unixTime(ints[4]),
		SaleActive:      active,
	}, nil
}

func unixTime(v *big.Int) *time.Time {
	if v.Sign() <= 0 || !v.IsInt64() {
		return nil
	}
	t := time.Unix(v.Int64(), 0).UTC()
	return &t
}
