package blockchain

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/fracta-city/fracta/internal/metrics"
	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/logger"
)

// Pilot sale values served when the contract cannot be read.
var (
	FallbackTokenPrice  = decimal.NewFromInt(119)
	FallbackTotalTokens = int64(1190)
)

var _ models.ChainMirror = (*Mirror)(nil)

// FallbackSnapshot is the static pilot sale state. The sale is reported inactive.
func FallbackSnapshot(contractAddress string, now time.Time) *models.SaleSnapshot {
	return &models.SaleSnapshot{
		ContractAddress: contractAddress,
		TokenPrice:      FallbackTokenPrice,
		TokensSold:      0,
		TokensRemaining: FallbackTotalTokens,
		SaleActive:      false,
		Source:          models.SnapshotSourceFallback,
		FetchedAt:       now,
	}
}

// Mirror caches chain reads for a TTL and degrades to the fallback snapshot.
type Mirror struct {
	logger          *logger.Logger
	metrics         *metrics.Metrics
	reader          models.ChainReader
	ttl             time.Duration
	contractAddress string
	networkID       *big.Int
	now             func() time.Time

	group singleflight.Group

	cacheMutex sync.RWMutex
	snapshot   *models.SaleSnapshot
	snapshotAt time.Time
	network    *models.NetworkInfo
	networkAt  time.Time

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMirror creates a Mirror. reader may be nil when no contract is configured.
func NewMirror(
	reader models.ChainReader,
	ttl time.Duration,
	contractAddress string,
	networkID *big.Int,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Mirror {
	ctx, cancel := context.WithCancel(context.Background())
	return &Mirror{
		logger:          logger,
		metrics:         metrics,
		reader:          reader,
		ttl:             ttl,
		contractAddress: contractAddress,
		networkID:       networkID,
		now:             func() time.Time { return time.Now().UTC() },
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Snapshot returns the cached sale state, refreshing it when stale. A stale
// value is preferred over the fallback when the refresh fails.
func (m *Mirror) Snapshot(ctx context.Context) *models.SaleSnapshot {
	if m.reader == nil {
		m.metrics.ObserveChainRead(models.SnapshotSourceFallback)
		return FallbackSnapshot(m.contractAddress, m.now())
	}

	m.cacheMutex.RLock()
	cached, at := m.snapshot, m.snapshotAt
	m.cacheMutex.RUnlock()
	if cached != nil && m.now().Sub(at) < m.ttl {
		return copySnapshot(cached)
	}

	v, err, _ := m.group.Do("snapshot", func() (interface{}, error) {
		ctx, cancel := refreshContext(ctx)
		defer cancel()
		return m.refreshSnapshot(ctx)
	})
	if err != nil {
		if cached != nil {
			m.logger.Warn("Serving stale sale snapshot", "error", err, "age", m.now().Sub(at))
			return copySnapshot(cached)
		}
		m.logger.Warn("Serving fallback sale snapshot", "error", err)
		m.metrics.ObserveChainRead(models.SnapshotSourceFallback)
		return FallbackSnapshot(m.contractAddress, m.now())
	}
	return copySnapshot(v.(*models.SaleSnapshot))
}

func (m *Mirror) refreshSnapshot(ctx context.Context) (*models.SaleSnapshot, error) {
	s, err := m.reader.SaleSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	m.metrics.ObserveChainRead(models.SnapshotSourceChain)

	m.cacheMutex.Lock()
	m.snapshot = s
	m.snapshotAt = m.now()
	m.cacheMutex.Unlock()

	m.logger.Debug("Sale snapshot refreshed", "block", s.BlockNumber, "tokens_sold", s.TokensSold)
	return s, nil
}

// Network returns the cached network status. Failures are reported in the
// result, never returned.
func (m *Mirror) Network(ctx context.Context) *models.NetworkInfo {
	if m.reader == nil {
		return m.disconnected("chain reader not configured")
	}

	m.cacheMutex.RLock()
	cached, at := m.network, m.networkAt
	m.cacheMutex.RUnlock()
	if cached != nil && m.now().Sub(at) < m.ttl {
		n := *cached
		return &n
	}

	v, err, _ := m.group.Do("network", func() (interface{}, error) {
		ctx, cancel := refreshContext(ctx)
		defer cancel()
		info, err := m.reader.NetworkInfo(ctx)
		if err != nil {
			return nil, err
		}
		m.cacheMutex.Lock()
		m.network = info
		m.networkAt = m.now()
		m.cacheMutex.Unlock()
		return info, nil
	})
	if err != nil {
		m.logger.Warn("Failed to read network info", "error", err)
		return m.disconnected(err.Error())
	}
	n := *v.(*models.NetworkInfo)
	return &n
}

// Balance reads a wallet's token balance. Balances are not cached; failures
// are reported in the result, never returned.
func (m *Mirror) Balance(ctx context.Context, wallet string) *models.WalletBalance {
	balance := &models.WalletBalance{
		WalletAddress:   wallet,
		ContractAddress: m.contractAddress,
		Balance:         decimal.Zero,
	}
	if m.reader == nil {
		balance.Error = "chain reader not configured"
		return balance
	}

	v, err := m.reader.TokenBalance(ctx, wallet)
	if err != nil {
		m.logger.Warn("Failed to read token balance", "wallet", wallet, "error", err)
		balance.Error = err.Error()
		return balance
	}
	m.metrics.ObserveChainRead(models.SnapshotSourceChain)
	balance.Balance = v
	balance.Connected = true
	return balance
}

// refreshContext detaches a shared refresh from the cancellation of the
// request that happened to start it.
func refreshContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), RPCTimeout)
}

func (m *Mirror) disconnected(reason string) *models.NetworkInfo {
	info := &models.NetworkInfo{Connected: false, Error: reason}
	if m.networkID != nil {
		info.NetworkID = m.networkID.Int64()
	}
	return info
}

// StartPeriodicUpdate keeps the snapshot warm so reads rarely wait on the node.
func (m *Mirror) StartPeriodicUpdate(interval time.Duration) {
	if m.reader == nil || interval <= 0 {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		backoff := 5 * time.Second
		maxBackoff := 5 * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if _, err := m.refreshSnapshot(m.ctx); err != nil {
				m.logger.Error("Failed to refresh sale snapshot, retrying...", "error", err, "retry_in", backoff)
				select {
				case <-time.After(backoff):
					backoff = min(backoff*2, maxBackoff)
					continue
				case <-m.ctx.Done():
					return
				}
			}
			backoff = 5 * time.Second

			select {
			case <-ticker.C:
			case <-m.ctx.Done():
				m.logger.Info("Sale snapshot updates stopped")
				return
			}
		}
	}()
}

// Stop ends periodic updates.
func (m *Mirror) Stop() {
	m.cancel()
	m.wg.Wait()
}

func copySnapshot(s *models.SaleSnapshot) *models.SaleSnapshot {
	c := *s
	if s.SaleStart != nil {
		t := *s.SaleStart
		c.SaleStart = &t
	}
	if s.SaleEnd != nil {
		t := *s.SaleEnd
		c.SaleEnd = &t
	}
	return &c
}
