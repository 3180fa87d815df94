package blockchain

//go:generate mockgen -source=../models/chain_reader.go -destination=mocks/mocks.go -package=mocks ChainReader

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fracta-city/fracta/internal/blockchain/mocks"
	"github.com/fracta-city/fracta/internal/metrics"
	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/logger"
)

const contract = "cb57bbbb54cdf60fa666fd741be78f794d4608d67109"

func newTestMirror(t *testing.T, reader models.ChainReader) (*Mirror, *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMirror(reader, 30*time.Second, contract, big.NewInt(3), metrics.New(), logger.NewNop())
	m.now = func() time.Time { return now }
	return m, &now
}

func chainSnapshot(sold int64) *models.SaleSnapshot {
	return &models.SaleSnapshot{
		ContractAddress: contract,
		TokenPrice:      decimal.NewFromInt(119),
		TokensSold:      sold,
		TokensRemaining: 1190 - sold,
		SaleActive:      true,
		Source:          models.SnapshotSourceChain,
	}
}

func TestMirror_NoReaderServesFallback(t *testing.T) {
	m, _ := newTestMirror(t, nil)

	s := m.Snapshot(context.Background())
	assert.Equal(t, models.SnapshotSourceFallback, s.Source)
	assert.True(t, s.TokenPrice.Equal(decimal.NewFromInt(119)))
	assert.Equal(t, int64(1190), s.TokensRemaining)
	assert.False(t, s.SaleActive)

	n := m.Network(context.Background())
	assert.False(t, n.Connected)
	assert.Equal(t, int64(3), n.NetworkID)
}

func TestMirror_CachesWithinTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockChainReader(ctrl)
	m, now := newTestMirror(t, reader)

	reader.EXPECT().SaleSnapshot(gomock.Any()).Return(chainSnapshot(10), nil).Times(1)

	first := m.Snapshot(context.Background())
	*now = now.Add(10 * time.Second)
	second := m.Snapshot(context.Background())

	assert.Equal(t, int64(10), first.TokensSold)
	assert.Equal(t, first, second)

	first.TokensSold = 999
	assert.Equal(t, int64(10), m.Snapshot(context.Background()).TokensSold)
}

func TestMirror_RefreshesWhenStale(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockChainReader(ctrl)
	m, now := newTestMirror(t, reader)

	gomock.InOrder(
		reader.EXPECT().SaleSnapshot(gomock.Any()).Return(chainSnapshot(10), nil),
		reader.EXPECT().SaleSnapshot(gomock.Any()).Return(chainSnapshot(25), nil),
	)

	assert.Equal(t, int64(10), m.Snapshot(context.Background()).TokensSold)
	*now = now.Add(time.Minute)
	assert.Equal(t, int64(25), m.Snapshot(context.Background()).TokensSold)
}

func TestMirror_ServesStaleOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockChainReader(ctrl)
	m, now := newTestMirror(t, reader)

	gomock.InOrder(
		reader.EXPECT().SaleSnapshot(gomock.Any()).Return(chainSnapshot(10), nil),
		reader.EXPECT().SaleSnapshot(gomock.Any()).Return(nil, errors.New("rpc down")),
	)

	m.Snapshot(context.Background())
	*now = now.Add(time.Minute)
	s := m.Snapshot(context.Background())
	assert.Equal(t, models.SnapshotSourceChain, s.Source)
	assert.Equal(t, int64(10), s.TokensSold)
}

func TestMirror_FallbackOnFirstError(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockChainReader(ctrl)
	m, _ := newTestMirror(t, reader)

	reader.EXPECT().SaleSnapshot(gomock.Any()).Return(nil, errors.New("rpc down"))

	s := m.Snapshot(context.Background())
	assert.Equal(t, models.SnapshotSourceFallback, s.Source)
	assert.Equal(t, contract, s.ContractAddress)
}

func TestMirror_RefreshSurvivesCancelledCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockChainReader(ctrl)
	m, _ := newTestMirror(t, reader)

	reader.EXPECT().SaleSnapshot(gomock.Any()).DoAndReturn(func(ctx context.Context) (*models.SaleSnapshot, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return chainSnapshot(30), nil
	})
	reader.EXPECT().NetworkInfo(gomock.Any()).DoAndReturn(func(ctx context.Context) (*models.NetworkInfo, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &models.NetworkInfo{Connected: true, NetworkID: 3}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := m.Snapshot(ctx)
	assert.Equal(t, models.SnapshotSourceChain, s.Source)
	assert.Equal(t, int64(30), s.TokensSold)
	assert.True(t, m.Network(ctx).Connected)
}

func TestMirror_Network(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockChainReader(ctrl)
	m, now := newTestMirror(t, reader)

	gomock.InOrder(
		reader.EXPECT().NetworkInfo(gomock.Any()).Return(&models.NetworkInfo{Connected: true, NetworkID: 3, BlockNumber: 100}, nil),
		reader.EXPECT().NetworkInfo(gomock.Any()).Return(nil, errors.New("dial tcp: refused")),
	)

	n := m.Network(context.Background())
	assert.True(t, n.Connected)
	assert.Equal(t, uint64(100), n.BlockNumber)

	*now = now.Add(time.Minute)
	n = m.Network(context.Background())
	assert.False(t, n.Connected)
	assert.Equal(t, "dial tcp: refused", n.Error)
}

func TestDecodeSaleInfo(t *testing.T) {
	price := new(big.Int).Mul(big.NewInt(119), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

	s, err := decodeSaleInfo([]interface{}{
		price, big.NewInt(40), big.NewInt(1150), big.NewInt(1767225600), big.NewInt(0), true,
	})
	require.NoError(t, err)
	assert.True(t, s.TokenPrice.Equal(decimal.NewFromInt(119)))
	assert.Equal(t, int64(40), s.TokensSold)
	assert.Equal(t, int64(1150), s.TokensRemaining)
	require.NotNil(t, s.SaleStart)
	assert.Equal(t, int64(1767225600), s.SaleStart.Unix())
	assert.Nil(t, s.SaleEnd)
	assert.True(t, s.SaleActive)

	_, err = decodeSaleInfo([]interface{}{price})
	assert.Error(t, err)

	_, err = decodeSaleInfo([]interface{}{price, "x", big.NewInt(0), big.NewInt(0), big.NewInt(0), true})
	assert.Error(t, err)
}

func TestMirror_Balance(t *testing.T) {
	const wallet = "cb0000000000000000000000000000000000000000aa"

	t.Run("no reader", func(t *testing.T) {
		m, _ := newTestMirror(t, nil)

		b := m.Balance(context.Background(), wallet)
		assert.False(t, b.Connected)
		assert.True(t, b.Balance.IsZero())
		assert.Equal(t, contract, b.ContractAddress)
		assert.Equal(t, "chain reader not configured", b.Error)
	})

	t.Run("reads every call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mocks.NewMockChainReader(ctrl)
		m, _ := newTestMirror(t, reader)

		reader.EXPECT().TokenBalance(gomock.Any(), wallet).Return(decimal.NewFromInt(12), nil).Times(2)

		b := m.Balance(context.Background(), wallet)
		assert.True(t, b.Connected)
		assert.True(t, b.Balance.Equal(decimal.NewFromInt(12)))
		assert.Equal(t, wallet, b.WalletAddress)
		assert.Empty(t, b.Error)

		m.Balance(context.Background(), wallet)
	})

	t.Run("read error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mocks.NewMockChainReader(ctrl)
		m, _ := newTestMirror(t, reader)

		reader.EXPECT().TokenBalance(gomock.Any(), wallet).Return(decimal.Zero, errors.New("execution reverted"))

		b := m.Balance(context.Background(), wallet)
		assert.False(t, b.Connected)
		assert.True(t, b.Balance.IsZero())
		assert.Equal(t, "execution reverted", b.Error)
	})
}
