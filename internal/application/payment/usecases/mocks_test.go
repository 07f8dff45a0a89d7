package usecases

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/castpass/castpass/internal/domain/entitlement"
	"github.com/castpass/castpass/internal/domain/payment"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
)

const (
	receivingAddress = "0x9999999999999999999999999999999999999999"
	payerAddress     = "0x1111111111111111111111111111111111111111"
	otherAddress     = "0x2222222222222222222222222222222222222222"
	usdcContract     = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	usdtContract     = "0xdac17f958d2ee523a2206206994597c13d831ec7"
)

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type mockLedgerClient struct {
	mock.Mock
}

func (m *mockLedgerClient) ListNativeTransfers(ctx context.Context, network vo.Network, address string) ([]payment.Transaction, error) {
	args := m.Called(ctx, network, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Transaction), args.Error(1)
}

func (m *mockLedgerClient) ListTokenTransfers(ctx context.Context, network vo.Network, address string) ([]payment.Transaction, error) {
	args := m.Called(ctx, network, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Transaction), args.Error(1)
}

type mockEntitlementRepository struct {
	mock.Mock
}

func (m *mockEntitlementRepository) Upsert(ctx context.Context, e *entitlement.Entitlement) (*entitlement.Entitlement, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entitlement.Entitlement), args.Error(1)
}

func (m *mockEntitlementRepository) GetByIdentity(ctx context.Context, identity entitlement.Identity) (*entitlement.Entitlement, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entitlement.Entitlement), args.Error(1)
}

func (m *mockEntitlementRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func testConfig() *payment.Config {
	cfg, err := payment.NewConfig(payment.ConfigParams{
		ReceivingAddress: receivingAddress,
		RequiredAmounts: map[vo.Currency]decimal.Decimal{
			"ETH":  decimal.RequireFromString("0.002"),
			"USDC": decimal.NewFromInt(5),
			"USDT": decimal.NewFromInt(5),
		},
		AcceptedTokens:     []vo.Currency{"USDC", "USDT"},
		SubscriptionMonths: 1,
		Networks: []payment.NetworkParams{
			{
				Network:        vo.NetworkMainnet,
				Endpoint:       "https://api.etherscan.io/v2/api",
				ChainID:        1,
				TokenContracts: map[vo.Currency]string{"USDC": usdcContract, "USDT": usdtContract},
			},
			{
				Network:        vo.NetworkBase,
				Endpoint:       "https://api.etherscan.io/v2/api",
				ChainID:        8453,
				TokenContracts: map[vo.Currency]string{"USDC": "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	return cfg
}

func tokenTransfer(hash, symbol string, value int64, decimals int32, age time.Duration) payment.Transaction {
	d := decimals
	contract := usdcContract
	if symbol == "USDT" {
		contract = usdtContract
	}
	return payment.Transaction{
		Hash:            hash,
		From:            payerAddress,
		To:              receivingAddress,
		Value:           big.NewInt(value),
		Timestamp:       fixedNow.Add(-age),
		BlockNumber:     100,
		TokenSymbol:     symbol,
		TokenDecimal:    &d,
		ContractAddress: contract,
	}
}

func nativeTransfer(hash string, wei *big.Int, age time.Duration) payment.Transaction {
	return payment.Transaction{
		Hash:        hash,
		From:        payerAddress,
		To:          receivingAddress,
		Value:       wei,
		Timestamp:   fixedNow.Add(-age),
		BlockNumber: 200,
	}
}

func mustIdentity(fid uint64, wallet string) entitlement.Identity {
	id, err := entitlement.NewIdentity(fid, wallet)
	if err != nil {
		panic(err)
	}
	return id
}
