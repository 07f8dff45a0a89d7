package payment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
)

func validConfigParams() ConfigParams {
	return ConfigParams{
		ReceivingAddress: "0x4A7C0FB1E07B3A1F1D0B0E8A5B6C1E0F9D8C7B6A",
		RequiredAmounts: map[vo.Currency]decimal.Decimal{
			"ETH":  decimal.RequireFromString("0.002"),
			"usdc": decimal.NewFromInt(5),
			"USDT": decimal.NewFromInt(5),
		},
		AcceptedTokens:     []vo.Currency{"USDC", "usdt"},
		SubscriptionMonths: 1,
		APIKey:             "test-key",
		Networks: []NetworkParams{
			{
				Network:        vo.NetworkMainnet,
				Endpoint:       "https://api.etherscan.io/v2/api",
				ChainID:        1,
				TokenContracts: map[vo.Currency]string{
					"usdc": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
					"USDT": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
				},
			},
			{
				Network:        vo.NetworkBase,
				Endpoint:       "https://api.etherscan.io/v2/api",
				ChainID:        8453,
				TokenContracts: map[vo.Currency]string{"USDC": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"},
			},
		},
	}
}

func TestNewConfig_Normalizes(t *testing.T) {
	cfg, err := NewConfig(validConfigParams())
	require.NoError(t, err)

	assert.Equal(t, "0x4a7c0fb1e07b3a1f1d0b0e8a5b6c1e0f9d8c7b6a", cfg.ReceivingAddress())
	assert.Equal(t, DefaultWindow, cfg.Window())
	assert.Equal(t, []vo.Currency{"USDC", "USDT"}, cfg.AcceptedTokens())

	amount, ok := cfg.RequiredAmount("USDC")
	require.True(t, ok)
	assert.True(t, amount.Equal(decimal.NewFromInt(5)))

	mainnet, ok := cfg.Network(vo.NetworkMainnet)
	require.True(t, ok)
	assert.Equal(t, vo.Currency("ETH"), mainnet.NativeCurrency)
	assert.Equal(t, int32(18), mainnet.NativeDecimals)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", mainnet.TokenContracts["USDC"])

	networks := cfg.Networks()
	require.Len(t, networks, 2)
	assert.Equal(t, vo.NetworkBase, networks[0].Network)
}

func TestConfig_RequirementsOrderNativeFirst(t *testing.T) {
	cfg, err := NewConfig(validConfigParams())
	require.NoError(t, err)

	reqs := cfg.Requirements(vo.NetworkMainnet)
	require.Len(t, reqs, 3)

	assert.Equal(t, vo.Currency("ETH"), reqs[0].Currency)
	assert.True(t, reqs[0].Native)
	assert.Equal(t, int32(18), reqs[0].Decimals)

	assert.Equal(t, vo.Currency("USDC"), reqs[1].Currency)
	assert.False(t, reqs[1].Native)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", reqs[1].Contract)

	assert.Equal(t, vo.Currency("USDT"), reqs[2].Currency)
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", reqs[2].Contract)

	assert.Empty(t, cfg.Requirements("polygon"))
}

func TestConfig_UnpinnedTokensAreNotAccepted(t *testing.T) {
	cfg, err := NewConfig(validConfigParams())
	require.NoError(t, err)

	reqs := cfg.Requirements(vo.NetworkBase)
	require.Len(t, reqs, 2)
	assert.Equal(t, vo.Currency("ETH"), reqs[0].Currency)
	assert.Equal(t, vo.Currency("USDC"), reqs[1].Currency)
	for _, req := range reqs {
		assert.NotEqual(t, vo.Currency("USDT"), req.Currency)
	}

	assert.Equal(t, []vo.Currency{"USDT"}, cfg.UnpinnedTokens(vo.NetworkBase))
	assert.Empty(t, cfg.UnpinnedTokens(vo.NetworkMainnet))
	assert.Nil(t, cfg.UnpinnedTokens("polygon"))
}

func TestConfig_RequirementsWithoutNativeAmount(t *testing.T) {
	params := validConfigParams()
	delete(params.RequiredAmounts, "ETH")

	cfg, err := NewConfig(params)
	require.NoError(t, err)

	reqs := cfg.Requirements(vo.NetworkMainnet)
	require.Len(t, reqs, 2)
	assert.False(t, reqs[0].Native)
}

func TestConfig_ExpiresAtAddsCalendarMonths(t *testing.T) {
	params := validConfigParams()
	params.SubscriptionMonths = 3
	cfg, err := NewConfig(params)
	require.NoError(t, err)

	paidAt := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 4, 15, 8, 30, 0, 0, time.UTC), cfg.ExpiresAt(paidAt))
}

func TestNewConfig_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ConfigParams)
	}{
		{"bad receiving address", func(p *ConfigParams) { p.ReceivingAddress = "0x1234" }},
		{"zero months", func(p *ConfigParams) { p.SubscriptionMonths = 0 }},
		{"non-positive amount", func(p *ConfigParams) { p.RequiredAmounts["USDT"] = decimal.Zero }},
		{"token without amount", func(p *ConfigParams) { p.AcceptedTokens = append(p.AcceptedTokens, "DAI") }},
		{"no networks", func(p *ConfigParams) { p.Networks = nil }},
		{"unknown network", func(p *ConfigParams) { p.Networks[0].Network = "polygon" }},
		{"missing endpoint", func(p *ConfigParams) { p.Networks[1].Endpoint = "" }},
		{"bad contract", func(p *ConfigParams) { p.Networks[0].TokenContracts["USDC"] = "usdc.eth" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validConfigParams()
			tt.mutate(&params)

			_, err := NewConfig(params)
			assert.Error(t, err)
		})
	}
}
