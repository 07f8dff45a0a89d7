package payment

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
)

const (
	DefaultWindow         = 24 * time.Hour
	DefaultNativeDecimals = 18
	DefaultNativeCurrency = vo.Currency("ETH")
)

// NetworkParams describes how to reach and interpret one network's ledger.
type NetworkParams struct {
	Network        vo.Network
	Endpoint       string
	ChainID        int64
	NativeCurrency vo.Currency
	NativeDecimals int32
	// TokenContracts pins a stablecoin symbol to a contract address.
	// Accepted tokens without an entry are not accepted on this network.
	TokenContracts map[vo.Currency]string
}

// Requirement is what a single transaction must satisfy for one currency.
type Requirement struct {
	Currency  vo.Currency
	MinAmount decimal.Decimal
	Native    bool
	// Decimals applies to the native path; token transfers carry their own.
	Decimals int32
	Contract string
}

// ConfigParams is the unvalidated input of NewConfig.
type ConfigParams struct {
	ReceivingAddress   string
	RequiredAmounts    map[vo.Currency]decimal.Decimal
	AcceptedTokens     []vo.Currency
	SubscriptionMonths int
	Window             time.Duration
	APIKey             string
	Networks           []NetworkParams
}

// Config is the immutable payment configuration shared by every verification.
type Config struct {
	receivingAddress   string
	requiredAmounts    map[vo.Currency]decimal.Decimal
	acceptedTokens     []vo.Currency
	subscriptionMonths int
	window             time.Duration
	apiKey             string
	networks           map[vo.Network]NetworkParams
}

func NewConfig(p ConfigParams) (*Config, error) {
	receiving, err := vo.NormalizeAddress(p.ReceivingAddress)
	if err != nil {
		return nil, fmt.Errorf("receiving address: %w", err)
	}
	if p.SubscriptionMonths <= 0 {
		return nil, fmt.Errorf("subscription months must be positive, got %d", p.SubscriptionMonths)
	}

	window := p.Window
	if window <= 0 {
		window = DefaultWindow
	}

	amounts := make(map[vo.Currency]decimal.Decimal, len(p.RequiredAmounts))
	for currency, amount := range p.RequiredAmounts {
		if !amount.IsPositive() {
			return nil, fmt.Errorf("required amount for %s must be positive", currency)
		}
		amounts[vo.NewCurrency(currency.String())] = amount
	}

	tokens := make([]vo.Currency, 0, len(p.AcceptedTokens))
	for _, token := range p.AcceptedTokens {
		token = vo.NewCurrency(token.String())
		if _, ok := amounts[token]; !ok {
			return nil, fmt.Errorf("accepted token %s has no required amount", token)
		}
		tokens = append(tokens, token)
	}

	if len(p.Networks) == 0 {
		return nil, fmt.Errorf("at least one network must be configured")
	}
	networks := make(map[vo.Network]NetworkParams, len(p.Networks))
	for _, n := range p.Networks {
		params, err := normalizeNetwork(n)
		if err != nil {
			return nil, err
		}
		networks[params.Network] = params
	}

	return &Config{
		receivingAddress:   receiving,
		requiredAmounts:    amounts,
		acceptedTokens:     tokens,
		subscriptionMonths: p.SubscriptionMonths,
		window:             window,
		apiKey:             p.APIKey,
		networks:           networks,
	}, nil
}

func normalizeNetwork(n NetworkParams) (NetworkParams, error) {
	if !n.Network.IsValid() {
		return NetworkParams{}, fmt.Errorf("unsupported network: %q", n.Network)
	}
	if n.Endpoint == "" {
		return NetworkParams{}, fmt.Errorf("network %s: endpoint is required", n.Network)
	}
	if n.NativeCurrency == "" {
		n.NativeCurrency = DefaultNativeCurrency
	}
	n.NativeCurrency = vo.NewCurrency(n.NativeCurrency.String())
	if n.NativeDecimals <= 0 {
		n.NativeDecimals = DefaultNativeDecimals
	}

	contracts := make(map[vo.Currency]string, len(n.TokenContracts))
	for symbol, address := range n.TokenContracts {
		canonical, err := vo.NormalizeAddress(address)
		if err != nil {
			return NetworkParams{}, fmt.Errorf("network %s: token contract for %s: %w", n.Network, symbol, err)
		}
		contracts[vo.NewCurrency(symbol.String())] = canonical
	}
	n.TokenContracts = contracts

	return n, nil
}

func (c *Config) ReceivingAddress() string {
	return c.receivingAddress
}

func (c *Config) SubscriptionMonths() int {
	return c.subscriptionMonths
}

func (c *Config) Window() time.Duration {
	return c.window
}

func (c *Config) APIKey() string {
	return c.apiKey
}

func (c *Config) AcceptedTokens() []vo.Currency {
	out := make([]vo.Currency, len(c.acceptedTokens))
	copy(out, c.acceptedTokens)
	return out
}

func (c *Config) RequiredAmount(currency vo.Currency) (decimal.Decimal, bool) {
	amount, ok := c.requiredAmounts[currency]
	return amount, ok
}

func (c *Config) Network(n vo.Network) (NetworkParams, bool) {
	params, ok := c.networks[n]
	return params, ok
}

// Networks returns the configured networks ordered by name.
func (c *Config) Networks() []NetworkParams {
	out := make([]NetworkParams, 0, len(c.networks))
	for _, params := range c.networks {
		out = append(out, params)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Network < out[j].Network })
	return out
}

// Requirements lists, in matching order, what a payment on network n must
// satisfy: the native currency first when it has a required amount, then
// each accepted token pinned on n in configured order.
func (c *Config) Requirements(n vo.Network) []Requirement {
	params, ok := c.networks[n]
	if !ok {
		return nil
	}

	reqs := make([]Requirement, 0, len(c.acceptedTokens)+1)
	if amount, ok := c.requiredAmounts[params.NativeCurrency]; ok {
		reqs = append(reqs, Requirement{
			Currency:  params.NativeCurrency,
			MinAmount: amount,
			Native:    true,
			Decimals:  params.NativeDecimals,
		})
	}
	for _, token := range c.acceptedTokens {
		contract, pinned := params.TokenContracts[token]
		if !pinned {
			continue
		}
		reqs = append(reqs, Requirement{
			Currency:  token,
			MinAmount: c.requiredAmounts[token],
			Contract:  contract,
		})
	}
	return reqs
}

// UnpinnedTokens lists the accepted tokens that have no contract on network
// n and are therefore skipped there.
func (c *Config) UnpinnedTokens(n vo.Network) []vo.Currency {
	params, ok := c.networks[n]
	if !ok {
		return nil
	}
	var out []vo.Currency
	for _, token := range c.acceptedTokens {
		if _, pinned := params.TokenContracts[token]; !pinned {
			out = append(out, token)
		}
	}
	return out
}

// ExpiresAt returns the end of a subscription that starts at paidAt.
func (c *Config) ExpiresAt(paidAt time.Time) time.Time {
	return paidAt.AddDate(0, c.subscriptionMonths, 0)
}
