package blockchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/castpass/castpass/internal/application/payment/ledger"
	"github.com/castpass/castpass/internal/domain/payment"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
	"github.com/castpass/castpass/internal/shared/logger"
	"github.com/castpass/castpass/internal/shared/utils/logutil"
)

const (
	// DefaultRequestTimeout bounds a single ledger call
	DefaultRequestTimeout = 10 * time.Second
	// DefaultPageSize is the number of newest transfers fetched per call
	DefaultPageSize = 100
	// Maximum response body size for blockchain API (1MB)
	maxBlockchainResponseSize = 1 << 20
	// envelope reasons are echoed into errors and logs
	maxEnvelopeDetail = 200

	msgNoTransactions = "No transactions found"
	msgNotOK          = "NOTOK"
)

// etherscanResponse is the envelope shared by every account action
type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// etherscanTransfer covers both txlist and tokentx rows
type etherscanTransfer struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
	IsError         string `json:"isError"`
}

// EtherscanOptions tunes an EtherscanClient. Zero values pick defaults.
type EtherscanOptions struct {
	Timeout    time.Duration
	PageSize   int
	HTTPClient *http.Client
}

// EtherscanClient lists transfers of one network through an
// Etherscan-compatible account API.
type EtherscanClient struct {
	params     payment.NetworkParams
	apiKey     string
	pageSize   int
	timeout    time.Duration
	httpClient *http.Client
	throttle   *Throttle
	logger     logger.Interface
}

// NewEtherscanClient creates a client for params.Network. Clients sharing an
// API key should share throttle; nil disables throttling.
func NewEtherscanClient(params payment.NetworkParams, apiKey string, opts EtherscanOptions, th *Throttle, logger logger.Interface) *EtherscanClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRequestTimeout
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &EtherscanClient{
		params:     params,
		apiKey:     apiKey,
		pageSize:   opts.PageSize,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		throttle:   th,
		logger:     logger.With("network", params.Network),
	}
}

var _ ledger.Client = (*EtherscanClient)(nil)

// ListNativeTransfers returns the newest native transfers of address.
// Reverted transactions are dropped.
func (c *EtherscanClient) ListNativeTransfers(ctx context.Context, network vo.Network, address string) ([]payment.Transaction, error) {
	rows, err := c.fetch(ctx, network, ledger.ActionNativeTransfers, address)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	txs := make([]payment.Transaction, 0, len(rows))
	for _, row := range rows {
		if row.IsError == "1" {
			continue
		}
		tx, err := c.toTransaction(row, false)
		if err != nil {
			c.logger.Warnw("skipping malformed transfer", "tx_hash", row.Hash, "error", err)
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// ListTokenTransfers returns the newest ERC-20 transfers of address.
func (c *EtherscanClient) ListTokenTransfers(ctx context.Context, network vo.Network, address string) ([]payment.Transaction, error) {
	rows, err := c.fetch(ctx, network, ledger.ActionTokenTransfers, address)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	txs := make([]payment.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := c.toTransaction(row, true)
		if err != nil {
			c.logger.Warnw("skipping malformed transfer", "tx_hash", row.Hash, "error", err)
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (c *EtherscanClient) fetch(ctx context.Context, network vo.Network, action ledger.Action, address string) ([]etherscanTransfer, error) {
	if network != c.params.Network {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnsupportedNetwork, network)
	}

	fail := func(err error) error {
		return &ledger.QueryError{Network: network, Action: action, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(action, address), nil)
	if err != nil {
		return nil, fail(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(fmt.Errorf("failed to fetch transactions: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(fmt.Errorf("unexpected HTTP status %d", resp.StatusCode))
	}

	var apiResp etherscanResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBlockchainResponseSize)).Decode(&apiResp); err != nil {
		return nil, fail(fmt.Errorf("failed to decode response: %w", err))
	}

	if apiResp.Status != "1" {
		if strings.HasPrefix(apiResp.Message, msgNoTransactions) {
			return nil, nil
		}
		return nil, fail(envelopeError(apiResp))
	}

	var rows []etherscanTransfer
	if err := json.Unmarshal(apiResp.Result, &rows); err != nil {
		return nil, fail(fmt.Errorf("failed to unmarshal transfers: %w", err))
	}

	c.logger.Debugw("ledger query finished",
		"action", action,
		"count", len(rows),
		"duration", time.Since(started),
	)
	return rows, nil
}

func (c *EtherscanClient) requestURL(action ledger.Action, address string) string {
	q := url.Values{}
	if c.params.ChainID > 0 {
		q.Set("chainid", strconv.FormatInt(c.params.ChainID, 10))
	}
	q.Set("module", "account")
	q.Set("action", string(action))
	q.Set("address", address)
	q.Set("page", "1")
	q.Set("offset", strconv.Itoa(c.pageSize))
	q.Set("sort", "desc")
	q.Set("apikey", c.apiKey)

	sep := "?"
	if strings.Contains(c.params.Endpoint, "?") {
		sep = "&"
	}
	return c.params.Endpoint + sep + q.Encode()
}

// envelopeError describes a non-success envelope. NOTOK carries the reason
// as a string result.
func envelopeError(resp etherscanResponse) error {
	var detail string
	_ = json.Unmarshal(resp.Result, &detail)
	detail = logutil.TruncateForLog(detail, maxEnvelopeDetail)

	if resp.Message == msgNotOK && strings.Contains(strings.ToLower(detail), "rate limit") {
		return fmt.Errorf("%w: %s", ledger.ErrRateLimited, detail)
	}
	if detail != "" {
		return fmt.Errorf("etherscan API error: %s: %s", resp.Message, detail)
	}
	return fmt.Errorf("etherscan API error: %s", resp.Message)
}

func (c *EtherscanClient) toTransaction(row etherscanTransfer, token bool) (payment.Transaction, error) {
	value, ok := new(big.Int).SetString(row.Value, 10)
	if !ok {
		return payment.Transaction{}, fmt.Errorf("invalid value %q", row.Value)
	}
	ts, err := strconv.ParseInt(row.TimeStamp, 10, 64)
	if err != nil {
		return payment.Transaction{}, fmt.Errorf("invalid timestamp %q", row.TimeStamp)
	}
	block, _ := strconv.ParseUint(row.BlockNumber, 10, 64)

	tx := payment.Transaction{
		Hash:        row.Hash,
		From:        row.From,
		To:          row.To,
		Value:       value,
		Timestamp:   time.Unix(ts, 0).UTC(),
		BlockNumber: block,
	}
	if !token {
		return tx, nil
	}

	decimals, err := strconv.ParseInt(row.TokenDecimal, 10, 32)
	if err != nil {
		return payment.Transaction{}, errors.New("invalid token decimals")
	}
	d := int32(decimals)
	tx.TokenSymbol = row.TokenSymbol
	tx.TokenDecimal = &d
	tx.ContractAddress = row.ContractAddress
	return tx, nil
}
