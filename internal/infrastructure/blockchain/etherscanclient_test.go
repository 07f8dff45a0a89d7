package blockchain

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castpass/castpass/internal/application/payment/ledger"
	"github.com/castpass/castpass/internal/domain/payment"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
	"github.com/castpass/castpass/internal/shared/logger"
)

const receiving = "0x9999999999999999999999999999999999999999"

func newTestClient(t *testing.T, handler http.HandlerFunc, opts EtherscanOptions) (*EtherscanClient, *[]url.Values) {
	t.Helper()

	var mu sync.Mutex
	var queries []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query())
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	params := payment.NetworkParams{
		Network:        vo.NetworkBase,
		Endpoint:       server.URL + "/v2/api",
		ChainID:        8453,
		NativeCurrency: "ETH",
		NativeDecimals: 18,
	}
	return NewEtherscanClient(params, "test-key", opts, nil, logger.NewDiscardLogger()), &queries
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestEtherscanClient_ListNativeTransfers(t *testing.T) {
	client, queries := newTestClient(t, respond(`{
		"status": "1",
		"message": "OK",
		"result": [
			{"blockNumber": "200", "timeStamp": "1767225600", "hash": "0xok", "from": "0xAAA", "to": "0x999", "value": "2000000000000000", "isError": "0"},
			{"blockNumber": "199", "timeStamp": "1767225500", "hash": "0xreverted", "from": "0xAAA", "to": "0x999", "value": "9000000000000000", "isError": "1"},
			{"blockNumber": "198", "timeStamp": "bad", "hash": "0xbroken", "from": "0xAAA", "to": "0x999", "value": "1", "isError": "0"}
		]
	}`), EtherscanOptions{PageSize: 25})

	txs, err := client.ListNativeTransfers(context.Background(), vo.NetworkBase, receiving)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, "0xok", tx.Hash)
	assert.Equal(t, "2000000000000000", tx.Value.String())
	assert.Equal(t, uint64(200), tx.BlockNumber)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), tx.Timestamp)
	assert.False(t, tx.IsToken())

	require.Len(t, *queries, 1)
	q := (*queries)[0]
	assert.Equal(t, "8453", q.Get("chainid"))
	assert.Equal(t, "account", q.Get("module"))
	assert.Equal(t, "txlist", q.Get("action"))
	assert.Equal(t, receiving, q.Get("address"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "25", q.Get("offset"))
	assert.Equal(t, "desc", q.Get("sort"))
	assert.Equal(t, "test-key", q.Get("apikey"))
}

func TestEtherscanClient_ListTokenTransfers(t *testing.T) {
	client, queries := newTestClient(t, respond(`{
		"status": "1",
		"message": "OK",
		"result": [
			{"blockNumber": "300", "timeStamp": "1767225600", "hash": "0xusdc", "from": "0xAAA", "to": "0x999", "value": "5000000",
			 "contractAddress": "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", "tokenSymbol": "USDC", "tokenDecimal": "6"}
		]
	}`), EtherscanOptions{})

	txs, err := client.ListTokenTransfers(context.Background(), vo.NetworkBase, receiving)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	require.True(t, tx.IsToken())
	assert.Equal(t, int32(6), *tx.TokenDecimal)
	assert.Equal(t, "USDC", tx.TokenSymbol)
	assert.Equal(t, "5", tx.Amount(18).String())
	assert.Equal(t, "tokentx", (*queries)[0].Get("action"))
	assert.Equal(t, "100", (*queries)[0].Get("offset"))
}

func TestEtherscanClient_NoTransactionsIsEmpty(t *testing.T) {
	client, _ := newTestClient(t, respond(`{"status":"0","message":"No transactions found","result":[]}`), EtherscanOptions{})

	txs, err := client.ListTokenTransfers(context.Background(), vo.NetworkBase, receiving)
	assert.NoError(t, err)
	assert.Nil(t, txs)
}

func TestEtherscanClient_Failures(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		rateLimited bool
	}{
		{
			name:        "rate limited",
			handler:     respond(`{"status":"0","message":"NOTOK","result":"Max rate limit reached, please use API Key for higher rate limit"}`),
			rateLimited: true,
		},
		{
			name:    "invalid key",
			handler: respond(`{"status":"0","message":"NOTOK","result":"Invalid API Key"}`),
		},
		{
			name:    "other envelope",
			handler: respond(`{"status":"0","message":"Query Timeout occured. Please select a smaller result dataset","result":null}`),
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name:    "undecodable body",
			handler: respond(`<html>maintenance</html>`),
		},
		{
			name:    "result is not a list",
			handler: respond(`{"status":"1","message":"OK","result":"oops"}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handler, EtherscanOptions{})

			txs, err := client.ListNativeTransfers(context.Background(), vo.NetworkBase, receiving)
			assert.Nil(t, txs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ledger.ErrQueryFailed)
			assert.Equal(t, tt.rateLimited, errors.Is(err, ledger.ErrRateLimited))

			var qe *ledger.QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, vo.NetworkBase, qe.Network)
			assert.Equal(t, ledger.ActionNativeTransfers, qe.Action)
		})
	}
}

func TestEtherscanClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, EtherscanOptions{Timeout: 50 * time.Millisecond})
	t.Cleanup(func() { close(release) })

	_, err := client.ListNativeTransfers(context.Background(), vo.NetworkBase, receiving)
	assert.ErrorIs(t, err, ledger.ErrQueryFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEtherscanClient_WrongNetwork(t *testing.T) {
	client, queries := newTestClient(t, respond(`{}`), EtherscanOptions{})

	_, err := client.ListNativeTransfers(context.Background(), vo.NetworkMainnet, receiving)
	assert.ErrorIs(t, err, ledger.ErrUnsupportedNetwork)
	assert.Empty(t, *queries)
}
