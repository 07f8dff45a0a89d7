package payment

import (
	"strings"
	"time"
)

// Matcher finds a qualifying payment in a newest-first transaction list.
type Matcher struct {
	receivingAddress string
	now              func() time.Time
}

// NewMatcher builds a matcher for payments to receivingAddress. now defaults
// to time.Now.
func NewMatcher(receivingAddress string, now func() time.Time) *Matcher {
	if now == nil {
		now = time.Now
	}
	return &Matcher{
		receivingAddress: strings.TrimSpace(receivingAddress),
		now:              now,
	}
}

// FindMatch returns the first transaction in txs that was sent by payer to
// the receiving address, satisfies req and is younger than window. Multiple
// partial payments are never summed.
func (m *Matcher) FindMatch(txs []Transaction, payer string, req Requirement, window time.Duration) *Transaction {
	payer = strings.TrimSpace(payer)
	if payer == "" || m.receivingAddress == "" {
		return nil
	}
	if window <= 0 {
		window = DefaultWindow
	}
	now := m.now()

	for _, tx := range txs {
		if !strings.EqualFold(strings.TrimSpace(tx.From), payer) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(tx.To), m.receivingAddress) {
			continue
		}
		if !m.satisfies(tx, req) {
			continue
		}
		if now.Sub(tx.Timestamp) >= window {
			continue
		}
		match := tx
		return &match
	}
	return nil
}

func (m *Matcher) satisfies(tx Transaction, req Requirement) bool {
	if req.Native {
		if tx.IsToken() {
			return false
		}
	} else {
		if !tx.IsToken() || !req.Currency.Matches(tx.TokenSymbol) {
			return false
		}
		// a token requirement without a pinned contract never matches
		if req.Contract == "" || !strings.EqualFold(tx.ContractAddress, req.Contract) {
			return false
		}
	}
	return tx.Amount(req.Decimals).GreaterThanOrEqual(req.MinAmount)
}
