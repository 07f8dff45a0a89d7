// Package ledger defines how the application reads transfers from an
// external ledger-query service.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/castpass/castpass/internal/domain/payment"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
)

var (
	// ErrQueryFailed marks a query that did not produce a trustworthy answer:
	// transport failure, timeout, non-success envelope or undecodable body.
	// It is distinct from a successful query that found nothing.
	ErrQueryFailed = errors.New("ledger query failed")

	// ErrRateLimited is wrapped together with ErrQueryFailed when the service
	// rejected the call for exceeding its rate limit.
	ErrRateLimited = errors.New("ledger rate limit exceeded")

	ErrUnsupportedNetwork = errors.New("unsupported ledger network")
)

// Client lists transfers addressed to an account, newest first. A nil slice
// with a nil error means the query succeeded and found nothing.
type Client interface {
	ListNativeTransfers(ctx context.Context, network vo.Network, address string) ([]payment.Transaction, error)
	ListTokenTransfers(ctx context.Context, network vo.Network, address string) ([]payment.Transaction, error)
}

// Action names one kind of ledger listing.
type Action string

const (
	ActionNativeTransfers Action = "txlist"
	ActionTokenTransfers  Action = "tokentx"
)

// QueryError describes a failed ledger query. It matches ErrQueryFailed with
// errors.Is.
type QueryError struct {
	Network vo.Network
	Action  Action
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("ledger query %s on %s failed: %v", e.Action, e.Network, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailed
}

// IsRetryable reports whether err is a ledger failure worth retrying later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrQueryFailed)
}
