package payment

import (
	"fmt"
	"time"

	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
)

// Attempt tracks one verification call from Pending to a terminal state.
type Attempt struct {
	id         string
	status     vo.VerificationStatus
	reason     string
	startedAt  time.Time
	finishedAt time.Time
}

func NewAttempt(id string, now time.Time) *Attempt {
	return &Attempt{
		id:        id,
		status:    vo.VerificationStatusPending,
		startedAt: now,
	}
}

func (a *Attempt) ID() string                    { return a.id }
func (a *Attempt) Status() vo.VerificationStatus { return a.status }
func (a *Attempt) Reason() string                { return a.reason }
func (a *Attempt) StartedAt() time.Time          { return a.startedAt }
func (a *Attempt) FinishedAt() time.Time         { return a.finishedAt }

func (a *Attempt) StartScanning() error {
	return a.transition(vo.VerificationStatusScanning, "", time.Time{})
}

func (a *Attempt) Match(now time.Time) error {
	return a.transition(vo.VerificationStatusMatched, "", now)
}

func (a *Attempt) NoMatch(reason string, now time.Time) error {
	return a.transition(vo.VerificationStatusUnmatched, reason, now)
}

func (a *Attempt) Fail(reason string, now time.Time) error {
	return a.transition(vo.VerificationStatusError, reason, now)
}

func (a *Attempt) transition(next vo.VerificationStatus, reason string, now time.Time) error {
	if !a.status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition(a.status, next)
	}
	a.status = next
	a.reason = reason
	if next.IsTerminal() {
		a.finishedAt = now
	}
	return nil
}

// ErrInvalidStatusTransition returns an error for invalid status transitions
func ErrInvalidStatusTransition(from, to vo.VerificationStatus) error {
	return fmt.Errorf("invalid verification status transition from %s to %s", from, to)
}
