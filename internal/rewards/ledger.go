// Package rewards keeps the monetary side of habit tracking: the cached running
// balance, withdrawals against it and the streak bonus settlement.
package rewards

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/daystreak/internal/daylog"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

// TotalBalance recomputes the balance from scratch: everything earned by every
// day record minus every withdrawal. This is the source of truth the cached
// total is checked against.
func TotalBalance(logs []*daylog.Log, entries []models.LedgerEntry) models.Cents {
	var total models.Cents
	for _, l := range logs {
		for _, r := range l.Records() {
			total += r.Earned()
		}
	}
	for _, e := range entries {
		total -= e.Amount
	}
	return total
}

// Ledger holds the cached running balance. It is not safe for concurrent use;
// callers serialise access.
type Ledger struct {
	balance models.Cents
}

func NewLedger(balance models.Cents) *Ledger {
	return &Ledger{balance: balance}
}

func (l *Ledger) Balance() models.Cents {
	return l.balance
}

// Apply moves the cached balance by delta and returns the new balance.
func (l *Ledger) Apply(delta models.Cents) models.Cents {
	l.balance += delta
	return l.balance
}

// Withdraw takes amount out of the balance and returns the entry to append.
// Non-positive amounts and amounts above the balance are refused.
func (l *Ledger) Withdraw(amount models.Cents, date string, now time.Time) (models.LedgerEntry, error) {
	if amount <= 0 || amount > l.balance {
		return models.LedgerEntry{}, &apperrors.InsufficientBalanceError{
			Requested: int64(amount),
			Available: int64(l.balance),
		}
	}
	l.balance -= amount
	return models.LedgerEntry{
		ID:        uuid.New().String(),
		Date:      date,
		Amount:    amount,
		CreatedAt: now,
	}, nil
}

// Reconcile replaces the cached balance with the recomputed one and returns
// the drift that was corrected (recomputed minus cached).
func (l *Ledger) Reconcile(recomputed models.Cents) models.Cents {
	drift := recomputed - l.balance
	l.balance = recomputed
	return drift
}
