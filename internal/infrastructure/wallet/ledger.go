package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"svw.info/blockpuzzle/internal/ports"
)

// Entry is one credit booked to the ledger.
type Entry struct {
	Amount  int       `json:"amount"`
	Balance int       `json:"balance"`
	At      time.Time `json:"at"`
}

// Ledger is an in-process coin balance. The room and furniture economy that
// spends coins lives outside this module; it only reads the balance.
type Ledger struct {
	mu      sync.Mutex
	balance int
	entries []Entry
	now     func() time.Time
}

func NewLedger(opening int) *Ledger {
	return &Ledger{balance: opening, now: time.Now}
}

func (l *Ledger) Credit(ctx context.Context, amount int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, fmt.Errorf("negative credit %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount == 0 {
		return l.balance, nil
	}
	l.balance += amount
	l.entries = append(l.entries, Entry{Amount: amount, Balance: l.balance, At: l.now()})
	return l.balance, nil
}

func (l *Ledger) Balance(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, nil
}

// History returns booked credits, oldest first. Zero credits are not booked.
func (l *Ledger) History() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

var _ ports.Wallet = (*Ledger)(nil)
