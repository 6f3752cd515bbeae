package ledger

import (
	"sync"
	"time"

	"github.com/example/bank-core/internal/money"
)

// AccountType classifies an account for policy purposes. Only checking
// accounts may overdraw, down to the configured overdraft floor.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountBusiness AccountType = "business"
	AccountCredit   AccountType = "credit"
)

// isValidAccountType validates account type
func isValidAccountType(t AccountType) bool {
	validTypes := map[AccountType]bool{
		AccountChecking: true,
		AccountSavings:  true,
		AccountBusiness: true,
		AccountCredit:   true,
	}
	return validTypes[t]
}

// account is the mutable balance holder. Its mutex serializes every
// balance mutation; the Ledger, not the account, decides lock scope and
// ordering. An account never coordinates with another account.
type account struct {
	mu sync.Mutex

	number       string
	customerName string
	customerID   string
	acctType     AccountType

	balance           money.Money
	createdAt         time.Time
	lastTransactionAt time.Time
	active            bool

	// Daily withdrawal tracking, mutated only under mu. day is the start
	// of the calendar day the counter applies to.
	day            time.Time
	withdrawnToday money.Money
}

// setBalance must be called with a.mu held.
func (a *account) setBalance(b money.Money, now time.Time) {
	a.balance = b
	a.lastTransactionAt = now
}

// rollDay resets the daily withdrawal counter when the calendar day has
// changed. Must be called with a.mu held.
func (a *account) rollDay(now time.Time) {
	start := startOfDay(now)
	if !a.day.Equal(start) {
		a.day = start
		a.withdrawnToday = money.Money{}
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// AccountInfo is an immutable snapshot of one account, taken under that
// account's lock. Snapshots of distinct accounts are not mutually
// consistent.
type AccountInfo struct {
	Number            string      `json:"account_number"`
	CustomerName      string      `json:"customer_name"`
	CustomerID        string      `json:"customer_id"`
	Type              AccountType `json:"account_type"`
	Balance           money.Money `json:"balance"`
	CreatedAt         time.Time   `json:"created_at"`
	LastTransactionAt time.Time   `json:"last_transaction_at"`
	Active            bool        `json:"is_active"`
}

// snapshot copies the account's state. Must be called with a.mu held.
func (a *account) snapshot() AccountInfo {
	return AccountInfo{
		Number:            a.number,
		CustomerName:      a.customerName,
		CustomerID:        a.customerID,
		Type:              a.acctType,
		Balance:           a.balance,
		CreatedAt:         a.createdAt,
		LastTransactionAt: a.lastTransactionAt,
		Active:            a.active,
	}
}
