// Package ledger implements an in-memory transactional bank ledger: a
// registry of accounts with exclusively-locked balances, mutated only by
// atomic deposit, withdraw and transfer operations, and an append-only
// transaction log usable for auditing.
//
// Locking discipline: each account carries its own mutex; a registry mutex
// serializes account creation; the log has its own mutex. Operations that
// lock two accounts always acquire the locks in ascending account-number
// order, so concurrent transfers between the same pair of accounts cannot
// deadlock. The log mutex is only ever taken while account locks are held,
// never the other way around.
package ledger

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/bank-core/internal/money"
)

// accountNumberSpace is the size of the 10-digit account number space.
var accountNumberSpace = big.NewInt(10_000_000_000)

// retryCanary is the generation retry count above which the ledger logs a
// warning, as an early signal of account-number space exhaustion.
const retryCanary = 3

// Ledger owns the account registry and the transaction log. All mutation
// goes through its methods; no account or log entry is shared mutable
// state outside of them.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*account

	logMu sync.Mutex
	seq   uint64
	log   []Transaction

	limits Limits
	logger *zap.Logger

	// External collaborators, injectable for tests.
	validCustomerID func(string) bool
	now             func() time.Time
	rng             io.Reader
}

// New creates an empty ledger with the given admission policy. A nil
// logger disables logging.
func New(limits Limits, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		accounts:        make(map[string]*account),
		limits:          limits,
		logger:          logger,
		validCustomerID: ValidCustomerID,
		now:             time.Now,
		rng:             rand.Reader,
	}
}

// CreateAccount registers a new account and returns its account number.
// A positive initial deposit is recorded as a completed deposit
// transaction; a negative one is rejected with ErrInvalidArgument and
// leaves no trace.
func (l *Ledger) CreateAccount(customerName, customerID string, t AccountType, initialDeposit money.Money) (string, error) {
	if strings.TrimSpace(customerName) == "" {
		return "", fmt.Errorf("%w: customer name cannot be empty", ErrInvalidArgument)
	}
	if !l.validCustomerID(customerID) {
		return "", fmt.Errorf("%w: invalid customer id format %q", ErrInvalidArgument, customerID)
	}
	if !isValidAccountType(t) {
		return "", fmt.Errorf("%w: invalid account type %q", ErrInvalidArgument, t)
	}
	if initialDeposit.IsNegative() {
		return "", fmt.Errorf("%w: initial deposit cannot be negative", ErrInvalidArgument)
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	number, err := l.generateAccountNumber()
	if err != nil {
		return "", err
	}

	l.accounts[number] = &account{
		number:            number,
		customerName:      customerName,
		customerID:        customerID,
		acctType:          t,
		balance:           initialDeposit,
		createdAt:         now,
		lastTransactionAt: now,
		active:            true,
		day:               startOfDay(now),
	}

	if initialDeposit.IsPositive() {
		l.appendCompleted(newTransaction("", number, initialDeposit, KindDeposit, "Initial deposit", now))
	}

	return number, nil
}

// generateAccountNumber draws random 10-digit numbers until one is free.
// Must be called with l.mu held. The number space vastly exceeds any
// plausible account count, so collisions are rare; repeated retries are
// logged as a canary.
func (l *Ledger) generateAccountNumber() (string, error) {
	attempts := 0
	for {
		n, err := rand.Int(l.rng, accountNumberSpace)
		if err != nil {
			return "", fmt.Errorf("generate account number: %w", err)
		}
		attempts++

		number := fmt.Sprintf("%010d", n)
		if _, taken := l.accounts[number]; !taken {
			if attempts > retryCanary {
				l.logger.Warn("account number generation retried",
					zap.Int("attempts", attempts),
					zap.Int("registered_accounts", len(l.accounts)))
			}
			return number, nil
		}
	}
}

// Deposit credits amount to the account. It returns false when the
// account is missing or inactive; that is an expected outcome, not an
// error. The balance mutation and the log append happen while the account
// lock is held, so they are atomic relative to every other operation on
// the same account.
func (l *Ledger) Deposit(accountNumber string, amount money.Money, description string) (bool, error) {
	if !amount.IsPositive() {
		return false, fmt.Errorf("%w: deposit amount must be positive", ErrInvalidArgument)
	}

	a := l.resolve(accountNumber)
	if a == nil {
		return false, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.active {
		return false, nil
	}

	newBalance, err := a.balance.Add(amount)
	if err != nil {
		return false, err
	}

	now := l.now()
	a.setBalance(newBalance, now)
	l.appendCompleted(newTransaction("", accountNumber, amount, KindDeposit, orDefault(description, "Deposit"), now))
	return true, nil
}

// Withdraw debits amount from the account if policy admits it: the
// post-withdrawal balance must stay above the type-specific floor and the
// daily withdrawal cap must not be exceeded. A policy decline returns
// false and mutates nothing.
func (l *Ledger) Withdraw(accountNumber string, amount money.Money, description string) (bool, error) {
	if !amount.IsPositive() {
		return false, fmt.Errorf("%w: withdrawal amount must be positive", ErrInvalidArgument)
	}

	a := l.resolve(accountNumber)
	if a == nil {
		return false, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.active {
		return false, nil
	}

	now := l.now()
	ok, err := l.canWithdraw(a, amount, now)
	if err != nil || !ok {
		return false, err
	}

	newBalance, err := a.balance.Sub(amount)
	if err != nil {
		return false, err
	}
	spent, err := a.withdrawnToday.Add(amount)
	if err != nil {
		return false, err
	}

	a.setBalance(newBalance, now)
	a.withdrawnToday = spent
	l.appendCompleted(newTransaction(accountNumber, "", amount, KindWithdrawal, orDefault(description, "Withdrawal"), now))
	return true, nil
}

// Transfer atomically moves amount from one account to another, debiting
// the source amount plus the transfer fee. The two account locks are
// always acquired in ascending account-number order regardless of
// direction, which rules out circular wait between opposing transfers.
// The policy check runs against the full debit (amount plus fee); on
// decline nothing is mutated and nothing is logged. On success the log
// gains a transfer record and, if the fee is non-zero, a separate fee
// record, both appended within the same critical section.
func (l *Ledger) Transfer(fromNumber, toNumber string, amount money.Money, description string) (bool, error) {
	if !amount.IsPositive() {
		return false, fmt.Errorf("%w: transfer amount must be positive", ErrInvalidArgument)
	}
	if fromNumber == toNumber {
		return false, fmt.Errorf("%w: cannot transfer to the same account", ErrInvalidArgument)
	}

	src, dst := l.resolvePair(fromNumber, toNumber)
	if src == nil || dst == nil {
		return false, nil
	}

	first, second := src, dst
	if second.number < first.number {
		first, second = second, first
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if !src.active || !dst.active {
		return false, nil
	}

	totalDebit, err := amount.Add(l.limits.TransferFee)
	if err != nil {
		return false, err
	}

	now := l.now()
	ok, err := l.canWithdraw(src, totalDebit, now)
	if err != nil || !ok {
		return false, err
	}

	newSrc, err := src.balance.Sub(totalDebit)
	if err != nil {
		return false, err
	}
	newDst, err := dst.balance.Add(amount)
	if err != nil {
		return false, err
	}
	spent, err := src.withdrawnToday.Add(amount)
	if err != nil {
		return false, err
	}

	src.setBalance(newSrc, now)
	dst.setBalance(newDst, now)
	src.withdrawnToday = spent

	records := []Transaction{
		newTransaction(fromNumber, toNumber, amount, KindTransfer, orDefault(description, "Transfer"), now),
	}
	if l.limits.TransferFee.IsPositive() {
		records = append(records, newTransaction(fromNumber, "", l.limits.TransferFee, KindFee, "Transfer fee", now))
	}
	l.appendCompleted(records...)
	return true, nil
}

// CloseAccount deactivates an account. Closure is irreversible and only
// permitted at a zero balance.
func (l *Ledger) CloseAccount(accountNumber string) error {
	a := l.resolve(accountNumber)
	if a == nil {
		return fmt.Errorf("close account %s: %w", accountNumber, ErrNotFound)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.balance.IsZero() {
		return fmt.Errorf("close account %s with balance %s: %w", accountNumber, a.balance, ErrInvalidState)
	}

	a.active = false
	return nil
}

// GetAccount returns a snapshot of one account.
func (l *Ledger) GetAccount(accountNumber string) (AccountInfo, bool) {
	a := l.resolve(accountNumber)
	if a == nil {
		return AccountInfo{}, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot(), true
}

// GetCustomerAccounts returns snapshots of all accounts belonging to the
// customer, ordered by creation time ascending. Snapshots of distinct
// accounts are taken independently; no cross-account consistency is
// promised.
func (l *Ledger) GetCustomerAccounts(customerID string) []AccountInfo {
	l.mu.Lock()
	matched := make([]*account, 0, 4)
	for _, a := range l.accounts {
		if a.customerID == customerID {
			matched = append(matched, a)
		}
	}
	l.mu.Unlock()

	infos := make([]AccountInfo, 0, len(matched))
	for _, a := range matched {
		a.mu.Lock()
		infos = append(infos, a.snapshot())
		a.mu.Unlock()
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].Number < infos[j].Number
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// GetTransactionHistory returns every completed transaction in which the
// account is either party, newest first.
func (l *Ledger) GetTransactionHistory(accountNumber string) []Transaction {
	l.logMu.Lock()
	defer l.logMu.Unlock()

	var history []Transaction
	for i := len(l.log) - 1; i >= 0; i-- {
		t := l.log[i]
		if t.FromAccount == accountNumber || t.ToAccount == accountNumber {
			history = append(history, t)
		}
	}
	return history
}

// GetTotalCustomerBalance sums the balances of the customer's active
// accounts.
func (l *Ledger) GetTotalCustomerBalance(customerID string) (money.Money, error) {
	total := money.Money{}
	for _, info := range l.GetCustomerAccounts(customerID) {
		if !info.Active {
			continue
		}
		sum, err := total.Add(info.Balance)
		if err != nil {
			return money.Money{}, err
		}
		total = sum
	}
	return total, nil
}

// LogSince returns a copy of every log entry with a sequence greater than
// seq, in append order. It is the resume cursor for auditing and
// reporting consumers; sequences start at 1.
func (l *Ledger) LogSince(seq uint64) []Transaction {
	l.logMu.Lock()
	defer l.logMu.Unlock()

	if seq >= uint64(len(l.log)) {
		return nil
	}
	out := make([]Transaction, len(l.log)-int(seq))
	copy(out, l.log[seq:])
	return out
}

// resolve looks up an account by number. A nil result is an expected
// outcome for unknown numbers, not an error.
func (l *Ledger) resolve(accountNumber string) *account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[accountNumber]
}

func (l *Ledger) resolvePair(a, b string) (*account, *account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[a], l.accounts[b]
}

// appendCompleted stamps the records completed, assigns their sequences
// and appends them to the log in one critical section. The log mutex is
// independent of every account mutex: appending never waits on an account
// lock, only the reverse, so holding two account locks here is safe.
func (l *Ledger) appendCompleted(records ...Transaction) {
	l.logMu.Lock()
	defer l.logMu.Unlock()

	for _, t := range records {
		l.seq++
		t.Sequence = l.seq
		t.Status = StatusCompleted
		l.log = append(l.log, t)
	}
}

func orDefault(description, fallback string) string {
	if description == "" {
		return fallback
	}
	return description
}
