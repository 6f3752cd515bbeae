package ledger

import (
	"time"

	"github.com/example/bank-core/internal/money"
)

// Limits is the admission-control policy applied to every debit.
type Limits struct {
	// OverdraftFloor is the minimum balance a checking account may reach.
	// It is zero or negative; every other account type has a floor of zero.
	OverdraftFloor money.Money

	// TransferFee is debited from the source account on every transfer,
	// atomically with the transfer itself, and logged as a separate fee
	// transaction when non-zero.
	TransferFee money.Money

	// DailyWithdrawalLimit caps the sum of completed withdrawal and
	// transfer debits against one account within a calendar day.
	DailyWithdrawalLimit money.Money
}

// DefaultLimits returns the standard retail policy.
func DefaultLimits() Limits {
	return Limits{
		OverdraftFloor:       money.MustFromString("-500.00"),
		TransferFee:          money.MustFromString("2.50"),
		DailyWithdrawalLimit: money.MustFromString("1000.00"),
	}
}

// canWithdraw decides whether debiting amount from a is admissible: the
// post-debit balance must not fall below the type-specific floor, and the
// day's accumulated withdrawals plus the requested amount must not exceed
// the daily limit. Must be called with a.mu held. A false result mutates
// nothing.
func (l *Ledger) canWithdraw(a *account, amount money.Money, now time.Time) (bool, error) {
	newBalance, err := a.balance.Sub(amount)
	if err != nil {
		return false, err
	}

	floor := money.Money{}
	if a.acctType == AccountChecking {
		floor = l.limits.OverdraftFloor
	}
	if newBalance.Cmp(floor) < 0 {
		return false, nil
	}

	a.rollDay(now)
	dayTotal, err := a.withdrawnToday.Add(amount)
	if err != nil {
		return false, err
	}
	if dayTotal.Cmp(l.limits.DailyWithdrawalLimit) > 0 {
		return false, nil
	}

	return true, nil
}
