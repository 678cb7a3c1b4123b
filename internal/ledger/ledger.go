// Package ledger abstracts the value-transfer rail the protocol settles
// fees and bonds on. The engine never holds balances itself; it instructs
// the ledger to move funds between principals and treats any refusal as a
// terminal transfer failure.
package ledger

import (
	"context"

	id "agegate/pkg/domain"
)

// Ledger moves funds between principals.
// Implementations must be safe for concurrent use and must apply each
// transfer atomically: either both the debit and the credit happen, or
// neither does.
type Ledger interface {
	// Transfer moves amount from one principal to another.
	// Returns sentinel.ErrInsufficientFunds if the source balance cannot
	// cover the amount.
	Transfer(ctx context.Context, from, to id.Principal, amount uint64) error

	// Balance reports the current balance of a principal.
	// Unknown principals have a zero balance.
	Balance(ctx context.Context, p id.Principal) (uint64, error)
}
