package transaction

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stewardbooks/church-finance/internal"
)

// balanceTolerance absorbs rounding drift from upstream float sources.
// Comparison is decimal, never binary floating point.
var balanceTolerance = decimal.NewFromFloat(0.01)

// BalanceResult is the outcome of validating one header's entry set.
type BalanceResult struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	IsBalanced  bool            `json:"is_balanced"`
}

// Difference is the absolute debit/credit gap.
func (r BalanceResult) Difference() decimal.Decimal {
	return r.TotalDebit.Sub(r.TotalCredit).Abs()
}

// ValidateEntries sums both sides of an entry set and checks the balance
// invariant. Pure function, no I/O.
func ValidateEntries(entries []LedgerEntry) BalanceResult {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, e := range entries {
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}

	return BalanceResult{
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		IsBalanced:  totalDebit.Sub(totalCredit).Abs().LessThan(balanceTolerance),
	}
}

// ValidateEntryLine enforces the per-line invariant: amounts are non-negative
// and exactly one side is non-zero.
func ValidateEntryLine(index int, e LedgerEntry) error {
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return internal.NewValidationError(
			fmt.Sprintf("entry %d: debit and credit must be non-negative", index),
			internal.ErrCodeInvalidEntryLine)
	}
	if e.Debit.IsPositive() == e.Credit.IsPositive() {
		return internal.NewValidationError(
			fmt.Sprintf("entry %d: exactly one of debit or credit must be set", index),
			internal.ErrCodeInvalidEntryLine)
	}
	if e.AccountID == 0 {
		return internal.NewValidationError(
			fmt.Sprintf("entry %d: account_id is required", index),
			internal.ErrCodeInvalidAccountRef)
	}
	return nil
}
