// Package balance derives account balances and budget usage from ledger
// lines. All aggregation is pure over supplied snapshots; the service binds
// it to the entry store.
package balance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stewardbooks/church-finance/internal/account"
	"github.com/stewardbooks/church-finance/internal/transaction"
)

// Query restricts which ledger lines contribute to a balance. Statuses is an
// explicit parameter: when empty it defaults to posted-only, which also keeps
// voided transactions out. IncludeVoided widens the default to count voided
// headers as well.
type Query struct {
	AccountID     int64
	AsOf          time.Time
	Statuses      []transaction.Status
	IncludeVoided bool
}

// EffectiveStatuses resolves the defaulting rule above.
func (q Query) EffectiveStatuses() []transaction.Status {
	if len(q.Statuses) > 0 {
		return q.Statuses
	}
	statuses := []transaction.Status{transaction.StatusPosted}
	if q.IncludeVoided {
		statuses = append(statuses, transaction.StatusVoided)
	}
	return statuses
}

// Raw folds an entry set into its ledger balance, Σdebit − Σcredit.
func Raw(entries []transaction.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Debit).Sub(e.Credit)
	}
	return total
}

// Display applies the account-type sign convention: debit-normal types show
// the raw balance as-is, credit-normal types show its negation. Every place a
// balance is rendered or aggregated goes through this.
func Display(t account.Type, raw decimal.Decimal) decimal.Decimal {
	if t.DebitNormal() {
		return raw
	}
	return raw.Neg()
}

// Usage is derived budget consumption.
type Usage struct {
	UsedAmount       decimal.Decimal `json:"used_amount"`
	TransactionCount int             `json:"transaction_count"`
}

// BudgetUsage totals the expense lines tagged with a budget. accountTypes
// maps account id to type so non-expense lines are ignored even if tagged.
func BudgetUsage(budgetID int64, entries []transaction.LedgerEntry, accountTypes map[int64]account.Type) Usage {
	used := decimal.Zero
	count := 0
	for _, e := range entries {
		if e.BudgetID == nil || *e.BudgetID != budgetID {
			continue
		}
		if accountTypes[e.AccountID] != account.TypeExpense {
			continue
		}
		used = used.Add(e.Debit).Sub(e.Credit)
		count++
	}
	return Usage{UsedAmount: used, TransactionCount: count}
}
