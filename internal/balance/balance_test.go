package balance_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/stewardbooks/church-finance/internal/account"
	"github.com/stewardbooks/church-finance/internal/balance"
	"github.com/stewardbooks/church-finance/internal/transaction"
)

func TestBalance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Balance Suite")
}

func debitLine(accountID int64, amount string) transaction.LedgerEntry {
	return transaction.LedgerEntry{AccountID: accountID, Debit: decimal.RequireFromString(amount)}
}

func creditLine(accountID int64, amount string) transaction.LedgerEntry {
	return transaction.LedgerEntry{AccountID: accountID, Credit: decimal.RequireFromString(amount)}
}

var _ = Describe("Raw", func() {
	It("folds debits minus credits", func() {
		raw := balance.Raw([]transaction.LedgerEntry{
			debitLine(1, "100.00"),
			creditLine(1, "30.00"),
		})

		Expect(raw.StringFixed(2)).To(Equal("70.00"))
	})

	It("is zero over an empty set", func() {
		Expect(balance.Raw(nil).IsZero()).To(BeTrue())
	})

	It("goes negative when credits dominate", func() {
		raw := balance.Raw([]transaction.LedgerEntry{
			debitLine(1, "10.00"),
			creditLine(1, "50.00"),
		})

		Expect(raw.StringFixed(2)).To(Equal("-40.00"))
	})
})

var _ = Describe("Display", func() {
	It("shows asset balances from the debit side", func() {
		raw := decimal.RequireFromString("70.00")
		Expect(balance.Display(account.TypeAsset, raw).StringFixed(2)).To(Equal("70.00"))
	})

	It("shows expense balances from the debit side", func() {
		raw := decimal.RequireFromString("25.00")
		Expect(balance.Display(account.TypeExpense, raw).StringFixed(2)).To(Equal("25.00"))
	})

	It("negates revenue balances so income reads positive", func() {
		// 10 debit, 50 credit: raw -40, displayed 40.
		raw := balance.Raw([]transaction.LedgerEntry{
			debitLine(1, "10.00"),
			creditLine(1, "50.00"),
		})

		Expect(balance.Display(account.TypeRevenue, raw).StringFixed(2)).To(Equal("40.00"))
	})

	It("negates liability balances", func() {
		raw := decimal.RequireFromString("-500.00")
		Expect(balance.Display(account.TypeLiability, raw).StringFixed(2)).To(Equal("500.00"))
	})

	It("negates equity balances", func() {
		raw := decimal.RequireFromString("-1000.00")
		Expect(balance.Display(account.TypeEquity, raw).StringFixed(2)).To(Equal("1000.00"))
	})
})

var _ = Describe("Query EffectiveStatuses", func() {
	It("defaults to posted only", func() {
		q := balance.Query{AccountID: 1}

		Expect(q.EffectiveStatuses()).To(Equal([]transaction.Status{transaction.StatusPosted}))
	})

	It("widens to voided when asked", func() {
		q := balance.Query{AccountID: 1, IncludeVoided: true}

		Expect(q.EffectiveStatuses()).To(Equal([]transaction.Status{
			transaction.StatusPosted,
			transaction.StatusVoided,
		}))
	})

	It("honors an explicit status list verbatim", func() {
		q := balance.Query{
			AccountID:     1,
			Statuses:      []transaction.Status{transaction.StatusApproved},
			IncludeVoided: true,
		}

		Expect(q.EffectiveStatuses()).To(Equal([]transaction.Status{transaction.StatusApproved}))
	})
})

var _ = Describe("BudgetUsage", func() {
	budgetID := int64(7)
	otherBudget := int64(8)

	tag := func(e transaction.LedgerEntry, id int64) transaction.LedgerEntry {
		e.BudgetID = &id
		return e
	}

	types := map[int64]account.Type{
		10: account.TypeExpense,
		11: account.TypeExpense,
		20: account.TypeAsset,
	}

	It("totals expense lines tagged with the budget", func() {
		usage := balance.BudgetUsage(budgetID, []transaction.LedgerEntry{
			tag(debitLine(10, "150.00"), budgetID),
			tag(debitLine(11, "50.00"), budgetID),
		}, types)

		Expect(usage.UsedAmount.StringFixed(2)).To(Equal("200.00"))
		Expect(usage.TransactionCount).To(Equal(2))
	})

	It("ignores lines tagged with a different budget", func() {
		usage := balance.BudgetUsage(budgetID, []transaction.LedgerEntry{
			tag(debitLine(10, "150.00"), budgetID),
			tag(debitLine(10, "999.00"), otherBudget),
		}, types)

		Expect(usage.UsedAmount.StringFixed(2)).To(Equal("150.00"))
		Expect(usage.TransactionCount).To(Equal(1))
	})

	It("ignores tagged lines on non-expense accounts", func() {
		usage := balance.BudgetUsage(budgetID, []transaction.LedgerEntry{
			tag(debitLine(20, "500.00"), budgetID),
		}, types)

		Expect(usage.UsedAmount.IsZero()).To(BeTrue())
		Expect(usage.TransactionCount).To(BeZero())
	})

	It("nets credit lines against usage", func() {
		usage := balance.BudgetUsage(budgetID, []transaction.LedgerEntry{
			tag(debitLine(10, "150.00"), budgetID),
			tag(creditLine(10, "25.00"), budgetID),
		}, types)

		Expect(usage.UsedAmount.StringFixed(2)).To(Equal("125.00"))
	})
})
