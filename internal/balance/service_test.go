package balance_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/stewardbooks/church-finance/internal"
	"github.com/stewardbooks/church-finance/internal/account"
	"github.com/stewardbooks/church-finance/internal/balance"
	"github.com/stewardbooks/church-finance/internal/transaction"
)

type mockEntrySource struct {
	byAccount     map[int64][]transaction.LedgerEntry
	byBudget      map[int64][]transaction.LedgerEntry
	types         map[int64]account.Type
	lastStatuses  []transaction.Status
	lastAsOf      time.Time
	entriesError  error
}

func (m *mockEntrySource) EntriesForAccount(_ context.Context, accountID int64, asOf time.Time, statuses []transaction.Status) ([]transaction.LedgerEntry, error) {
	if m.entriesError != nil {
		return nil, m.entriesError
	}
	m.lastStatuses = statuses
	m.lastAsOf = asOf
	return m.byAccount[accountID], nil
}

func (m *mockEntrySource) EntriesForBudget(_ context.Context, budgetID int64, statuses []transaction.Status) ([]transaction.LedgerEntry, error) {
	if m.entriesError != nil {
		return nil, m.entriesError
	}
	m.lastStatuses = statuses
	return m.byBudget[budgetID], nil
}

func (m *mockEntrySource) AccountTypesFor(_ context.Context, _ []transaction.LedgerEntry) (map[int64]account.Type, error) {
	return m.types, nil
}

type mockAccountSource struct {
	accounts map[int64]*account.Account
}

func (m *mockAccountSource) GetByID(_ context.Context, id int64) (*account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

var _ = Describe("BalanceService", func() {
	var (
		service  *balance.Service
		entries  *mockEntrySource
		accounts *mockAccountSource
	)

	BeforeEach(func() {
		entries = &mockEntrySource{
			byAccount: map[int64][]transaction.LedgerEntry{},
			byBudget:  map[int64][]transaction.LedgerEntry{},
			types:     map[int64]account.Type{},
		}
		accounts = &mockAccountSource{accounts: map[int64]*account.Account{}}
		testLog := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = balance.NewService(entries, accounts, testLog)
	})

	Describe("AccountBalance", func() {
		BeforeEach(func() {
			accounts.accounts[1] = &account.Account{ID: 1, AccountType: account.TypeAsset}
			accounts.accounts[2] = &account.Account{ID: 2, AccountType: account.TypeRevenue}
		})

		It("computes a debit-normal balance", func() {
			entries.byAccount[1] = []transaction.LedgerEntry{
				debitLine(1, "100.00"),
				creditLine(1, "30.00"),
			}

			result, err := service.AccountBalance(context.Background(), balance.Query{AccountID: 1})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.AccountType).To(Equal(account.TypeAsset))
			Expect(result.RawBalance.StringFixed(2)).To(Equal("70.00"))
			Expect(result.Balance.StringFixed(2)).To(Equal("70.00"))
		})

		It("display-negates a credit-normal balance", func() {
			entries.byAccount[2] = []transaction.LedgerEntry{
				debitLine(2, "10.00"),
				creditLine(2, "50.00"),
			}

			result, err := service.AccountBalance(context.Background(), balance.Query{AccountID: 2})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.RawBalance.StringFixed(2)).To(Equal("-40.00"))
			Expect(result.Balance.StringFixed(2)).To(Equal("40.00"))
		})

		It("queries posted-only by default", func() {
			_, err := service.AccountBalance(context.Background(), balance.Query{AccountID: 1})

			Expect(err).ToNot(HaveOccurred())
			Expect(entries.lastStatuses).To(Equal([]transaction.Status{transaction.StatusPosted}))
		})

		It("passes an explicit status list through to the store", func() {
			q := balance.Query{
				AccountID: 1,
				Statuses:  []transaction.Status{transaction.StatusPosted, transaction.StatusApproved},
			}

			_, err := service.AccountBalance(context.Background(), q)

			Expect(err).ToNot(HaveOccurred())
			Expect(entries.lastStatuses).To(HaveLen(2))
		})

		It("defaults as-of to now", func() {
			before := time.Now()
			_, err := service.AccountBalance(context.Background(), balance.Query{AccountID: 1})

			Expect(err).ToNot(HaveOccurred())
			Expect(entries.lastAsOf).To(BeTemporally(">=", before))
		})

		It("reports not found for an unknown account", func() {
			_, err := service.AccountBalance(context.Background(), balance.Query{AccountID: 99})

			Expect(errors.Is(err, internal.ErrAccountNotFound)).To(BeTrue())
		})
	})

	Describe("UsageForBudget", func() {
		It("derives usage from posted expense lines only", func() {
			budgetID := int64(7)
			entries.types = map[int64]account.Type{10: account.TypeExpense}
			entries.byBudget[budgetID] = []transaction.LedgerEntry{
				func() transaction.LedgerEntry {
					e := debitLine(10, "80.00")
					e.BudgetID = &budgetID
					return e
				}(),
			}

			usage, err := service.UsageForBudget(context.Background(), budgetID)

			Expect(err).ToNot(HaveOccurred())
			Expect(usage.UsedAmount.Equal(decimal.RequireFromString("80.00"))).To(BeTrue())
			Expect(usage.TransactionCount).To(Equal(1))
			Expect(entries.lastStatuses).To(Equal([]transaction.Status{transaction.StatusPosted}))
		})
	})
})
