package balance

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stewardbooks/church-finance/internal"
	"github.com/stewardbooks/church-finance/internal/account"
	"github.com/stewardbooks/church-finance/internal/transaction"
)

// EntrySource supplies ledger-line snapshots for aggregation.
type EntrySource interface {
	EntriesForAccount(ctx context.Context, accountID int64, asOf time.Time, statuses []transaction.Status) ([]transaction.LedgerEntry, error)
	EntriesForBudget(ctx context.Context, budgetID int64, statuses []transaction.Status) ([]transaction.LedgerEntry, error)
	AccountTypesFor(ctx context.Context, entries []transaction.LedgerEntry) (map[int64]account.Type, error)
}

// AccountSource resolves the account whose type fixes the sign convention.
type AccountSource interface {
	GetByID(ctx context.Context, id int64) (*account.Account, error)
}

type Service struct {
	entries  EntrySource
	accounts AccountSource
	logger   *slog.Logger
}

func NewService(entries EntrySource, accounts AccountSource, logger *slog.Logger) *Service {
	return &Service{entries: entries, accounts: accounts, logger: logger}
}

// Result is a display-signed balance together with how it was derived.
type Result struct {
	AccountID   int64                `json:"account_id"`
	AccountType account.Type         `json:"account_type"`
	AsOf        time.Time            `json:"as_of"`
	Statuses    []transaction.Status `json:"statuses"`
	RawBalance  decimal.Decimal      `json:"raw_balance"`
	Balance     decimal.Decimal      `json:"balance"`
}

// AccountBalance computes the display-signed balance of one account as of a
// date, over the statuses the query names.
func (s *Service) AccountBalance(ctx context.Context, q Query) (*Result, error) {
	acct, err := s.accounts.GetByID(ctx, q.AccountID)
	if err != nil {
		s.logger.Error("balance query for unknown account", "error", err, "account_id", q.AccountID)
		return nil, internal.ErrAccountNotFound
	}

	asOf := q.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	statuses := q.EffectiveStatuses()

	entries, err := s.entries.EntriesForAccount(ctx, q.AccountID, asOf, statuses)
	if err != nil {
		s.logger.Error("failed to load entries for balance", "error", err, "account_id", q.AccountID)
		return nil, err
	}

	raw := Raw(entries)
	return &Result{
		AccountID:   q.AccountID,
		AccountType: acct.AccountType,
		AsOf:        asOf,
		Statuses:    statuses,
		RawBalance:  raw,
		Balance:     Display(acct.AccountType, raw),
	}, nil
}

// UsageForBudget derives a budget's consumption from its tagged expense
// lines, posted-only.
func (s *Service) UsageForBudget(ctx context.Context, budgetID int64) (Usage, error) {
	statuses := []transaction.Status{transaction.StatusPosted}
	entries, err := s.entries.EntriesForBudget(ctx, budgetID, statuses)
	if err != nil {
		s.logger.Error("failed to load entries for budget usage", "error", err, "budget_id", budgetID)
		return Usage{}, err
	}

	types, err := s.entries.AccountTypesFor(ctx, entries)
	if err != nil {
		return Usage{}, err
	}

	return BudgetUsage(budgetID, entries, types), nil
}
