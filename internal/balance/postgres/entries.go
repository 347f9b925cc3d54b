package postgres

import (
	"context"
	"time"

	"github.com/stewardbooks/church-finance/internal/account"
	"github.com/stewardbooks/church-finance/internal/balance"
	"github.com/stewardbooks/church-finance/internal/transaction"
	"gorm.io/gorm"
)

// EntryStore implements balance.EntrySource over the ledger tables.
type EntryStore struct {
	db *gorm.DB
}

func NewEntryStore(db *gorm.DB) balance.EntrySource {
	return &EntryStore{db: db}
}

func (s *EntryStore) EntriesForAccount(ctx context.Context, accountID int64, asOf time.Time, statuses []transaction.Status) ([]transaction.LedgerEntry, error) {
	var entries []transaction.LedgerEntry
	err := s.db.WithContext(ctx).
		Joins("JOIN transaction_headers ON transaction_headers.id = ledger_entries.header_id").
		Where("ledger_entries.account_id = ?", accountID).
		Where("ledger_entries.entry_date <= ?", asOf).
		Where("transaction_headers.status IN ?", statuses).
		Find(&entries).Error
	return entries, err
}

func (s *EntryStore) EntriesForBudget(ctx context.Context, budgetID int64, statuses []transaction.Status) ([]transaction.LedgerEntry, error) {
	var entries []transaction.LedgerEntry
	err := s.db.WithContext(ctx).
		Joins("JOIN transaction_headers ON transaction_headers.id = ledger_entries.header_id").
		Where("ledger_entries.budget_id = ?", budgetID).
		Where("transaction_headers.status IN ?", statuses).
		Find(&entries).Error
	return entries, err
}

func (s *EntryStore) AccountTypesFor(ctx context.Context, entries []transaction.LedgerEntry) (map[int64]account.Type, error) {
	ids := make([]int64, 0, len(entries))
	seen := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}
	if len(ids) == 0 {
		return map[int64]account.Type{}, nil
	}

	var accounts []*account.Account
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, err
	}

	types := make(map[int64]account.Type, len(accounts))
	for _, a := range accounts {
		types[a.ID] = a.AccountType
	}
	return types, nil
}
