package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// EntryDTO is one ledger line in a create/update request.
type EntryDTO struct {
	AccountID   int64           `json:"account_id" validate:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	MemberID    *int64          `json:"member_id,omitempty"`
	FundID      *int64          `json:"fund_id,omitempty"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	BudgetID    *int64          `json:"budget_id,omitempty"`
}

func (dto EntryDTO) toEntry(headerDate time.Time) LedgerEntry {
	date := dto.Date
	if date.IsZero() {
		date = headerDate
	}
	return LedgerEntry{
		AccountID:   dto.AccountID,
		Debit:       dto.Debit,
		Credit:      dto.Credit,
		Description: dto.Description,
		Date:        date,
		MemberID:    dto.MemberID,
		FundID:      dto.FundID,
		CategoryID:  dto.CategoryID,
		BudgetID:    dto.BudgetID,
	}
}

// CreateTransactionDTO is the request payload for creating a draft header
// together with its ledger lines.
type CreateTransactionDTO struct {
	TransactionDate time.Time  `json:"transaction_date" validate:"required"`
	Description     string     `json:"description" validate:"required,min=1,max=500"`
	Reference       string     `json:"reference,omitempty"`
	SourceID        *int64     `json:"source_id,omitempty"`
	Entries         []EntryDTO `json:"entries"`
}

func (dto CreateTransactionDTO) Validate() error {
	if dto.Description == "" {
		return errors.New("description is required")
	}
	if len(dto.Description) > 500 {
		return errors.New("description must be less than 500 characters")
	}
	if dto.TransactionDate.IsZero() {
		return errors.New("transaction date is required")
	}
	return nil
}

// UpdateDraftDTO carries draft-only edits. Entries, when present, replace the
// existing lines wholesale.
type UpdateDraftDTO struct {
	Description *string     `json:"description,omitempty"`
	Reference   *string     `json:"reference,omitempty"`
	Entries     *[]EntryDTO `json:"entries,omitempty"`
}

func (dto UpdateDraftDTO) Validate() error {
	if dto.Description != nil && *dto.Description == "" {
		return errors.New("description cannot be empty")
	}
	if dto.Description != nil && len(*dto.Description) > 500 {
		return errors.New("description must be less than 500 characters")
	}
	return nil
}

// VoidTransactionDTO carries the mandatory reason for voiding a posted
// transaction.
type VoidTransactionDTO struct {
	Reason string `json:"reason" validate:"required"`
}

func (dto VoidTransactionDTO) Validate() error {
	if dto.Reason == "" {
		return errors.New("reason is required when voiding a transaction")
	}
	return nil
}

// ListQuery is the explicit filter object for header listings. Filters are
// always passed per-request, never held as package state.
type ListQuery struct {
	TenantID string
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	Limit    int
	Offset   int
}
