package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the workflow state of a transaction header. Every consumption
// site switches exhaustively over these values.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusPosted    Status = "posted"
	StatusVoided    Status = "voided"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusPosted, StatusVoided:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown transaction status %q", raw)
	}
	return s, nil
}

// Action is a lifecycle intent applied to a header.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPost    Action = "post"
	ActionVoid    Action = "void"
)

// Header is the unit of workflow state for a double-entry transaction.
type Header struct {
	ID                int64         `json:"id" gorm:"primaryKey"`
	TenantID          string        `json:"tenant_id" gorm:"column:tenant_id;not null"`
	TransactionNumber string        `json:"transaction_number" gorm:"column:transaction_number;uniqueIndex;not null"`
	TransactionDate   time.Time     `json:"transaction_date" gorm:"column:transaction_date;type:date;not null"`
	Description       string        `json:"description" gorm:"column:description;not null"`
	Reference         string        `json:"reference,omitempty" gorm:"column:reference"`
	SourceID          *int64        `json:"source_id,omitempty" gorm:"column:source_id"`
	Status            Status        `json:"status" gorm:"column:status;default:draft"`
	PostedAt          *time.Time    `json:"posted_at,omitempty" gorm:"column:posted_at"`
	VoidedAt          *time.Time    `json:"voided_at,omitempty" gorm:"column:voided_at"`
	VoidReason        *string       `json:"void_reason,omitempty" gorm:"column:void_reason"`
	Entries           []LedgerEntry `json:"entries" gorm:"foreignKey:HeaderID"`
	CreatedAt         time.Time     `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time     `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Header) TableName() string {
	return "transaction_headers"
}

// Editable reports whether the header's fields and entries may still change.
func (h *Header) Editable() bool {
	return h.Status == StatusDraft
}

// NewTransactionNumber mints the immutable, system-generated number for a
// header, e.g. TXN-20240615-1a2b3c4d.
func NewTransactionNumber(date time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TXN-%s-%s", date.Format("20060102"), suffix)
}

// LedgerEntry is a single debit-or-credit line belonging to exactly one
// header and one account.
type LedgerEntry struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	HeaderID    int64           `json:"header_id" gorm:"column:header_id;not null;index"`
	AccountID   int64           `json:"account_id" gorm:"column:account_id;not null;index"`
	Debit       decimal.Decimal `json:"debit" gorm:"column:debit;type:numeric(14,2);default:0"`
	Credit      decimal.Decimal `json:"credit" gorm:"column:credit;type:numeric(14,2);default:0"`
	Description string          `json:"description,omitempty" gorm:"column:description"`
	Date        time.Time       `json:"date" gorm:"column:entry_date;type:date;not null"`
	MemberID    *int64          `json:"member_id,omitempty" gorm:"column:member_id"`
	FundID      *int64          `json:"fund_id,omitempty" gorm:"column:fund_id"`
	CategoryID  *int64          `json:"category_id,omitempty" gorm:"column:category_id"`
	BudgetID    *int64          `json:"budget_id,omitempty" gorm:"column:budget_id;index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// IsDebit reports which side of the ledger the line sits on.
func (e *LedgerEntry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// Amount is the line's single non-zero side.
func (e *LedgerEntry) Amount() decimal.Decimal {
	if e.IsDebit() {
		return e.Debit
	}
	return e.Credit
}
