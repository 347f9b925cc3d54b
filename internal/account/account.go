package account

import (
	"time"

	"github.com/stewardbooks/church-finance/internal"
)

// ErrNotFound is returned when an account lookup misses.
var ErrNotFound = internal.ErrAccountNotFound

// Type classifies accounts in the chart of accounts and fixes the sign
// convention under which balances are displayed.
type Type string

const (
	TypeAsset     Type = "asset"
	TypeLiability Type = "liability"
	TypeEquity    Type = "equity"
	TypeRevenue   Type = "revenue"
	TypeExpense   Type = "expense"
)

// Types lists all account types in chart-of-accounts display order.
var Types = []Type{TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense}

func (t Type) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether the type's balance is conventionally displayed
// from the debit side. Credit-normal types negate the raw ledger balance.
func (t Type) DebitNormal() bool {
	return t == TypeAsset || t == TypeExpense
}

type Account struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	TenantID    string    `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_accounts_tenant_code"`
	Code        string    `json:"code" gorm:"column:code;not null;uniqueIndex:idx_accounts_tenant_code"`
	Name        string    `json:"name" gorm:"column:name;not null"`
	AccountType Type      `json:"account_type" gorm:"column:account_type;not null"`
	Subtype     string    `json:"account_subtype,omitempty" gorm:"column:account_subtype"`
	ParentID    *int64    `json:"parent_id,omitempty" gorm:"column:parent_id"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;default:true"`
	Description string    `json:"description,omitempty" gorm:"column:description"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) Deactivate() {
	a.IsActive = false
	a.UpdatedAt = time.Now()
}
