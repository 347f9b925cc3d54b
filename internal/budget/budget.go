package budget

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stewardbooks/church-finance/internal"
)

var ErrNotFound = internal.ErrBudgetNotFound

// Status is derived from the budget's date window, never stored.
type Status string

const (
	StatusActive   Status = "active"
	StatusUpcoming Status = "upcoming"
	StatusExpired  Status = "expired"
)

type Budget struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	TenantID   string          `json:"tenant_id" gorm:"column:tenant_id;not null"`
	CategoryID int64           `json:"category_id" gorm:"column:category_id;not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(14,2);not null"`
	StartDate  time.Time       `json:"start_date" gorm:"column:start_date;type:date;not null"`
	EndDate    time.Time       `json:"end_date" gorm:"column:end_date;type:date;not null"`
	CreatedAt  time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Budget) TableName() string {
	return "budgets"
}

// StatusAt derives the window status for a reference day.
func (b *Budget) StatusAt(today time.Time) Status {
	day := today.Truncate(24 * time.Hour)
	switch {
	case b.StartDate.After(day):
		return StatusUpcoming
	case b.EndDate.Before(day):
		return StatusExpired
	default:
		return StatusActive
	}
}
