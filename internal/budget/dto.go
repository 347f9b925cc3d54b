package budget

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CreateBudgetDTO is the request payload for creating a budget.
type CreateBudgetDTO struct {
	CategoryID int64           `json:"category_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	StartDate  time.Time       `json:"start_date" validate:"required"`
	EndDate    time.Time       `json:"end_date" validate:"required"`
}

func (dto CreateBudgetDTO) Validate() error {
	if dto.CategoryID == 0 {
		return errors.New("category_id is required")
	}
	if !dto.Amount.IsPositive() {
		return errors.New("amount must be greater than 0")
	}
	if dto.StartDate.IsZero() || dto.EndDate.IsZero() {
		return errors.New("start_date and end_date are required")
	}
	if dto.EndDate.Before(dto.StartDate) {
		return errors.New("end_date must not be before start_date")
	}
	return nil
}

// View is a budget together with its derived fields.
type View struct {
	Budget
	Status           Status          `json:"status"`
	UsedAmount       decimal.Decimal `json:"used_amount"`
	TransactionCount int             `json:"transaction_count"`
}
