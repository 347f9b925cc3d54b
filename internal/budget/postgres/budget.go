package postgres

import (
	"context"
	"errors"

	"github.com/stewardbooks/church-finance/internal/budget"
	"gorm.io/gorm"
)

// BudgetRepository implements the budget.Repository interface using GORM.
type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) budget.Repository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (*budget.Budget, error) {
	var b budget.Budget
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budget.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) GetAll(ctx context.Context, tenantID string) ([]*budget.Budget, error) {
	var budgets []*budget.Budget
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("start_date DESC").
		Find(&budgets).Error
	return budgets, err
}

func (r *BudgetRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&budget.Budget{}).Error
}
