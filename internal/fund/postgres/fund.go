package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/stewardbooks/church-finance/internal/fund"
	"gorm.io/gorm"
)

// FundRepository implements the fund.Repository interface using GORM.
type FundRepository struct {
	db *gorm.DB
}

func NewFundRepository(db *gorm.DB) fund.Repository {
	return &FundRepository{db: db}
}

func (r *FundRepository) Create(ctx context.Context, f *fund.Fund) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FundRepository) GetByID(ctx context.Context, id int64) (*fund.Fund, error) {
	var f fund.Fund
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fund.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FundRepository) GetAll(ctx context.Context, tenantID string) ([]*fund.Fund, error) {
	var funds []*fund.Fund
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&funds).Error
	return funds, err
}

func (r *FundRepository) Update(ctx context.Context, f *fund.Fund) error {
	f.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FundRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&fund.Fund{}).Error
}
