package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/stewardbooks/church-finance/internal/account"
	"gorm.io/gorm"
)

// AccountRepository implements the account.Repository interface using GORM.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) account.Repository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	var a account.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) GetByCode(ctx context.Context, tenantID, code string) (*account.Account, error) {
	var a account.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) GetAll(ctx context.Context, tenantID string) ([]*account.Account, error) {
	var accounts []*account.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	a.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&account.Account{}).Error
}

// HasLedgerEntries reports whether any ledger line references the account.
func (r *AccountRepository) HasLedgerEntries(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("ledger_entries").
		Where("account_id = ?", id).
		Count(&count).Error
	return count > 0, err
}
