package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/stewardbooks/church-finance/internal"
	"github.com/stewardbooks/church-finance/internal/transaction"
	"gorm.io/gorm"
)

// TransactionRepository implements the transaction.Repository interface using
// GORM.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, h *transaction.Header) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*transaction.Header, error) {
	var h transaction.Header
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("id = ?", id).
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTransactionNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *TransactionRepository) List(ctx context.Context, q transaction.ListQuery) ([]*transaction.Header, error) {
	db := r.db.WithContext(ctx).
		Preload("Entries").
		Where("tenant_id = ?", q.TenantID)

	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		db = db.Where("transaction_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("transaction_date <= ?", *q.DateTo)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		db = db.Where("description ILIKE ? OR transaction_number ILIKE ? OR reference ILIKE ?", pattern, pattern, pattern)
	}

	var headers []*transaction.Header
	err := db.Order("transaction_date DESC, id DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&headers).Error
	return headers, err
}

// UpdateDraft saves header fields and replaces the entry set in one
// transaction.
func (r *TransactionRepository) UpdateDraft(ctx context.Context, h *transaction.Header) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("header_id = ?", h.ID).Delete(&transaction.LedgerEntry{}).Error; err != nil {
			return err
		}
		h.UpdatedAt = time.Now()
		return tx.Save(h).Error
	})
}

func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("header_id = ?", id).Delete(&transaction.LedgerEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&transaction.Header{}).Error
	})
}

// TransitionStatus applies the optimistic status check: the update is
// conditional on the header still sitting in the expected "from" state, and a
// zero row count means a concurrent caller won the race.
func (r *TransactionRepository) TransitionStatus(ctx context.Context, id int64, from, to transaction.Status, fields map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&transaction.Header{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrStatusChanged
	}
	return nil
}
