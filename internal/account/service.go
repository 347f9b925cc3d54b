package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/stewardbooks/church-finance/internal"
)

// Repository defines the data access methods for accounts.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByCode(ctx context.Context, tenantID, code string) (*Account, error)
	GetAll(ctx context.Context, tenantID string) ([]*Account, error)
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id int64) error
	HasLedgerEntries(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateAccount(ctx context.Context, tenantID string, dto CreateAccountDTO) (*Account, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("account validation failed", "error", err, "tenant_id", tenantID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByCode(ctx, tenantID, dto.Code); err == nil && existing != nil {
		s.logger.Warn("duplicate account code", "code", dto.Code, "tenant_id", tenantID)
		return nil, internal.NewConflictError("account code already exists", internal.ErrCodeDuplicateCode)
	}

	if dto.ParentID != nil {
		accounts, err := s.repo.GetAll(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if err := ValidateParentChain(0, dto.ParentID, accounts); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	acct := &Account{
		TenantID:    tenantID,
		Code:        dto.Code,
		Name:        dto.Name,
		AccountType: Type(dto.AccountType),
		Subtype:     dto.Subtype,
		ParentID:    dto.ParentID,
		IsActive:    true,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		s.logger.Error("failed to create account", "error", err, "code", dto.Code)
		return nil, err
	}

	s.logger.Info("account created", "account_id", acct.ID, "code", acct.Code, "type", acct.AccountType)
	return acct, nil
}

func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get account", "error", err, "account_id", id)
		return nil, internal.ErrAccountNotFound
	}
	return acct, nil
}

// ChartOfAccounts returns the full forest for a tenant, grouped by type with
// code-sorted children.
func (s *Service) ChartOfAccounts(ctx context.Context, tenantID string) (*Forest, error) {
	accounts, err := s.repo.GetAll(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to load accounts", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return BuildForest(accounts), nil
}

func (s *Service) UpdateAccount(ctx context.Context, id int64, dto UpdateAccountDTO) (*Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.ErrAccountNotFound
	}

	if dto.ParentID != nil {
		accounts, err := s.repo.GetAll(ctx, acct.TenantID)
		if err != nil {
			return nil, err
		}
		if err := ValidateParentChain(id, dto.ParentID, accounts); err != nil {
			s.logger.Warn("rejected parent reassignment", "error", err, "account_id", id)
			return nil, err
		}
		acct.ParentID = dto.ParentID
	}

	if dto.Name != nil {
		acct.Name = *dto.Name
	}
	if dto.Subtype != nil {
		acct.Subtype = *dto.Subtype
	}
	if dto.Description != nil {
		acct.Description = *dto.Description
	}
	if dto.IsActive != nil {
		acct.IsActive = *dto.IsActive
	}
	acct.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, acct); err != nil {
		s.logger.Error("failed to update account", "error", err, "account_id", id)
		return nil, err
	}

	s.logger.Info("account updated", "account_id", id)
	return acct, nil
}

// RemoveAccount deletes an account that nothing references yet. Once ledger
// entries point at it the history must survive, so removal degrades to
// deactivation instead.
func (s *Service) RemoveAccount(ctx context.Context, id int64) (*Account, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.ErrAccountNotFound
	}

	referenced, err := s.repo.HasLedgerEntries(ctx, id)
	if err != nil {
		s.logger.Error("failed to check ledger references", "error", err, "account_id", id)
		return nil, err
	}

	if referenced {
		acct.Deactivate()
		if err := s.repo.Update(ctx, acct); err != nil {
			s.logger.Error("failed to deactivate account", "error", err, "account_id", id)
			return nil, err
		}
		s.logger.Info("account deactivated", "account_id", id, "code", acct.Code)
		return acct, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete account", "error", err, "account_id", id)
		return nil, err
	}
	s.logger.Info("account deleted", "account_id", id, "code", acct.Code)
	return acct, nil
}
