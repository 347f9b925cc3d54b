package fund

import (
	"context"
	"log/slog"
	"time"

	"github.com/stewardbooks/church-finance/internal"
)

// Repository defines the data access methods for funds.
type Repository interface {
	Create(ctx context.Context, f *Fund) error
	GetByID(ctx context.Context, id int64) (*Fund, error)
	GetAll(ctx context.Context, tenantID string) ([]*Fund, error)
	Update(ctx context.Context, f *Fund) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateFund(ctx context.Context, tenantID string, dto CreateFundDTO) (*Fund, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("fund validation failed", "error", err, "tenant_id", tenantID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	f := &Fund{
		TenantID:  tenantID,
		Name:      dto.Name,
		FundType:  FundType(dto.Type),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.logger.Error("failed to create fund", "error", err, "tenant_id", tenantID)
		return nil, err
	}

	s.logger.Info("fund created", "fund_id", f.ID, "name", f.Name, "type", f.FundType)
	return f, nil
}

func (s *Service) GetFund(ctx context.Context, id int64) (*Fund, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *Service) ListFunds(ctx context.Context, tenantID string) ([]*Fund, error) {
	funds, err := s.repo.GetAll(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list funds", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return funds, nil
}

func (s *Service) RenameFund(ctx context.Context, id int64, name string) (*Fund, error) {
	if name == "" {
		return nil, internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	f.Name = name
	f.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, f); err != nil {
		s.logger.Error("failed to rename fund", "error", err, "fund_id", id)
		return nil, err
	}
	return f, nil
}

func (s *Service) DeleteFund(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete fund", "error", err, "fund_id", id)
		return err
	}
	s.logger.Info("fund deleted", "fund_id", id)
	return nil
}
