package budget

import (
	"context"
	"log/slog"
	"time"

	"github.com/stewardbooks/church-finance/internal"
	"github.com/stewardbooks/church-finance/internal/balance"
	"github.com/stewardbooks/church-finance/pkg/retryexec"
)

// Repository defines the data access methods for budgets.
type Repository interface {
	Create(ctx context.Context, b *Budget) error
	GetByID(ctx context.Context, id int64) (*Budget, error)
	GetAll(ctx context.Context, tenantID string) ([]*Budget, error)
	Delete(ctx context.Context, id int64) error
}

// UsageSource derives consumption from tagged ledger lines.
type UsageSource interface {
	UsageForBudget(ctx context.Context, budgetID int64) (balance.Usage, error)
}

type Service struct {
	repo   Repository
	usage  UsageSource
	exec   *retryexec.Executor
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, usage UsageSource, exec *retryexec.Executor, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		usage:  usage,
		exec:   exec,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateBudget(ctx context.Context, tenantID string, dto CreateBudgetDTO) (*Budget, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("budget validation failed", "error", err, "tenant_id", tenantID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := s.now()
	b := &Budget{
		TenantID:   tenantID,
		CategoryID: dto.CategoryID,
		Amount:     dto.Amount,
		StartDate:  dto.StartDate,
		EndDate:    dto.EndDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error("failed to create budget", "error", err, "tenant_id", tenantID)
		return nil, err
	}

	s.logger.Info("budget created", "budget_id", b.ID, "category_id", b.CategoryID, "amount", b.Amount)
	return b, nil
}

// GetBudget returns a budget with its derived status and usage.
func (s *Service) GetBudget(ctx context.Context, id int64) (*View, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.view(ctx, b)
}

func (s *Service) ListBudgets(ctx context.Context, tenantID string) ([]*View, error) {
	budgets, err := s.repo.GetAll(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list budgets", "error", err, "tenant_id", tenantID)
		return nil, err
	}

	views := make([]*View, 0, len(budgets))
	for _, b := range budgets {
		v, err := s.view(ctx, b)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// DeleteBudget removes a budget, permitted only while nothing references it.
// The delete runs under the resilient executor.
func (s *Service) DeleteBudget(ctx context.Context, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	usage, err := s.usage.UsageForBudget(ctx, id)
	if err != nil {
		s.logger.Error("failed to derive budget usage", "error", err, "budget_id", id)
		return err
	}
	if usage.TransactionCount > 0 {
		s.logger.Warn("rejected delete of budget in use", "budget_id", id, "transaction_count", usage.TransactionCount)
		return internal.ErrBudgetInUse
	}

	if err := s.exec.Do(ctx, "delete budget", func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	}); err != nil {
		s.logger.Error("failed to delete budget", "error", err, "budget_id", id)
		return err
	}

	s.logger.Info("budget deleted", "budget_id", id, "category_id", b.CategoryID)
	return nil
}

func (s *Service) view(ctx context.Context, b *Budget) (*View, error) {
	usage, err := s.usage.UsageForBudget(ctx, b.ID)
	if err != nil {
		s.logger.Error("failed to derive budget usage", "error", err, "budget_id", b.ID)
		return nil, err
	}
	return &View{
		Budget:           *b,
		Status:           b.StatusAt(s.now()),
		UsedAmount:       usage.UsedAmount,
		TransactionCount: usage.TransactionCount,
	}, nil
}
