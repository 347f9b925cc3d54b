package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stewardbooks/church-finance/internal"
	"github.com/stewardbooks/church-finance/internal/auth"
	"github.com/stewardbooks/church-finance/pkg/retryexec"
)

// Repository defines the data access methods for transaction headers and
// their ledger lines.
type Repository interface {
	Create(ctx context.Context, h *Header) error
	GetByID(ctx context.Context, id int64) (*Header, error)
	List(ctx context.Context, q ListQuery) ([]*Header, error)
	UpdateDraft(ctx context.Context, h *Header) error
	Delete(ctx context.Context, id int64) error
	// TransitionStatus applies a conditional status update and returns
	// internal.ErrStatusChanged when the header no longer sits in the
	// expected "from" state.
	TransitionStatus(ctx context.Context, id int64, from, to Status, fields map[string]interface{}) error
}

// ReversalWriter is the extension point for generating reversing ledger
// entries on void. The default configuration writes none: voided headers are
// excluded from balance queries instead.
type ReversalWriter interface {
	WriteReversal(ctx context.Context, h *Header) error
}

// transitions is the full lifecycle table. Every (status, action) pair not
// present here is a conflict.
var transitions = map[Status]map[Action]Status{
	StatusDraft:     {ActionSubmit: StatusSubmitted},
	StatusSubmitted: {ActionApprove: StatusApproved, ActionReject: StatusDraft},
	StatusApproved:  {ActionPost: StatusPosted},
	StatusPosted:    {ActionVoid: StatusVoided},
}

// Service orchestrates the transaction lifecycle: capability checks first,
// then balance validation, then the guarded status transition.
type Service struct {
	repo      Repository
	caps      auth.CapabilityChecker
	exec      *retryexec.Executor
	reversals ReversalWriter
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, caps auth.CapabilityChecker, exec *retryexec.Executor, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		caps:   caps,
		exec:   exec,
		logger: logger,
		now:    time.Now,
	}
}

// WithReversalWriter enables reversing-entry generation on void.
func (s *Service) WithReversalWriter(w ReversalWriter) *Service {
	s.reversals = w
	return s
}

// WithClock overrides the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateDraft creates a header in draft together with its ledger lines. The
// entry set does not need to balance yet; balance is enforced on submit and
// re-checked on post.
func (s *Service) CreateDraft(ctx context.Context, tenantID string, dto CreateTransactionDTO) (*Header, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("transaction validation failed", "error", err, "tenant_id", tenantID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	entries := make([]LedgerEntry, 0, len(dto.Entries))
	for i, e := range dto.Entries {
		if err := ValidateEntryLine(i, e.toEntry(dto.TransactionDate)); err != nil {
			return nil, err
		}
		entries = append(entries, e.toEntry(dto.TransactionDate))
	}

	now := s.now()
	header := &Header{
		TenantID:          tenantID,
		TransactionNumber: NewTransactionNumber(dto.TransactionDate),
		TransactionDate:   dto.TransactionDate,
		Description:       dto.Description,
		Reference:         dto.Reference,
		SourceID:          dto.SourceID,
		Status:            StatusDraft,
		Entries:           entries,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, header); err != nil {
		s.logger.Error("failed to create transaction", "error", err, "tenant_id", tenantID)
		return nil, err
	}

	s.logger.Info("transaction created",
		"transaction_id", header.ID,
		"transaction_number", header.TransactionNumber,
		"entries", len(entries))
	return header, nil
}

func (s *Service) GetTransaction(ctx context.Context, id int64) (*Header, error) {
	header, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get transaction", "error", err, "transaction_id", id)
		return nil, internal.ErrTransactionNotFound
	}
	return header, nil
}

func (s *Service) ListTransactions(ctx context.Context, q ListQuery) ([]*Header, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	headers, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err, "tenant_id", q.TenantID)
		return nil, err
	}
	return headers, nil
}

// UpdateDraft edits description, reference, or entries. Permitted only while
// the header is in draft.
func (s *Service) UpdateDraft(ctx context.Context, id int64, dto UpdateDraftDTO) (*Header, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	header, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}
	if !header.Editable() {
		s.logger.Warn("rejected edit of non-draft transaction", "transaction_id", id, "status", header.Status)
		return nil, internal.ErrCannotModifyPosted
	}

	if dto.Description != nil {
		header.Description = *dto.Description
	}
	if dto.Reference != nil {
		header.Reference = *dto.Reference
	}
	if dto.Entries != nil {
		entries := make([]LedgerEntry, 0, len(*dto.Entries))
		for i, e := range *dto.Entries {
			entry := e.toEntry(header.TransactionDate)
			if err := ValidateEntryLine(i, entry); err != nil {
				return nil, err
			}
			entry.HeaderID = header.ID
			entries = append(entries, entry)
		}
		header.Entries = entries
	}
	header.UpdatedAt = s.now()

	if err := s.repo.UpdateDraft(ctx, header); err != nil {
		s.logger.Error("failed to update draft", "error", err, "transaction_id", id)
		return nil, err
	}

	s.logger.Info("draft transaction updated", "transaction_id", id)
	return header, nil
}

// DeleteDraft removes a draft header and its entries. The delete runs under
// the resilient executor since the backing store may fail transiently.
func (s *Service) DeleteDraft(ctx context.Context, id int64) error {
	header, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.ErrTransactionNotFound
	}
	if !header.Editable() {
		s.logger.Warn("rejected delete of non-draft transaction", "transaction_id", id, "status", header.Status)
		return internal.ErrCannotModifyPosted
	}

	if err := s.exec.Do(ctx, "delete transaction", func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	}); err != nil {
		s.logger.Error("failed to delete draft", "error", err, "transaction_id", id)
		return err
	}

	s.logger.Info("draft transaction deleted", "transaction_id", id, "transaction_number", header.TransactionNumber)
	return nil
}

// Submit advances draft → submitted. Requires a non-empty, balanced entry
// set; no capability is needed.
func (s *Service) Submit(ctx context.Context, id int64) (*Header, error) {
	header, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}

	if len(header.Entries) == 0 {
		s.logger.Warn("submit rejected: no entries", "transaction_id", id)
		return nil, internal.NewValidationError("transaction has no ledger entries", internal.ErrCodeEmptyEntries)
	}
	if result := ValidateEntries(header.Entries); !result.IsBalanced {
		s.logger.Warn("submit rejected: unbalanced entries",
			"transaction_id", id,
			"total_debit", result.TotalDebit,
			"total_credit", result.TotalCredit)
		return nil, unbalancedError(result)
	}

	return s.applyTransition(ctx, header, ActionSubmit, nil)
}

// Approve advances submitted → approved. Gated on finance.approve.
func (s *Service) Approve(ctx context.Context, id int64, actor *auth.Actor) (*Header, error) {
	if !s.caps.HasCapability(ctx, actor, auth.CapabilityFinanceApprove) {
		s.logger.Warn("approve denied: capability missing", "transaction_id", id, "actor_id", actorID(actor))
		return nil, internal.NewPermissionDeniedError(auth.CapabilityFinanceApprove)
	}

	header, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}

	return s.applyTransition(ctx, header, ActionApprove, nil)
}

// Reject returns submitted → draft for correction. Gated on finance.approve.
func (s *Service) Reject(ctx context.Context, id int64, actor *auth.Actor) (*Header, error) {
	if !s.caps.HasCapability(ctx, actor, auth.CapabilityFinanceApprove) {
		s.logger.Warn("reject denied: capability missing", "transaction_id", id, "actor_id", actorID(actor))
		return nil, internal.NewPermissionDeniedError(auth.CapabilityFinanceApprove)
	}

	header, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}

	return s.applyTransition(ctx, header, ActionReject, nil)
}

// Post commits approved → posted. Gated on finance.approve; the balance
// invariant is re-checked immediately before the transition.
func (s *Service) Post(ctx context.Context, id int64, actor *auth.Actor) (*Header, error) {
	if !s.caps.HasCapability(ctx, actor, auth.CapabilityFinanceApprove) {
		s.logger.Warn("post denied: capability missing", "transaction_id", id, "actor_id", actorID(actor))
		return nil, internal.NewPermissionDeniedError(auth.CapabilityFinanceApprove)
	}

	header, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}

	if result := ValidateEntries(header.Entries); !result.IsBalanced {
		s.logger.Warn("post rejected: unbalanced entries",
			"transaction_id", id,
			"total_debit", result.TotalDebit,
			"total_credit", result.TotalCredit)
		return nil, unbalancedError(result)
	}

	postedAt := s.now()
	header, err = s.applyTransition(ctx, header, ActionPost, map[string]interface{}{"posted_at": postedAt})
	if err != nil {
		return nil, err
	}
	header.PostedAt = &postedAt
	return header, nil
}

// Void marks posted → voided with a mandatory reason. No reversing entries
// are generated unless a ReversalWriter is configured; balance queries
// exclude voided headers by default instead.
func (s *Service) Void(ctx context.Context, id int64, dto VoidTransactionDTO) (*Header, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeVoidReasonMissing)
	}

	header, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}

	target, ok := transitions[header.Status][ActionVoid]
	if !ok {
		return nil, transitionConflict(header.Status, ActionVoid)
	}

	voidedAt := s.now()
	fields := map[string]interface{}{
		"voided_at":   voidedAt,
		"void_reason": dto.Reason,
	}

	// The status update runs under the resilient executor: voiding is the
	// operation most exposed to transient store failures.
	if err := s.exec.Do(ctx, "void transaction", func(ctx context.Context) error {
		return s.repo.TransitionStatus(ctx, header.ID, header.Status, target, fields)
	}); err != nil {
		s.logger.Error("failed to void transaction", "error", err, "transaction_id", id)
		return nil, err
	}

	header.Status = target
	header.VoidedAt = &voidedAt
	header.VoidReason = &dto.Reason
	header.UpdatedAt = voidedAt

	if s.reversals != nil {
		if err := s.reversals.WriteReversal(ctx, header); err != nil {
			s.logger.Error("reversal generation failed", "error", err, "transaction_id", id)
			return nil, err
		}
	}

	s.logger.Info("transaction voided",
		"transaction_id", id,
		"transaction_number", header.TransactionNumber,
		"reason", dto.Reason)
	return header, nil
}

// applyTransition resolves the target state from the lifecycle table and
// applies it with an optimistic status re-check at the store.
func (s *Service) applyTransition(ctx context.Context, header *Header, action Action, fields map[string]interface{}) (*Header, error) {
	target, ok := transitions[header.Status][action]
	if !ok {
		s.logger.Warn("invalid lifecycle transition",
			"transaction_id", header.ID,
			"status", header.Status,
			"action", action)
		return nil, transitionConflict(header.Status, action)
	}

	if err := s.repo.TransitionStatus(ctx, header.ID, header.Status, target, fields); err != nil {
		s.logger.Error("status transition failed",
			"error", err,
			"transaction_id", header.ID,
			"from", header.Status,
			"to", target)
		return nil, err
	}

	s.logger.Info("transaction transitioned",
		"transaction_id", header.ID,
		"transaction_number", header.TransactionNumber,
		"from", header.Status,
		"to", target,
		"action", action)

	header.Status = target
	header.UpdatedAt = s.now()
	return header, nil
}

func transitionConflict(status Status, action Action) error {
	return internal.NewConflictError(
		fmt.Sprintf("cannot %s a transaction in status %q", action, status),
		internal.ErrCodeInvalidTransition)
}

func unbalancedError(result BalanceResult) error {
	return internal.NewValidationError(
		fmt.Sprintf("ledger entries do not balance: debits %s, credits %s",
			result.TotalDebit.StringFixed(2), result.TotalCredit.StringFixed(2)),
		internal.ErrCodeUnbalancedEntries).WithDetails(result)
}

func actorID(actor *auth.Actor) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}
