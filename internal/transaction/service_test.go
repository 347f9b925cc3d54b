package transaction_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/stewardbooks/church-finance/internal"
	"github.com/stewardbooks/church-finance/internal/auth"
	"github.com/stewardbooks/church-finance/internal/transaction"
	"github.com/stewardbooks/church-finance/pkg/retryexec"
)

// Mock repository for testing
type mockTransactionRepository struct {
	headers         map[int64]*transaction.Header
	nextID          int64
	createError     error
	getError        error
	updateError     error
	deleteError     error
	transitionError error
	transitionCalls int
	// transientFailures makes the first N transition/delete calls fail with a
	// retryable error before succeeding.
	transientFailures int
}

func newMockTransactionRepository() *mockTransactionRepository {
	return &mockTransactionRepository{
		headers: make(map[int64]*transaction.Header),
		nextID:  1,
	}
}

func (m *mockTransactionRepository) Create(_ context.Context, h *transaction.Header) error {
	if m.createError != nil {
		return m.createError
	}
	h.ID = m.nextID
	m.nextID++
	for i := range h.Entries {
		h.Entries[i].HeaderID = h.ID
	}
	m.headers[h.ID] = h
	return nil
}

func (m *mockTransactionRepository) GetByID(_ context.Context, id int64) (*transaction.Header, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	h, ok := m.headers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *h
	return &copied, nil
}

func (m *mockTransactionRepository) List(_ context.Context, q transaction.ListQuery) ([]*transaction.Header, error) {
	var out []*transaction.Header
	for _, h := range m.headers {
		if h.TenantID != q.TenantID {
			continue
		}
		if q.Status != nil && h.Status != *q.Status {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (m *mockTransactionRepository) UpdateDraft(_ context.Context, h *transaction.Header) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.headers[h.ID] = h
	return nil
}

func (m *mockTransactionRepository) Delete(_ context.Context, id int64) error {
	if m.transientFailures > 0 {
		m.transientFailures--
		return internal.NewTransientError("store unavailable", nil)
	}
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.headers, id)
	return nil
}

func (m *mockTransactionRepository) TransitionStatus(_ context.Context, id int64, from, to transaction.Status, fields map[string]interface{}) error {
	m.transitionCalls++
	if m.transientFailures > 0 {
		m.transientFailures--
		return internal.NewTransientError("store unavailable", nil)
	}
	if m.transitionError != nil {
		return m.transitionError
	}
	h, ok := m.headers[id]
	if !ok {
		return errors.New("not found")
	}
	if h.Status != from {
		return internal.ErrStatusChanged
	}
	h.Status = to
	return nil
}

type mockReversalWriter struct {
	calls    int
	lastID   int64
	writeErr error
}

func (m *mockReversalWriter) WriteReversal(_ context.Context, h *transaction.Header) error {
	m.calls++
	m.lastID = h.ID
	return m.writeErr
}

var _ = Describe("TransactionService", func() {
	var (
		service  *transaction.Service
		mockRepo *mockTransactionRepository
		checker  *auth.StaticChecker
		testLog  *slog.Logger

		treasurer *auth.Actor
		clerk     *auth.Actor

		fixedNow time.Time
	)

	balancedDTO := func() transaction.CreateTransactionDTO {
		return transaction.CreateTransactionDTO{
			TransactionDate: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
			Description:     "Sunday offering deposit",
			Entries: []transaction.EntryDTO{
				{AccountID: 1, Debit: decimal.RequireFromString("500.00")},
				{AccountID: 2, Credit: decimal.RequireFromString("500.00")},
			},
		}
	}

	createDraft := func(dto transaction.CreateTransactionDTO) *transaction.Header {
		h, err := service.CreateDraft(context.Background(), "tenant-1", dto)
		Expect(err).ToNot(HaveOccurred())
		return h
	}

	BeforeEach(func() {
		mockRepo = newMockTransactionRepository()
		checker = auth.NewStaticChecker()
		testLog = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		exec := retryexec.New(retryexec.Options{MaxRetries: 3, InitialDelay: time.Millisecond}, testLog)
		fixedNow = time.Date(2026, 6, 20, 10, 0, 0, 0, time.UTC)
		service = transaction.NewService(mockRepo, checker, exec, testLog).
			WithClock(func() time.Time { return fixedNow })

		treasurer = &auth.Actor{ID: 1, TenantID: "tenant-1", Name: "Pat", Capabilities: []string{auth.CapabilityFinanceApprove}}
		clerk = &auth.Actor{ID: 2, TenantID: "tenant-1", Name: "Sam", Capabilities: nil}
	})

	Describe("CreateDraft", func() {
		It("creates a draft with a generated transaction number", func() {
			header := createDraft(balancedDTO())

			Expect(header.ID).To(BeNumerically(">", 0))
			Expect(header.Status).To(Equal(transaction.StatusDraft))
			Expect(header.TransactionNumber).To(HavePrefix("TXN-20260615-"))
			Expect(header.Entries).To(HaveLen(2))
		})

		It("allows an unbalanced entry set while in draft", func() {
			dto := balancedDTO()
			dto.Entries = dto.Entries[:1]

			header := createDraft(dto)

			Expect(header.Status).To(Equal(transaction.StatusDraft))
		})

		It("rejects a missing description", func() {
			dto := balancedDTO()
			dto.Description = ""

			_, err := service.CreateDraft(context.Background(), "tenant-1", dto)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects an entry line with both debit and credit", func() {
			dto := balancedDTO()
			dto.Entries[0].Credit = decimal.RequireFromString("500.00")

			_, err := service.CreateDraft(context.Background(), "tenant-1", dto)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidEntryLine))
		})

		It("defaults entry dates to the header date", func() {
			header := createDraft(balancedDTO())

			Expect(header.Entries[0].Date).To(Equal(header.TransactionDate))
		})
	})

	Describe("Submit", func() {
		It("advances draft to submitted when entries balance", func() {
			header := createDraft(balancedDTO())

			updated, err := service.Submit(context.Background(), header.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(transaction.StatusSubmitted))
		})

		It("rejects an empty entry set", func() {
			dto := balancedDTO()
			dto.Entries = nil
			header := createDraft(dto)

			_, err := service.Submit(context.Background(), header.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmptyEntries))
		})

		It("rejects an unbalanced entry set with the totals in details", func() {
			dto := balancedDTO()
			dto.Entries[1].Credit = decimal.RequireFromString("499.00")
			header := createDraft(dto)

			_, err := service.Submit(context.Background(), header.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnbalancedEntries))
			Expect(appErr.Details).ToNot(BeNil())
		})

		It("rejects submitting twice", func() {
			header := createDraft(balancedDTO())
			_, err := service.Submit(context.Background(), header.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Submit(context.Background(), header.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTransition))
		})
	})

	Describe("Approve", func() {
		It("requires finance.approve before anything else", func() {
			// Even a nonexistent transaction reports permission first.
			_, err := service.Approve(context.Background(), 9999, clerk)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
			Expect(appErr.Code).To(Equal(internal.ErrCodeCapabilityMissing))
		})

		It("advances submitted to approved for a capable actor", func() {
			header := createDraft(balancedDTO())
			_, err := service.Submit(context.Background(), header.ID)
			Expect(err).ToNot(HaveOccurred())

			updated, err := service.Approve(context.Background(), header.ID, treasurer)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(transaction.StatusApproved))
		})

		It("honors an admin grant as an implicit capability", func() {
			admin := &auth.Actor{ID: 3, Capabilities: []string{auth.CapabilityAdmin}}
			header := createDraft(balancedDTO())
			_, err := service.Submit(context.Background(), header.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Approve(context.Background(), header.ID, admin)

			Expect(err).ToNot(HaveOccurred())
		})

		It("rejects approving a draft", func() {
			header := createDraft(balancedDTO())

			_, err := service.Approve(context.Background(), header.ID, treasurer)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTransition))
		})
	})

	Describe("Reject", func() {
		It("returns a submitted transaction to draft for correction", func() {
			header := createDraft(balancedDTO())
			_, err := service.Submit(context.Background(), header.ID)
			Expect(err).ToNot(HaveOccurred())

			updated, err := service.Reject(context.Background(), header.ID, treasurer)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(transaction.StatusDraft))
		})

		It("is gated on finance.approve", func() {
			_, err := service.Reject(context.Background(), 1, clerk)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})

	Describe("Post", func() {
		submitAndApprove := func(header *transaction.Header) {
			_, err := service.Submit(context.Background(), header.ID)
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Approve(context.Background(), header.ID, treasurer)
			Expect(err).ToNot(HaveOccurred())
		}

		It("commits approved to posted and stamps posted_at", func() {
			header := createDraft(balancedDTO())
			submitAndApprove(header)

			posted, err := service.Post(context.Background(), header.ID, treasurer)

			Expect(err).ToNot(HaveOccurred())
			Expect(posted.Status).To(Equal(transaction.StatusPosted))
			Expect(posted.PostedAt).ToNot(BeNil())
			Expect(*posted.PostedAt).To(Equal(fixedNow))
		})

		It("re-checks the balance invariant before committing", func() {
			header := createDraft(balancedDTO())
			submitAndApprove(header)
			// Corrupt the stored entries behind the lifecycle's back.
			mockRepo.headers[header.ID].Entries[1].Credit = decimal.RequireFromString("1.00")

			_, err := service.Post(context.Background(), header.ID, treasurer)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnbalancedEntries))
		})

		It("refuses posting straight from draft", func() {
			header := createDraft(balancedDTO())

			_, err := service.Post(context.Background(), header.ID, treasurer)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTransition))
		})

		It("surfaces a concurrent status change as a conflict", func() {
			header := createDraft(balancedDTO())
			submitAndApprove(header)
			// Another session posts first.
			mockRepo.headers[header.ID].Status = transaction.StatusPosted

			_, err := service.Post(context.Background(), header.ID, treasurer)

			Expect(errors.Is(err, internal.ErrStatusChanged) || err == internal.ErrStatusChanged).To(BeTrue())
		})
	})

	Describe("Void", func() {
		postTransaction := func() *transaction.Header {
			header := createDraft(balancedDTO())
			_, err := service.Submit(context.Background(), header.ID)
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Approve(context.Background(), header.ID, treasurer)
			Expect(err).ToNot(HaveOccurred())
			posted, err := service.Post(context.Background(), header.ID, treasurer)
			Expect(err).ToNot(HaveOccurred())
			return posted
		}

		It("marks a posted transaction voided with the reason retained", func() {
			posted := postTransaction()

			voided, err := service.Void(context.Background(), posted.ID, transaction.VoidTransactionDTO{Reason: "duplicate deposit"})

			Expect(err).ToNot(HaveOccurred())
			Expect(voided.Status).To(Equal(transaction.StatusVoided))
			Expect(voided.VoidedAt).ToNot(BeNil())
			Expect(voided.VoidReason).ToNot(BeNil())
			Expect(*voided.VoidReason).To(Equal("duplicate deposit"))
		})

		It("requires a reason", func() {
			posted := postTransaction()

			_, err := service.Void(context.Background(), posted.ID, transaction.VoidTransactionDTO{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeVoidReasonMissing))
		})

		It("refuses voiding anything that is not posted", func() {
			header := createDraft(balancedDTO())

			_, err := service.Void(context.Background(), header.ID, transaction.VoidTransactionDTO{Reason: "oops"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTransition))
		})

		It("retries transient store failures before succeeding", func() {
			posted := postTransaction()
			mockRepo.transientFailures = 2

			voided, err := service.Void(context.Background(), posted.ID, transaction.VoidTransactionDTO{Reason: "bank reversal"})

			Expect(err).ToNot(HaveOccurred())
			Expect(voided.Status).To(Equal(transaction.StatusVoided))
		})

		It("invokes the reversal writer when one is configured", func() {
			writer := &mockReversalWriter{}
			service = service.WithReversalWriter(writer)
			posted := postTransaction()

			_, err := service.Void(context.Background(), posted.ID, transaction.VoidTransactionDTO{Reason: "correction"})

			Expect(err).ToNot(HaveOccurred())
			Expect(writer.calls).To(Equal(1))
			Expect(writer.lastID).To(Equal(posted.ID))
		})
	})

	Describe("UpdateDraft", func() {
		It("replaces the entry set wholesale", func() {
			header := createDraft(balancedDTO())
			entries := []transaction.EntryDTO{
				{AccountID: 5, Debit: decimal.RequireFromString("10.00")},
				{AccountID: 6, Credit: decimal.RequireFromString("10.00")},
			}

			updated, err := service.UpdateDraft(context.Background(), header.ID, transaction.UpdateDraftDTO{Entries: &entries})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Entries).To(HaveLen(2))
			Expect(updated.Entries[0].AccountID).To(Equal(int64(5)))
		})

		It("rejects edits once the transaction has left draft", func() {
			header := createDraft(balancedDTO())
			_, err := service.Submit(context.Background(), header.ID)
			Expect(err).ToNot(HaveOccurred())

			desc := "edited"
			_, err = service.UpdateDraft(context.Background(), header.ID, transaction.UpdateDraftDTO{Description: &desc})

			Expect(errors.Is(err, internal.ErrCannotModifyPosted)).To(BeTrue())
		})
	})

	Describe("DeleteDraft", func() {
		It("deletes a draft, retrying transient failures", func() {
			header := createDraft(balancedDTO())
			mockRepo.transientFailures = 1

			Expect(service.DeleteDraft(context.Background(), header.ID)).To(Succeed())
			Expect(mockRepo.headers).ToNot(HaveKey(header.ID))
		})

		It("refuses to delete once submitted", func() {
			header := createDraft(balancedDTO())
			_, err := service.Submit(context.Background(), header.ID)
			Expect(err).ToNot(HaveOccurred())

			err = service.DeleteDraft(context.Background(), header.ID)

			Expect(errors.Is(err, internal.ErrCannotModifyPosted)).To(BeTrue())
		})
	})

	Describe("full lifecycle", func() {
		It("walks draft, submitted, approved, posted, voided end to end", func() {
			header := createDraft(balancedDTO())
			Expect(header.Status).To(Equal(transaction.StatusDraft))

			submitted, err := service.Submit(context.Background(), header.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(submitted.Status).To(Equal(transaction.StatusSubmitted))

			approved, err := service.Approve(context.Background(), header.ID, treasurer)
			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Status).To(Equal(transaction.StatusApproved))

			posted, err := service.Post(context.Background(), header.ID, treasurer)
			Expect(err).ToNot(HaveOccurred())
			Expect(posted.Status).To(Equal(transaction.StatusPosted))

			voided, err := service.Void(context.Background(), header.ID, transaction.VoidTransactionDTO{Reason: "entered twice"})
			Expect(err).ToNot(HaveOccurred())
			Expect(voided.Status).To(Equal(transaction.StatusVoided))
		})
	})
})
