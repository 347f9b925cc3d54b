package account_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stewardbooks/church-finance/internal"
	"github.com/stewardbooks/church-finance/internal/account"
)

// Mock repository for testing
type mockAccountRepository struct {
	accounts    map[int64]*account.Account
	nextID      int64
	createError error
	getError    error
	updateError error
	hasEntries  map[int64]bool
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		accounts:   make(map[int64]*account.Account),
		hasEntries: make(map[int64]bool),
		nextID:     1,
	}
}

func (m *mockAccountRepository) Create(_ context.Context, a *account.Account) error {
	if m.createError != nil {
		return m.createError
	}
	a.ID = m.nextID
	m.nextID++
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountRepository) GetByID(_ context.Context, id int64) (*account.Account, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

func (m *mockAccountRepository) GetByCode(_ context.Context, tenantID, code string) (*account.Account, error) {
	for _, a := range m.accounts {
		if a.TenantID == tenantID && a.Code == code {
			return a, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockAccountRepository) GetAll(_ context.Context, tenantID string) ([]*account.Account, error) {
	var out []*account.Account
	for _, a := range m.accounts {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAccountRepository) Update(_ context.Context, a *account.Account) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountRepository) Delete(_ context.Context, id int64) error {
	delete(m.accounts, id)
	return nil
}

func (m *mockAccountRepository) HasLedgerEntries(_ context.Context, id int64) (bool, error) {
	return m.hasEntries[id], nil
}

var _ = Describe("AccountService", func() {
	var (
		service  *account.Service
		mockRepo *mockAccountRepository
	)

	BeforeEach(func() {
		mockRepo = newMockAccountRepository()
		testLog := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = account.NewService(mockRepo, testLog)
	})

	Describe("CreateAccount", func() {
		It("creates an active account", func() {
			acct, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code:        "1000",
				Name:        "Checking",
				AccountType: "asset",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(acct.ID).To(BeNumerically(">", 0))
			Expect(acct.IsActive).To(BeTrue())
			Expect(acct.AccountType).To(Equal(account.TypeAsset))
		})

		It("rejects a duplicate code within the tenant", func() {
			_, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1000", Name: "Checking", AccountType: "asset",
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1000", Name: "Other", AccountType: "asset",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateCode))
		})

		It("allows the same code in a different tenant", func() {
			_, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1000", Name: "Checking", AccountType: "asset",
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CreateAccount(context.Background(), "tenant-2", account.CreateAccountDTO{
				Code: "1000", Name: "Checking", AccountType: "asset",
			})

			Expect(err).ToNot(HaveOccurred())
		})

		It("rejects an unknown account type", func() {
			_, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1000", Name: "Checking", AccountType: "contra",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a parent that does not exist", func() {
			missing := int64(999)
			_, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1010", Name: "Sub", AccountType: "asset", ParentID: &missing,
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAccountRef))
		})
	})

	Describe("UpdateAccount", func() {
		It("rejects a parent reassignment that closes a cycle", func() {
			parent, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1000", Name: "Assets", AccountType: "asset",
			})
			Expect(err).ToNot(HaveOccurred())
			child, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1010", Name: "Checking", AccountType: "asset", ParentID: &parent.ID,
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.UpdateAccount(context.Background(), parent.ID, account.UpdateAccountDTO{
				ParentID: &child.ID,
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("applies partial field updates", func() {
			acct, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1000", Name: "Checking", AccountType: "asset",
			})
			Expect(err).ToNot(HaveOccurred())

			name := "Main Checking"
			updated, err := service.UpdateAccount(context.Background(), acct.ID, account.UpdateAccountDTO{Name: &name})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Name).To(Equal("Main Checking"))
			Expect(updated.Code).To(Equal("1000"))
		})
	})

	Describe("RemoveAccount", func() {
		It("hard-deletes an account no ledger line references", func() {
			acct, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1000", Name: "Checking", AccountType: "asset",
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.RemoveAccount(context.Background(), acct.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.accounts).ToNot(HaveKey(acct.ID))
		})

		It("falls back to deactivation once entries reference it", func() {
			acct, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1000", Name: "Checking", AccountType: "asset",
			})
			Expect(err).ToNot(HaveOccurred())
			mockRepo.hasEntries[acct.ID] = true

			removed, err := service.RemoveAccount(context.Background(), acct.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(removed.IsActive).To(BeFalse())
			Expect(mockRepo.accounts).To(HaveKey(acct.ID))
		})

		It("reports not found for an unknown id", func() {
			_, err := service.RemoveAccount(context.Background(), 999)
			Expect(errors.Is(err, internal.ErrAccountNotFound)).To(BeTrue())
		})
	})

	Describe("ChartOfAccounts", func() {
		It("returns the grouped forest for the tenant only", func() {
			_, err := service.CreateAccount(context.Background(), "tenant-1", account.CreateAccountDTO{
				Code: "1000", Name: "Checking", AccountType: "asset",
			})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.CreateAccount(context.Background(), "tenant-2", account.CreateAccountDTO{
				Code: "4000", Name: "Offerings", AccountType: "revenue",
			})
			Expect(err).ToNot(HaveOccurred())

			forest, err := service.ChartOfAccounts(context.Background(), "tenant-1")

			Expect(err).ToNot(HaveOccurred())
			Expect(forest.Groups[account.TypeAsset]).To(HaveLen(1))
			Expect(forest.Groups[account.TypeRevenue]).To(BeEmpty())
		})
	})
})
