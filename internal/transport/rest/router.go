package rest

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/stewardbooks/church-finance/internal/account"
	"github.com/stewardbooks/church-finance/internal/auth"
	"github.com/stewardbooks/church-finance/internal/balance"
	"github.com/stewardbooks/church-finance/internal/budget"
	"github.com/stewardbooks/church-finance/internal/fund"
	"github.com/stewardbooks/church-finance/internal/reporting"
	"github.com/stewardbooks/church-finance/internal/transaction"
	"github.com/stewardbooks/church-finance/internal/transport/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Account     *account.Handler
	Transaction *transaction.Handler
	Balance     *balance.Handler
	Budget      *budget.Handler
	Fund        *fund.Handler
	Reporting   *reporting.Handler
}

// RegisterAllRoutes wires the API surface. Every route below the actor
// middleware carries an authenticated caller; lifecycle transitions that need
// finance.approve are additionally gated per-route.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, authMW *auth.Middleware, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(authMW.ActorContext)

			if h := handlers.Account; h != nil {
				pr.Route("/accounts", func(ar chi.Router) {
					ar.Get("/", h.GetChartOfAccounts)
					ar.Post("/", h.CreateAccount)
					ar.Get("/{id}", h.GetAccount)
					ar.Patch("/{id}", h.UpdateAccount)
					ar.Delete("/{id}", h.RemoveAccount)
					if b := handlers.Balance; b != nil {
						ar.Get("/{id}/balance", b.GetAccountBalance)
					}
				})
			}

			if h := handlers.Transaction; h != nil {
				pr.Route("/transactions", func(tr chi.Router) {
					tr.Post("/", h.CreateTransaction)
					tr.Get("/", h.ListTransactions)
					tr.Get("/{id}", h.GetTransaction)
					tr.Patch("/{id}", h.UpdateTransaction)
					tr.Delete("/{id}", h.DeleteTransaction)
					tr.Post("/{id}/submit", h.SubmitTransaction)
					tr.Post("/{id}/void", h.VoidTransaction)

					tr.Group(func(mr chi.Router) {
						mr.Use(authMW.RequireCapability(auth.CapabilityFinanceApprove))
						mr.Post("/{id}/approve", h.ApproveTransaction)
						mr.Post("/{id}/reject", h.RejectTransaction)
						mr.Post("/{id}/post", h.PostTransaction)
					})
				})
			}

			if h := handlers.Budget; h != nil {
				pr.Route("/budgets", func(br chi.Router) {
					br.Post("/", h.CreateBudget)
					br.Get("/", h.ListBudgets)
					br.Get("/{id}", h.GetBudget)
					br.Delete("/{id}", h.DeleteBudget)
				})
			}

			if h := handlers.Fund; h != nil {
				pr.Route("/funds", func(fr chi.Router) {
					fr.Post("/", h.CreateFund)
					fr.Get("/", h.ListFunds)
					fr.Get("/{id}", h.GetFund)
					fr.Patch("/{id}", h.RenameFund)
					fr.Delete("/{id}", h.DeleteFund)
				})
			}

			if h := handlers.Reporting; h != nil {
				pr.Get("/reports/{kind}", h.RunReport)
			}
		})
	})
}
