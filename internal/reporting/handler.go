package reporting

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/stewardbooks/church-finance/internal/auth"
	"github.com/stewardbooks/church-finance/internal/transport"
	"github.com/stewardbooks/church-finance/pkg/logger"
)

// ReportRunner is the client surface the handler consumes.
type ReportRunner interface {
	TrialBalance(ctx context.Context, p Params) ([]Row, error)
	IncomeStatement(ctx context.Context, p Params) ([]Row, error)
	BalanceSheet(ctx context.Context, p Params) ([]Row, error)
	GeneralLedger(ctx context.Context, p Params) ([]Row, error)
	CashFlow(ctx context.Context, p Params) ([]Row, error)
	BudgetVsActual(ctx context.Context, p Params) ([]Row, error)
}

type Handler struct {
	*transport.BaseHandler
	Runner ReportRunner
}

func NewHandler(runner ReportRunner) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Runner:      runner,
	}
}

// RunReport answers GET /reports/{kind}. Parameters are derived from the
// query string; the hosted service does the actual aggregation.
func (h *Handler) RunReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	params, err := h.paramsFromQuery(r, actor.TenantID)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var run func(context.Context, Params) ([]Row, error)
	switch Kind(chi.URLParam(r, "kind")) {
	case KindTrialBalance:
		run = h.Runner.TrialBalance
	case KindIncomeStatement:
		run = h.Runner.IncomeStatement
	case KindBalanceSheet:
		run = h.Runner.BalanceSheet
	case KindGeneralLedger:
		run = h.Runner.GeneralLedger
	case KindCashFlow:
		run = h.Runner.CashFlow
	case KindBudgetVsActual:
		run = h.Runner.BudgetVsActual
	default:
		h.WriteError(w, http.StatusNotFound, "unknown report kind")
		return
	}

	rows, err := run(r.Context(), params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

func (h *Handler) paramsFromQuery(r *http.Request, tenantID string) (Params, error) {
	p := Params{TenantID: tenantID}

	var err error
	if p.StartDate, err = time.Parse("2006-01-02", r.URL.Query().Get("start")); err != nil {
		return p, err
	}
	if p.EndDate, err = time.Parse("2006-01-02", r.URL.Query().Get("end")); err != nil {
		return p, err
	}

	for _, raw := range r.URL.Query()["account_id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return p, err
		}
		p.AccountIDs = append(p.AccountIDs, id)
	}
	if raw := r.URL.Query().Get("fund_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return p, err
		}
		p.FundID = &id
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return p, err
		}
		p.CategoryID = &id
	}
	if raw := r.URL.Query().Get("budget_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return p, err
		}
		p.BudgetID = &id
	}

	return p, nil
}
