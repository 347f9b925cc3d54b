package balance

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/stewardbooks/church-finance/internal/transaction"
	"github.com/stewardbooks/church-finance/internal/transport"
	"github.com/stewardbooks/church-finance/pkg/logger"
)

type ServiceAPI interface {
	AccountBalance(ctx context.Context, q Query) (*Result, error)
	UsageForBudget(ctx context.Context, budgetID int64) (Usage, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

// GetAccountBalance answers GET /accounts/{id}/balance. Status filtering is
// an explicit query parameter; the default is posted-only.
func (h *Handler) GetAccountBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid account ID")
		return
	}

	q := Query{AccountID: accountID}

	if raw := r.URL.Query().Get("as_of"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid as_of date, expected YYYY-MM-DD")
			return
		}
		q.AsOf = t
	}
	for _, raw := range r.URL.Query()["status"] {
		status, err := transaction.ParseStatus(raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		q.Statuses = append(q.Statuses, status)
	}
	if r.URL.Query().Get("include_voided") == "true" {
		q.IncludeVoided = true
	}

	result, err := h.Service.AccountBalance(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
