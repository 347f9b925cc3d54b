package account

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/stewardbooks/church-finance/internal/auth"
	"github.com/stewardbooks/church-finance/internal/transport"
	"github.com/stewardbooks/church-finance/pkg/logger"
)

type ServiceAPI interface {
	CreateAccount(ctx context.Context, tenantID string, dto CreateAccountDTO) (*Account, error)
	GetAccount(ctx context.Context, id int64) (*Account, error)
	ChartOfAccounts(ctx context.Context, tenantID string) (*Forest, error)
	UpdateAccount(ctx context.Context, id int64, dto UpdateAccountDTO) (*Account, error)
	RemoveAccount(ctx context.Context, id int64) (*Account, error)
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

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateAccountDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateAccount: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := h.Service.CreateAccount(r.Context(), actor.TenantID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, acct)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid account ID")
		return
	}

	acct, err := h.Service.GetAccount(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acct)
}

// GetChartOfAccounts renders the grouped account forest. Traversal validation
// runs before the forest is returned so a malformed hierarchy surfaces as a
// structural error instead of breaking the client.
func (h *Handler) GetChartOfAccounts(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	forest, err := h.Service.ChartOfAccounts(r.Context(), actor.TenantID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := forest.Walk(func(int, *Account) error { return nil }); err != nil {
		h.Logger.Error("GetChartOfAccounts: hierarchy traversal failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, forest)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid account ID")
		return
	}

	var dto UpdateAccountDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := h.Service.UpdateAccount(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acct)
}

func (h *Handler) RemoveAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid account ID")
		return
	}

	acct, err := h.Service.RemoveAccount(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, acct)
}
