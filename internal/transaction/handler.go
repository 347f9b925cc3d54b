package transaction

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/stewardbooks/church-finance/internal/auth"
	"github.com/stewardbooks/church-finance/internal/notify"
	"github.com/stewardbooks/church-finance/internal/transport"
	"github.com/stewardbooks/church-finance/pkg/logger"
)

type ServiceAPI interface {
	CreateDraft(ctx context.Context, tenantID string, dto CreateTransactionDTO) (*Header, error)
	GetTransaction(ctx context.Context, id int64) (*Header, error)
	ListTransactions(ctx context.Context, q ListQuery) ([]*Header, error)
	UpdateDraft(ctx context.Context, id int64, dto UpdateDraftDTO) (*Header, error)
	DeleteDraft(ctx context.Context, id int64) error
	Submit(ctx context.Context, id int64) (*Header, error)
	Approve(ctx context.Context, id int64, actor *auth.Actor) (*Header, error)
	Reject(ctx context.Context, id int64, actor *auth.Actor) (*Header, error)
	Post(ctx context.Context, id int64, actor *auth.Actor) (*Header, error)
	Void(ctx context.Context, id int64, dto VoidTransactionDTO) (*Header, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Notifier notify.Notifier
}

func NewHandler(service ServiceAPI, notifier notify.Notifier) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
		Notifier:    notifier,
	}
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateTransaction: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	header, err := h.Service.CreateDraft(r.Context(), actor.TenantID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, header)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := h.headerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	header, err := h.Service.GetTransaction(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, header)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := ListQuery{TenantID: actor.TenantID, Limit: 20}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		q.Status = &status
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			q.DateFrom = &t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			q.DateTo = &t
		}
	}
	q.Search = r.URL.Query().Get("search")
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 && l <= 100 {
			q.Limit = l
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if o, err := strconv.Atoi(raw); err == nil && o >= 0 {
			q.Offset = o
		}
	}

	headers, err := h.Service.ListTransactions(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": headers,
		"limit":        q.Limit,
		"offset":       q.Offset,
	})
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := h.headerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	var dto UpdateDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	header, err := h.Service.UpdateDraft(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, header)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := h.headerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	if err := h.Service.DeleteDraft(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := h.headerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	header, err := h.Service.Submit(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, header)
}

func (h *Handler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Approve)
}

func (h *Handler) RejectTransaction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Reject)
}

func (h *Handler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := h.headerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	header, err := h.Service.Post(r.Context(), id, actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Notifier.Notify(notify.KindSuccess,
		"transaction "+header.TransactionNumber+" posted", 5*time.Second)
	h.WriteJSON(w, http.StatusOK, header)
}

func (h *Handler) VoidTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := h.headerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	var dto VoidTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	header, err := h.Service.Void(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Notifier.Notify(notify.KindSuccess,
		"transaction "+header.TransactionNumber+" voided", 5*time.Second)
	h.WriteJSON(w, http.StatusOK, header)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64, *auth.Actor) (*Header, error)) {
	id, err := h.headerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	header, err := apply(r.Context(), id, actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, header)
}

func (h *Handler) headerID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
