// Package reporting is the thin client for the hosted reporting service. The
// engine never computes report content; it only derives parameters from the
// ledger data model and forwards them.
package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stewardbooks/church-finance/internal"
)

// Kind names a hosted report.
type Kind string

const (
	KindTrialBalance    Kind = "trial_balance"
	KindIncomeStatement Kind = "income_statement"
	KindBalanceSheet    Kind = "balance_sheet"
	KindGeneralLedger   Kind = "general_ledger"
	KindCashFlow        Kind = "cash_flow"
	KindBudgetVsActual  Kind = "budget_vs_actual"
)

// Params carries everything the service needs to render a report. Filters are
// explicit request state, never held in the client.
type Params struct {
	TenantID   string    `json:"tenant_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	AccountIDs []int64   `json:"account_ids,omitempty"`
	FundID     *int64    `json:"fund_id,omitempty"`
	CategoryID *int64    `json:"category_id,omitempty"`
	BudgetID   *int64    `json:"budget_id,omitempty"`
}

func (p Params) Validate() error {
	if p.TenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required")
	}
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}

// Row is one rendered report line, passed through untouched.
type Row map[string]interface{}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) TrialBalance(ctx context.Context, p Params) ([]Row, error) {
	return c.run(ctx, KindTrialBalance, p)
}

func (c *Client) IncomeStatement(ctx context.Context, p Params) ([]Row, error) {
	return c.run(ctx, KindIncomeStatement, p)
}

func (c *Client) BalanceSheet(ctx context.Context, p Params) ([]Row, error) {
	return c.run(ctx, KindBalanceSheet, p)
}

func (c *Client) GeneralLedger(ctx context.Context, p Params) ([]Row, error) {
	return c.run(ctx, KindGeneralLedger, p)
}

func (c *Client) CashFlow(ctx context.Context, p Params) ([]Row, error) {
	return c.run(ctx, KindCashFlow, p)
}

func (c *Client) BudgetVsActual(ctx context.Context, p Params) ([]Row, error) {
	return c.run(ctx, KindBudgetVsActual, p)
}

func (c *Client) run(ctx context.Context, kind Kind, p Params) ([]Row, error) {
	if err := p.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	ctx, cancel := internal.WithTimeout(ctx, c.httpClient.Timeout)
	defer cancel()

	body, err := json.Marshal(p)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode report parameters", err)
	}

	url := fmt.Sprintf("%s/reports/%s", c.baseURL, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, internal.NewInternalError("failed to build report request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("requesting report", "kind", kind, "tenant_id", p.TenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, internal.NewTransientError("reporting service unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, internal.NewTransientError(
			fmt.Sprintf("reporting service returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, internal.NewPersistenceError(
			fmt.Sprintf("reporting service rejected request with %d", resp.StatusCode), nil)
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, internal.NewInternalError("failed to decode report rows", err)
	}

	c.logger.Info("report rendered", "kind", kind, "tenant_id", p.TenantID, "rows", len(rows))
	return rows, nil
}
