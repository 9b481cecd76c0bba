package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/log"
)

type transactionResponse struct {
	ID                 string     `json:"id"`
	Date               core.Date  `json:"date"`
	Amount             string     `json:"amount"`
	Kind               string     `json:"kind"`
	Merchant           string     `json:"merchant"`
	Account            string     `json:"account"`
	Category           *string    `json:"category"`
	CategoryConfidence *int       `json:"categoryConfidence"`
	CategorySource     string     `json:"categorySource"`
	Notes              *string    `json:"notes"`
	ImportBatchID      *string    `json:"importBatchId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          *time.Time `json:"updatedAt"`
}

type pagedResponse struct {
	Data       []transactionResponse `json:"data"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalCount int                   `json:"totalCount"`
	TotalPages int                   `json:"totalPages"`
}

type summaryResponse struct {
	StartDate         core.Date         `json:"startDate"`
	EndDate           core.Date         `json:"endDate"`
	TotalIncome       string            `json:"totalIncome"`
	TotalExpenses     string            `json:"totalExpenses"`
	NetCashFlow       string            `json:"netCashFlow"`
	TransactionCount  int               `json:"transactionCount"`
	CategoryBreakdown map[string]string `json:"categoryBreakdown"`
	AccountBreakdown  map[string]string `json:"accountBreakdown"`
}

type importResponse struct {
	BatchID  string `json:"batchId"`
	Imported int    `json:"imported"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                 tx.ID.String(),
		Date:               tx.Date,
		Amount:             core.FormatAmount(tx.Amount),
		Kind:               string(tx.Kind),
		Merchant:           tx.Merchant,
		Account:            tx.Account,
		Category:           tx.Category,
		CategoryConfidence: tx.CategoryConfidence,
		CategorySource:     string(tx.CategorySource),
		Notes:              tx.Notes,
		CreatedAt:          tx.CreatedAt,
		UpdatedAt:          tx.UpdatedAt,
	}
	if tx.ImportBatchID != nil {
		id := tx.ImportBatchID.String()
		resp.ImportBatchID = &id
	}
	return resp
}

func toPagedResponse(page core.Page) pagedResponse {
	data := make([]transactionResponse, 0, len(page.Items))
	for _, tx := range page.Items {
		data = append(data, toTransactionResponse(tx))
	}
	return pagedResponse{
		Data:       data,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}
}

func toSummaryResponse(summary core.Summary) summaryResponse {
	return summaryResponse{
		StartDate:         summary.StartDate,
		EndDate:           summary.EndDate,
		TotalIncome:       core.FormatAmount(summary.TotalIncome),
		TotalExpenses:     core.FormatAmount(summary.TotalExpenses),
		NetCashFlow:       core.FormatAmount(summary.NetCashFlow),
		TransactionCount:  summary.TransactionCount,
		CategoryBreakdown: formatBreakdown(summary.CategoryBreakdown),
		AccountBreakdown:  formatBreakdown(summary.AccountBreakdown),
	}
}

func formatBreakdown(in map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = core.FormatAmount(v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps domain errors onto HTTP status codes. Anything
// not recognized is treated as a store failure.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case isInvalidArgument(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.FromContext(ctx).Error("Store operation failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	}
}

func isInvalidArgument(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidPage,
		core.ErrInvalidPageSize,
		core.ErrInvalidDateRange,
		core.ErrInvalidDate,
		core.ErrFutureDate,
		core.ErrInvalidAmount,
		core.ErrInvalidKind,
		core.ErrEmptyMerchant,
		core.ErrMerchantTooLong,
		core.ErrEmptyAccount,
		core.ErrAccountTooLong,
		core.ErrCategoryTooLong,
		core.ErrNotesTooLong,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
