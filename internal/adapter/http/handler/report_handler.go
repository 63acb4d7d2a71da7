// Package handler serves the finalized balance report over HTTP. The
// server is optional (serve mode): it starts after the replay finishes
// and exposes read-only views of the result, never a way to mutate it.
package handler

import (
	"strconv"

	"ledger-replay-engine/internal/core/domain"
	"ledger-replay-engine/internal/service"
	"ledger-replay-engine/pkg/apperror"
	"ledger-replay-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// BalanceSource is the finalized engine view the handlers render.
type BalanceSource interface {
	Finalize() []domain.Balance
	Stats() service.Stats
}

// ReportHandler serves balance report endpoints.
type ReportHandler struct {
	source BalanceSource
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(source BalanceSource) *ReportHandler {
	return &ReportHandler{source: source}
}

// balanceDTO renders monetary fields with the same 4-decimal fixed
// format as the CSV report.
type balanceDTO struct {
	ClientID  uint16 `json:"client_id"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

func toDTO(b domain.Balance) balanceDTO {
	return balanceDTO{
		ClientID:  uint16(b.ClientID),
		Available: b.Available.StringFixed(4),
		Held:      b.Held.StringFixed(4),
		Total:     b.Total().StringFixed(4),
		Locked:    b.Locked,
	}
}

// ListAccounts handles GET /api/v1/accounts.
func (h *ReportHandler) ListAccounts(c *gin.Context) {
	balances := h.source.Finalize()
	dtos := make([]balanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, toDTO(b))
	}

	response.OK(c, gin.H{
		"accounts": dtos,
		"stats":    h.source.Stats(),
	})
}

// GetAccount handles GET /api/v1/accounts/:client_id.
func (h *ReportHandler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("client_id"), 10, 16)
	if err != nil {
		response.Error(c, apperror.ErrInvalidParameter("client_id", err))
		return
	}

	for _, b := range h.source.Finalize() {
		if b.ClientID == domain.ClientID(id) {
			response.OK(c, toDTO(b))
			return
		}
	}
	response.Error(c, apperror.ErrNotFound("account"))
}
