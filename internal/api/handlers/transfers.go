package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nsparik/fund-transfer-engine/internal/api/apierr"
	"github.com/nsparik/fund-transfer-engine/internal/application/transferuc"
)

type initiateTransferRequest struct {
	SourceAccountID string `json:"source_account_id"`
	DestAccountID   string `json:"dest_account_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Description     string `json:"description"`
}

// MakeInitiateTransferHandler implements POST /transfers (spec.md §6/§4.7),
// guarded by the mandatory idempotency pre-filter.
func MakeInitiateTransferHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Idempotency-Key")

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierr.Of(apierr.CodeInvalidJSON, "could not read request body"))
			return
		}

		status, respBody, _, runErr := deps.Idempotency.Run(c.Request.Context(), key, c.Request.Method, c.Request.URL.Path, body, func(ctx context.Context) (int, []byte, error) {
			var req initiateTransferRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return 0, nil, jsonDecodeErr(err)
			}

			outcome, err := deps.Transfers.Initiate(ctx, transferuc.InitiateCommand{
				SourceAccountID: req.SourceAccountID,
				DestAccountID:   req.DestAccountID,
				Amount:          req.Amount,
				Currency:        req.Currency,
				Description:     req.Description,
				IdempotencyKey:  key,
			})
			if err != nil {
				return 0, nil, err
			}

			respBody, err := json.Marshal(apierr.Data(toTransferDTO(outcome.Transfer)))
			if err != nil {
				return 0, nil, err
			}
			return http.StatusCreated, respBody, nil
		})

		if runErr != nil {
			respondError(c, runErr)
			return
		}
		c.Data(status, "application/json", respBody)
	}
}

// MakeGetTransferHandler implements GET /transfers/{id}.
func MakeGetTransferHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := deps.TransferRepo.GetByID(c.Request.Context(), nil, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, apierr.Data(toTransferDTO(t)))
	}
}

// MakeListTransfersHandler implements GET /transfers.
func MakeListTransfersHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pageParams(c)
		transfers, err := deps.TransferRepo.List(c.Request.Context(), c.Query("status"), page, perPage)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, apierr.Data(toTransferDTOs(transfers)))
	}
}

// MakeReverseTransferHandler implements POST /transfers/{id}/reverse
// (spec.md §4.8). The idempotency key is optional on this endpoint per
// spec.md §6, so it runs the use-case directly rather than through the
// idempotency service.
func MakeReverseTransferHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := deps.Transfers.Reverse(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, apierr.Data(toTransferDTO(t)))
	}
}
