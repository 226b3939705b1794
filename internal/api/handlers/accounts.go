package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nsparik/fund-transfer-engine/internal/api/apierr"
	"github.com/nsparik/fund-transfer-engine/internal/application/accountuc"
	"github.com/nsparik/fund-transfer-engine/internal/application/statement"
	"github.com/nsparik/fund-transfer-engine/internal/domain/account"
)

type createAccountRequest struct {
	OwnerName      string `json:"owner_name"`
	Currency       string `json:"currency"`
	InitialBalance int64  `json:"initial_balance"`
}

// MakeCreateAccountHandler implements POST /accounts (spec.md §6), guarded
// by the idempotency pre-filter (spec.md §4.9): X-Idempotency-Key is
// mandatory on this endpoint.
func MakeCreateAccountHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Idempotency-Key")

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierr.Of(apierr.CodeInvalidJSON, "could not read request body"))
			return
		}

		status, respBody, _, runErr := deps.Idempotency.Run(c.Request.Context(), key, c.Request.Method, c.Request.URL.Path, body, func(ctx context.Context) (int, []byte, error) {
			var req createAccountRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return 0, nil, jsonDecodeErr(err)
			}

			created, err := deps.Accounts.Create(ctx, accountuc.CreateCommand{
				OwnerName:      req.OwnerName,
				Currency:       req.Currency,
				InitialBalance: req.InitialBalance,
			})
			if err != nil {
				return 0, nil, err
			}

			respBody, err := json.Marshal(apierr.Data(toAccountDTO(created)))
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

// MakeGetAccountHandler implements GET /accounts/{id}.
func MakeGetAccountHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := deps.Accounts.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, apierr.Data(toAccountDTO(a)))
	}
}

// MakeFreezeHandler implements POST /accounts/{id}/freeze.
func MakeFreezeHandler(deps Dependencies) gin.HandlerFunc {
	return lifecycleHandler(deps, deps.Accounts.Freeze)
}

// MakeUnfreezeHandler implements POST /accounts/{id}/unfreeze.
func MakeUnfreezeHandler(deps Dependencies) gin.HandlerFunc {
	return lifecycleHandler(deps, deps.Accounts.Unfreeze)
}

// MakeCloseHandler implements POST /accounts/{id}/close.
func MakeCloseHandler(deps Dependencies) gin.HandlerFunc {
	return lifecycleHandler(deps, deps.Accounts.Close)
}

func lifecycleHandler(deps Dependencies, op func(ctx context.Context, id string) (*account.Account, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := op(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, apierr.Data(toAccountDTO(a)))
	}
}

// MakeListAccountTransfersHandler implements GET /accounts/{id}/transfers.
func MakeListAccountTransfersHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pageParams(c)
		status := c.Query("status")
		transfers, err := deps.TransferRepo.ListByAccount(c.Request.Context(), c.Param("id"), status, page, perPage)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, apierr.Data(toTransferDTOs(transfers)))
	}
}

// MakeStatementHandler implements GET /accounts/{id}/statement.
func MakeStatementHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := parseDateRange(c)
		if err != nil {
			respondError(c, err)
			return
		}
		page, perPage := pageParams(c)

		stmt, err := deps.Statements.Get(c.Request.Context(), statement.Query{
			AccountID: c.Param("id"),
			From:      from,
			To:        to,
			Page:      page,
			PerPage:   perPage,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, apierr.Data(statementDTO{
			AccountID:      stmt.AccountID,
			OpeningBalance: stmt.OpeningBalance,
			ClosingBalance: stmt.ClosingBalance,
			Movements:      toLedgerEntryDTOs(stmt.Movements),
			Page:           stmt.Page,
			PerPage:        stmt.PerPage,
		}))
	}
}
