// Package handlers implements the HTTP/JSON surface spec.md §6 defines,
// built with the teacher's closure-over-dependencies pattern
// (MakeXHandler(deps) gin.HandlerFunc) generalized from its single database
// handle to the full set of application-layer services.
package handlers

import (
	"github.com/nsparik/fund-transfer-engine/internal/application/accountuc"
	"github.com/nsparik/fund-transfer-engine/internal/application/idempotencysvc"
	"github.com/nsparik/fund-transfer-engine/internal/application/statement"
	"github.com/nsparik/fund-transfer-engine/internal/application/transferuc"
	"github.com/nsparik/fund-transfer-engine/internal/infrastructure/database"
)

// Dependencies is the composition root's handle to every service a handler
// may need, passed by value (of pointers) into each MakeXHandler call.
type Dependencies struct {
	Accounts     *accountuc.Service
	Transfers    *transferuc.Service
	Idempotency  *idempotencysvc.Service
	Statements   *statement.Service
	AccountRepo  *database.AccountRepository
	TransferRepo *database.TransferRepository
}
