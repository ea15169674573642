// Package resolve drives the per-contract lookup chain and the
// resumable result store.
package resolve

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"contract-chat-mapping/internal/core/domain"
)

// Searcher resolves a contract number to a contract id.
type Searcher interface {
	SearchContractID(ctx context.Context, contractNumber string) domain.StageResult
}

// CooperationLookup resolves a contract id to a cooperation id.
type CooperationLookup interface {
	CooperationID(ctx context.Context, contractID string) domain.StageResult
}

// ChatLookup resolves a cooperation id to a chat group id.
type ChatLookup interface {
	OpenChatID(ctx context.Context, cooperationID string) domain.StageResult
}

// Pipeline chains the three lookup stages for one contract number.
// The chain is strictly linear: a stage runs only if the previous one
// produced an identifier, and the first failure is terminal for that
// contract number within the current run.
type Pipeline struct {
	search Searcher
	coop   CooperationLookup
	chat   ChatLookup
	log    *slog.Logger
}

// NewPipeline wires the three stage clients together.
func NewPipeline(search Searcher, coop CooperationLookup, chat ChatLookup, log *slog.Logger) *Pipeline {
	return &Pipeline{search: search, coop: coop, chat: chat, log: log}
}

// Resolve runs the full chain for one contract number and returns its
// result row. Only full success yields SUCCESS; any other status
// leaves the later-stage fields empty.
func (p *Pipeline) Resolve(ctx context.Context, contractNumber string) domain.ResultRow {
	row := domain.ResultRow{ContractNumber: contractNumber}
	log := p.log.With("trace_id", uuid.NewString(), "contract_number", contractNumber)

	search := p.search.SearchContractID(ctx, contractNumber)
	if !search.OK() {
		return fail(log, row, "search", search)
	}
	row.ContractID = search.Value

	coop := p.coop.CooperationID(ctx, row.ContractID)
	if !coop.OK() {
		return fail(log, row, "cooperation", coop)
	}
	row.CooperationID = coop.Value

	chat := p.chat.OpenChatID(ctx, row.CooperationID)
	if !chat.OK() {
		return fail(log, row, "chat", chat)
	}
	row.OpenChatID = chat.Value

	row.Status = domain.StatusSuccess
	log.Debug("resolved",
		"contract_id", row.ContractID,
		"cooperation_id", row.CooperationID,
		"open_chat_id", row.OpenChatID,
		"retries", search.Retries+coop.Retries+chat.Retries)
	return row
}

func fail(log *slog.Logger, row domain.ResultRow, stage string, res domain.StageResult) domain.ResultRow {
	row.Status = res.Reason
	row.ErrorCode = res.Code
	row.ErrorMessage = res.Message
	log.Debug("resolution stopped",
		"stage", stage,
		"status", row.Status,
		"error_code", row.ErrorCode,
		"retries", res.Retries)
	return row
}
