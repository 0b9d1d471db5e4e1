package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/pkg/api"
	"github.com/questx-lab/settlement/pkg/errorx"
)

type Submitter interface {
	Submit(context.Context, *model.SubmitInstructionRequest) (*model.SubmitInstructionResponse, error)
}

type StatusReader interface {
	GetSettlementStatus(context.Context, *model.GetSettlementStatusRequest) (*model.GetSettlementStatusResponse, error)
}

// SettlementCaller talks to the api server.
type SettlementCaller interface {
	Submitter
	StatusReader
}

type settlementCaller struct {
	generator api.Generator
}

func NewSettlementCaller(endpoints ...string) *settlementCaller {
	return &settlementCaller{generator: api.NewGenerator(endpoints...)}
}

func (c *settlementCaller) Submit(
	ctx context.Context, ins *model.SubmitInstructionRequest,
) (*model.SubmitInstructionResponse, error) {
	resp, err := c.generator.New("/submitInstruction").Body(api.JSONBody{Value: ins}).POST(ctx)
	if err != nil {
		return nil, err
	}

	result := &model.SubmitInstructionResponse{}
	if err := decodeEnvelope(resp, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *settlementCaller) GetSettlementStatus(
	ctx context.Context, req *model.GetSettlementStatusRequest,
) (*model.GetSettlementStatusResponse, error) {
	query := api.Parameter{}
	if req.User != "" {
		query["user"] = req.User
	}

	resp, err := c.generator.New("/getSettlementStatus").Query(query).GET(ctx)
	if err != nil {
		return nil, err
	}

	result := &model.GetSettlementStatusResponse{}
	if err := decodeEnvelope(resp, result); err != nil {
		return nil, err
	}

	return result, nil
}

type envelope struct {
	Code  errorx.Code     `json:"code"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// decodeEnvelope turns a failed response back into the errorx.Error the
// server returned.
func decodeEnvelope(resp *api.Response, v any) error {
	var env envelope
	if err := resp.Decode(&env); err != nil {
		return fmt.Errorf("invalid response (status %d): %w", resp.Code, err)
	}

	if env.Code != 0 {
		return errorx.Error{Code: env.Code, Message: env.Error}
	}

	if len(env.Data) == 0 {
		return nil
	}

	return json.Unmarshal(env.Data, v)
}
