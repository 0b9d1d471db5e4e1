package domain

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/structs"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/settlement/internal/entity"
	"github.com/questx-lab/settlement/internal/model"
	"github.com/questx-lab/settlement/internal/repository"
	"github.com/questx-lab/settlement/pkg/enum"
	"github.com/questx-lab/settlement/pkg/errorx"
	"github.com/questx-lab/settlement/pkg/idutil"
	"github.com/questx-lab/settlement/pkg/pubsub"
	"github.com/questx-lab/settlement/pkg/xcontext"
)

// Executor runs signed instructions. Every instruction runs alone on the
// accounts it declares: an instruction whose accounts are held by another one
// fails immediately with AccountInUse.
type Executor interface {
	Submit(context.Context, *model.SubmitInstructionRequest) (*model.SubmitInstructionResponse, error)
}

type emitter interface {
	Emitted() []model.Event
}

type handlerFunc func(context.Context) (emitter, error)

type executor struct {
	lotteryDomain   LotteryDomain
	instructionRepo repository.InstructionRepository
	publisher       pubsub.Publisher
	idGenerator     *idutil.Generator
	locks           *xsync.MapOf[string, string]
}

func NewExecutor(
	lotteryDomain LotteryDomain,
	instructionRepo repository.InstructionRepository,
	publisher pubsub.Publisher,
	idGenerator *idutil.Generator,
) *executor {
	return &executor{
		lotteryDomain:   lotteryDomain,
		instructionRepo: instructionRepo,
		publisher:       publisher,
		idGenerator:     idGenerator,
		locks:           xsync.NewMapOf[string](),
	}
}

func (e *executor) Submit(
	ctx context.Context, ins *model.SubmitInstructionRequest,
) (*model.SubmitInstructionResponse, error) {
	hash, result, err := e.execute(ctx, ins)
	if err != nil {
		return nil, err
	}

	events := result.Emitted()
	if events == nil {
		events = []model.Event{}
	}

	topic := xcontext.Configs(ctx).Kafka.Topic
	for i := range events {
		events[i].ID = e.idGenerator.Next()
		events[i].Instruction = hash.Hex()

		b, err := json.Marshal(events[i])
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal event: %v", err)
			continue
		}

		// The instruction is committed, a lost event is only logged.
		err = e.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(events[i].Type), Msg: b})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot publish event %s of %s: %v",
				events[i].Type, hash.Hex(), err)
		}
	}

	return &model.SubmitInstructionResponse{
		Hash:   hash.Hex(),
		Result: result,
		Events: events,
	}, nil
}

func (e *executor) execute(ctx context.Context, ins *model.Instruction) (common.Hash, emitter, error) {
	kind, err := enum.ToEnum[model.InstructionKind](ins.Kind)
	if err != nil {
		return common.Hash{}, nil, errorx.New(errorx.InvalidInstruction, "Unknown instruction %q", ins.Kind)
	}

	if len(ins.Accounts) == 0 {
		return common.Hash{}, nil, errorx.New(errorx.InvalidInstruction, "Instruction declares no account")
	}

	hash, err := ins.Hash()
	if err != nil {
		return common.Hash{}, nil, errorx.New(errorx.InvalidInstruction, "Cannot hash instruction")
	}

	signers, err := ins.RecoverSigners()
	if err != nil {
		return common.Hash{}, nil, errorx.New(errorx.MissingSignature, "Invalid signature: %v", err)
	}

	if len(signers) == 0 {
		return common.Hash{}, nil, errorx.New(errorx.MissingSignature, "Instruction is not signed")
	}

	handler, err := e.prepare(kind, ins, signers)
	if err != nil {
		return common.Hash{}, nil, errorx.New(errorx.InvalidInstruction, "Invalid %s instruction: %v", kind, err)
	}

	declared := ins.DeclaredAccounts()
	release, err := e.lock(declared, hash.Hex())
	if err != nil {
		return common.Hash{}, nil, err
	}
	defer release()

	ctx = xcontext.WithDeclaredAccounts(ctx, declared)
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = e.instructionRepo.Create(ctx, &entity.ProcessedInstruction{
		Base:  entity.Base{Address: hash.Hex()},
		Kind:  string(kind),
		Nonce: ins.Nonce,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return common.Hash{}, nil, errorx.New(errorx.InstructionProcessed, "Instruction %s is already processed", hash.Hex())
		}

		xcontext.Logger(ctx).Errorf("Cannot record instruction: %v", err)
		return common.Hash{}, nil, errorx.Unknown
	}

	result, err := handler(ctx)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Instruction %s %s failed: %v", kind, hash.Hex(), err)
		return common.Hash{}, nil, err
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit instruction %s: %v", hash.Hex(), err)
		return common.Hash{}, nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Executed %s %s", kind, hash.Hex())
	return hash, result, nil
}

// lock takes every address or none of them.
func (e *executor) lock(addrs []string, owner string) (func(), error) {
	acquired := []string{}
	release := func() {
		for _, addr := range acquired {
			e.locks.Delete(addr)
		}
	}

	for _, addr := range addrs {
		if _, loaded := e.locks.LoadOrStore(addr, owner); loaded {
			release()
			return nil, errorx.New(errorx.AccountInUse, "Account %s is in use", addr)
		}

		acquired = append(acquired, addr)
	}

	return release, nil
}

func (e *executor) prepare(
	kind model.InstructionKind, ins *model.Instruction, signers []common.Address,
) (handlerFunc, error) {
	switch kind {
	case model.InitializeInstruction:
		req := &model.InitializeRequest{Signers: signers}
		if err := decodeInstruction(ins, &req.Accounts, &req.Args); err != nil {
			return nil, err
		}
		return handle(e.lotteryDomain.Initialize, req), nil

	case model.EnterLotteryInstruction:
		req := &model.EnterLotteryRequest{Signers: signers}
		if err := decodeInstruction(ins, &req.Accounts, nil); err != nil {
			return nil, err
		}
		return handle(e.lotteryDomain.EnterLottery, req), nil

	case model.RequestDrawInstruction:
		req := &model.RequestDrawRequest{Signers: signers}
		if err := decodeInstruction(ins, &req.Accounts, nil); err != nil {
			return nil, err
		}
		return handle(e.lotteryDomain.RequestDraw, req), nil

	case model.ResolveDrawInstruction:
		req := &model.ResolveDrawRequest{Signers: signers}
		if err := decodeInstruction(ins, &req.Accounts, &req.Args); err != nil {
			return nil, err
		}
		return handle(e.lotteryDomain.ResolveDraw, req), nil

	case model.PayoutInstruction:
		req := &model.PayoutRequest{Signers: signers}
		if err := decodeInstruction(ins, &req.Accounts, nil); err != nil {
			return nil, err
		}
		return handle(e.lotteryDomain.Payout, req), nil

	case model.ResetInstruction:
		req := &model.ResetRequest{Signers: signers}
		if err := decodeInstruction(ins, &req.Accounts, &req.Args); err != nil {
			return nil, err
		}
		return handle(e.lotteryDomain.Reset, req), nil
	}

	return nil, errors.New("unsupported instruction")
}

func decodeInstruction(ins *model.Instruction, accounts, args any) error {
	if err := ins.DecodeAccounts(accounts); err != nil {
		return err
	}

	if structs.HasZero(accounts) {
		return errors.New("every account role is required")
	}

	if args == nil {
		if len(ins.Args) != 0 && string(ins.Args) != "{}" && string(ins.Args) != "null" {
			return errors.New("instruction takes no args")
		}

		return nil
	}

	return ins.DecodeArgs(args)
}

func handle[Req any, Resp emitter](
	fn func(context.Context, *Req) (Resp, error), req *Req,
) handlerFunc {
	return func(ctx context.Context) (emitter, error) {
		resp, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}

		return resp, nil
	}
}
