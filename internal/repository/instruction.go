package repository

import (
	"context"

	"github.com/questx-lab/settlement/internal/entity"
	"github.com/questx-lab/settlement/pkg/xcontext"
)

type InstructionRepository interface {
	Create(ctx context.Context, ins *entity.ProcessedInstruction) error
	Get(ctx context.Context, hash string) (*entity.ProcessedInstruction, error)
}

type instructionRepository struct{}

func NewInstructionRepository() *instructionRepository {
	return &instructionRepository{}
}

// Create returns ErrAlreadyExists if the instruction was processed before.
func (r *instructionRepository) Create(ctx context.Context, ins *entity.ProcessedInstruction) error {
	return createOnce(ctx, ins)
}

func (r *instructionRepository) Get(ctx context.Context, hash string) (*entity.ProcessedInstruction, error) {
	var result entity.ProcessedInstruction
	if err := xcontext.DB(ctx).Take(&result, "address=?", hash).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
