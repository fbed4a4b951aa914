package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/application/port"
	"github.com/albertobarcelos/nexflow/internal/models"
	"github.com/albertobarcelos/nexflow/pkg/database"
)

// FlowRepository implements port.FlowRepository.
type FlowRepository struct {
	db     *database.DB
	steps  port.StepRepository
	logger *zap.Logger
}

// NewFlowRepository creates a new flow repository.
func NewFlowRepository(db *database.DB, steps port.StepRepository, logger *zap.Logger) port.FlowRepository {
	return &FlowRepository{db: db, steps: steps, logger: logger}
}

// GetByID retrieves a flow with its ordered steps.
func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	var flow models.Flow
	row := r.db.Executor(ctx).QueryRowContext(ctx, `SELECT id, name FROM flows WHERE id = ?`, id)
	if err := row.Scan(&flow.ID, &flow.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("flow %s: %w", id, ErrNotFound)
		}
		r.logger.Error("Failed to get flow", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get flow: %w", err)
	}

	steps, err := r.steps.StepsForFlow(ctx, id)
	if err != nil {
		return nil, err
	}
	flow.Steps = steps
	return &flow, nil
}
