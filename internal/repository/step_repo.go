package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/application/port"
	"github.com/albertobarcelos/nexflow/internal/models"
	"github.com/albertobarcelos/nexflow/pkg/database"
)

// StepRepository implements port.StepRepository.
type StepRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewStepRepository creates a new step repository.
func NewStepRepository(db *database.DB, logger *zap.Logger) port.StepRepository {
	return &StepRepository{db: db, logger: logger}
}

// StepsForFlow retrieves the ordered step list of a flow, field declarations
// included.
func (r *StepRepository) StepsForFlow(ctx context.Context, flowID string) ([]models.Step, error) {
	query := `
		SELECT id, flow_id, position, title, color, step_type,
			default_assignee_id, default_team_id
		FROM steps
		WHERE flow_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, flowID)
	if err != nil {
		r.logger.Error("Failed to list steps", zap.String("flow_id", flowID), zap.Error(err))
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []models.Step
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, *step)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range steps {
		fields, err := r.fieldsForStep(ctx, steps[i].ID)
		if err != nil {
			return nil, err
		}
		steps[i].Fields = fields
	}
	return steps, nil
}

// GetByID retrieves one step with its fields.
func (r *StepRepository) GetByID(ctx context.Context, id string) (*models.Step, error) {
	query := `
		SELECT id, flow_id, position, title, color, step_type,
			default_assignee_id, default_team_id
		FROM steps WHERE id = ?
	`
	step, err := scanStep(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("step %s: %w", id, ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get step", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get step: %w", err)
	}

	fields, err := r.fieldsForStep(ctx, id)
	if err != nil {
		return nil, err
	}
	step.Fields = fields
	return step, nil
}

func (r *StepRepository) fieldsForStep(ctx context.Context, stepID string) ([]models.Field, error) {
	query := `
		SELECT id, step_id, label, slug, field_type, is_required, config
		FROM fields
		WHERE step_id = ?
		ORDER BY ordinal ASC
	`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, stepID)
	if err != nil {
		r.logger.Error("Failed to list fields", zap.String("step_id", stepID), zap.Error(err))
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	var fields []models.Field
	for rows.Next() {
		var f models.Field
		var slug sql.NullString
		var config []byte
		if err := rows.Scan(&f.ID, &f.StepID, &f.Label, &slug, &f.Type, &f.Required, &config); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		f.Slug = slug.String
		if len(config) > 0 {
			if err := json.Unmarshal(config, &f.Config); err != nil {
				return nil, fmt.Errorf("failed to unmarshal field config: %w", err)
			}
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func scanStep(row rowScanner) (*models.Step, error) {
	var step models.Step
	var color sql.NullString
	err := row.Scan(
		&step.ID, &step.FlowID, &step.Position, &step.Title, &color, &step.StepType,
		&step.DefaultAssigneeID, &step.DefaultTeamID,
	)
	if err != nil {
		return nil, err
	}
	step.Color = color.String
	return &step, nil
}
