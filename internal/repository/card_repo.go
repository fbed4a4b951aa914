// Package repository implements the persistence ports over SQLite.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/application/port"
	"github.com/albertobarcelos/nexflow/internal/models"
	"github.com/albertobarcelos/nexflow/pkg/database"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// CardRepository implements port.CardRepository.
type CardRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db *database.DB, logger *zap.Logger) port.CardRepository {
	return &CardRepository{db: db, logger: logger}
}

const cardColumns = `
	id, flow_id, step_id, title, field_values, checklist_state,
	parent_card_id, assignee_user_id, assignee_team_id, agent_ids,
	card_type, value, product_id, created_at, updated_at
`

// Create inserts a new card, assigning an id when none is set.
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}

	fieldValues, checklist, agents, err := marshalCardBlobs(card)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		card.ID, card.FlowID, card.StepID, card.Title,
		fieldValues, checklist,
		card.ParentCardID, card.AssigneeUserID, card.AssigneeTeamID, agents,
		card.CardType, card.Value, card.ProductID,
		card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create card", zap.Error(err))
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// GetByID retrieves a card by id.
func (r *CardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ?`
	row := r.db.Executor(ctx).QueryRowContext(ctx, query, id)

	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get card", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

// ListByFlow retrieves all cards of a flow, oldest first.
func (r *CardRepository) ListByFlow(ctx context.Context, flowID string) ([]*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE flow_id = ? ORDER BY created_at ASC`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, flowID)
	if err != nil {
		r.logger.Error("Failed to list cards", zap.String("flow_id", flowID), zap.Error(err))
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// Update rewrites every mutable column of the card.
func (r *CardRepository) Update(ctx context.Context, card *models.Card) error {
	fieldValues, checklist, agents, err := marshalCardBlobs(card)
	if err != nil {
		return err
	}

	query := `
		UPDATE cards SET
			step_id = ?, title = ?, field_values = ?, checklist_state = ?,
			assignee_user_id = ?, assignee_team_id = ?, agent_ids = ?,
			card_type = ?, value = ?, product_id = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		card.StepID, card.Title, fieldValues, checklist,
		card.AssigneeUserID, card.AssigneeTeamID, agents,
		card.CardType, card.Value, card.ProductID, card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update card", zap.String("id", card.ID), zap.Error(err))
		return fmt.Errorf("failed to update card: %w", err)
	}
	return requireRow(result, card.ID)
}

// UpdateStep changes only the card's current step.
func (r *CardRepository) UpdateStep(ctx context.Context, id, stepID string) error {
	query := `UPDATE cards SET step_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query, stepID, id)
	if err != nil {
		r.logger.Error("Failed to update card step", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update card step: %w", err)
	}
	return requireRow(result, id)
}

// Delete removes a card; its history rows cascade.
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete card", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return requireRow(result, id)
}

func requireRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	return nil
}

func marshalCardBlobs(card *models.Card) (fieldValues, checklist, agents []byte, err error) {
	if card.FieldValues == nil {
		card.FieldValues = map[string]models.FieldValue{}
	}
	fieldValues, err = json.Marshal(card.FieldValues)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal field values: %w", err)
	}

	state := card.ChecklistState
	if state == nil {
		state = map[string]map[string]bool{}
	}
	checklist, err = json.Marshal(state)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal checklist state: %w", err)
	}

	ids := card.AgentIDs
	if ids == nil {
		ids = []string{}
	}
	agents, err = json.Marshal(ids)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal agents: %w", err)
	}
	return fieldValues, checklist, agents, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row rowScanner) (*models.Card, error) {
	var card models.Card
	var fieldValues, checklist, agents []byte

	err := row.Scan(
		&card.ID, &card.FlowID, &card.StepID, &card.Title,
		&fieldValues, &checklist,
		&card.ParentCardID, &card.AssigneeUserID, &card.AssigneeTeamID, &agents,
		&card.CardType, &card.Value, &card.ProductID,
		&card.CreatedAt, &card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(fieldValues, &card.FieldValues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal field values: %w", err)
	}
	if err := json.Unmarshal(checklist, &card.ChecklistState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checklist state: %w", err)
	}
	if err := json.Unmarshal(agents, &card.AgentIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agents: %w", err)
	}
	return &card, nil
}
