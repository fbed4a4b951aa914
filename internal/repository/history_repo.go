package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/application/port"
	"github.com/albertobarcelos/nexflow/internal/models"
	"github.com/albertobarcelos/nexflow/pkg/database"
)

// HistoryRepository implements port.HistoryRepository. Movement history is
// append-only: there are no update or delete operations here on purpose.
type HistoryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *database.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

// Append records one movement history entry.
func (r *HistoryRepository) Append(ctx context.Context, entry *models.MovementHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO card_history (
			id, card_id, from_step_id, to_step_id, timestamp, actor_name,
			action_type, from_step_name, to_step_name, from_position,
			to_position, backward
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entry.ID, entry.CardID, entry.FromStepID, entry.ToStepID,
		entry.Timestamp, entry.ActorName, entry.ActionType,
		entry.FromStepName, entry.ToStepName,
		entry.FromPosition, entry.ToPosition, entry.Backward,
	)
	if err != nil {
		r.logger.Error("Failed to append history entry",
			zap.String("card_id", entry.CardID), zap.Error(err))
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// CardHistory retrieves the movement history of a card, chronological
// ascending. When a parent card id is given (the open card is a child or
// frozen snapshot) the parent's history is returned instead.
func (r *HistoryRepository) CardHistory(ctx context.Context, cardID string, parentCardID *string) ([]models.MovementHistoryEntry, error) {
	target := cardID
	if parentCardID != nil && *parentCardID != "" {
		target = *parentCardID
	}

	query := `
		SELECT id, card_id, from_step_id, to_step_id, timestamp, actor_name,
			action_type, from_step_name, to_step_name, from_position,
			to_position, backward
		FROM card_history
		WHERE card_id = ?
		ORDER BY timestamp ASC
	`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, target)
	if err != nil {
		r.logger.Error("Failed to get card history", zap.String("card_id", target), zap.Error(err))
		return nil, fmt.Errorf("failed to get card history: %w", err)
	}
	defer rows.Close()

	var entries []models.MovementHistoryEntry
	for rows.Next() {
		var e models.MovementHistoryEntry
		var actor, action, fromName, toName sql.NullString
		err := rows.Scan(
			&e.ID, &e.CardID, &e.FromStepID, &e.ToStepID, &e.Timestamp,
			&actor, &action, &fromName, &toName,
			&e.FromPosition, &e.ToPosition, &e.Backward,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.ActorName = actor.String
		e.ActionType = action.String
		e.FromStepName = fromName.String
		e.ToStepName = toName.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
