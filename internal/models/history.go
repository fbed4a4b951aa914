package models

import "time"

// Action type tags recorded on movement history entries.
const (
	ActionMove     = "move"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
)

// MovementHistoryEntry is one recorded step transition of a card.
// Entries are append-only: written when a card changes step or a terminal
// action occurs, never mutated afterwards. Step titles and positions are
// recorded at move time so backward detection survives later renames and
// reorders of the flow.
type MovementHistoryEntry struct {
	ID           string    `json:"id"`
	CardID       string    `json:"card_id"`
	FromStepID   *string   `json:"from_step_id,omitempty"` // nil = card creation
	ToStepID     string    `json:"to_step_id"`
	Timestamp    time.Time `json:"timestamp"`
	ActorName    string    `json:"actor_name,omitempty"`
	ActionType   string    `json:"action_type,omitempty"`
	FromStepName string    `json:"from_step_name,omitempty"`
	ToStepName   string    `json:"to_step_name,omitempty"`
	FromPosition *int      `json:"from_position,omitempty"`
	ToPosition   *int      `json:"to_position,omitempty"`
	Backward     *bool     `json:"backward,omitempty"` // explicit direction tag, wins over positions
}

// IsBackward reports whether the entry records a move against flow order,
// preferring the explicit tag over the recorded positions.
func (e *MovementHistoryEntry) IsBackward() bool {
	if e.Backward != nil {
		return *e.Backward
	}
	if e.FromPosition != nil && e.ToPosition != nil {
		return *e.ToPosition < *e.FromPosition
	}
	return false
}
