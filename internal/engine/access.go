package engine

import "github.com/albertobarcelos/nexflow/internal/models"

// AccessState gates mutation affordances on an open card. Disabled blocks
// field editing, assignment changes, save, transitions and delete; read-only
// views (overview, history, attachments, comments) stay visible.
type AccessState struct {
	Frozen   bool `json:"frozen"`
	ReadOnly bool `json:"read_only"`
	Disabled bool `json:"disabled"`
}

// DeriveAccess computes the access state of a card. Frozen means the current
// step is of the freezing type; read-only means the card belongs to a flow
// other than the one currently open (openFlowID empty = no open flow
// supplied, never read-only).
func DeriveAccess(card *models.Card, current *models.Step, openFlowID string) AccessState {
	frozen := current != nil && current.StepType.IsFreezing()
	readOnly := openFlowID != "" && card.FlowID != openFlowID
	return AccessState{
		Frozen:   frozen,
		ReadOnly: readOnly,
		Disabled: frozen || readOnly,
	}
}
