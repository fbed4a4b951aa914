package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/models"
)

// HistorySource fetches the recorded movement history of a card. The parent
// card id is passed when the open card is a synchronized child or frozen
// snapshot, whose moves were recorded on the original record.
type HistorySource interface {
	CardHistory(ctx context.Context, cardID string, parentCardID *string) ([]models.MovementHistoryEntry, error)
}

// ReadModel is everything the presentation layer needs to render an open
// card without re-deriving any pipeline state.
type ReadModel struct {
	CurrentStep        *models.Step          `json:"current_step,omitempty"`
	NextStep           *models.Step          `json:"next_step,omitempty"`
	PreviousStep       *models.Step          `json:"previous_step,omitempty"`
	ProgressPercentage float64               `json:"progress_percentage"`
	IsFrozenCard       bool                  `json:"is_frozen_card"`
	IsReadOnly         bool                  `json:"is_read_only"`
	IsDisabled         bool                  `json:"is_disabled"`
	FormValues         models.CardFormValues `json:"form_values"`
	IsMoveDisabled     bool                  `json:"is_move_disabled"`
	UnmetRequirements  []string              `json:"unmet_requirements,omitempty"`
	TimelineEntries    []TimelineEntry       `json:"timeline_entries"`
	LastHistoryUpdate  *time.Time            `json:"last_history_update,omitempty"`
}

// Engine derives the card read-model from committed state.
type Engine struct {
	resolver *Resolver
	history  HistorySource
	logger   *zap.Logger
}

// New creates the pipeline engine.
func New(steps StepSource, history HistorySource, logger *zap.Logger) *Engine {
	return &Engine{
		resolver: NewResolver(steps, logger),
		history:  history,
		logger:   logger,
	}
}

// Resolver exposes the engine's step resolver for callers that only need
// the effective step list.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// BuildReadModel computes the full read-model for a card opened against the
// supplied step list (the flow currently on screen) and open flow id.
// Position and validation run over the effective step list; the progress
// percentage runs over the supplied list, matching what the UI displays. A
// card whose step cannot be located resolves to a nil current step with
// every transition affordance disabled; that is a degraded view, not an
// error. A history fetch failure likewise degrades to the synthesized
// timeline.
func (e *Engine) BuildReadModel(ctx context.Context, card *models.Card, supplied []models.Step, openFlowID string) *ReadModel {
	effective := e.resolver.EffectiveSteps(ctx, card, supplied)
	pos := Locate(effective, card.StepID)
	access := DeriveAccess(card, pos.Current, openFlowID)

	form := Hydrate(card, declaredFields(effective))
	check := CheckTransition(pos.Current, &form)

	raw, err := e.history.CardHistory(ctx, card.ID, card.ParentCardID)
	if err != nil {
		e.logger.Warn("history fetch failed, synthesizing timeline",
			zap.String("card_id", card.ID), zap.Error(err))
		raw = nil
	}
	timeline := Reconstruct(card, effective, raw)

	return &ReadModel{
		CurrentStep:        pos.Current,
		NextStep:           pos.Next,
		PreviousStep:       pos.Previous,
		ProgressPercentage: Progress(supplied, card.StepID),
		IsFrozenCard:       access.Frozen,
		IsReadOnly:         access.ReadOnly,
		IsDisabled:         access.Disabled,
		FormValues:         form,
		IsMoveDisabled:     access.Disabled || pos.Current == nil || pos.Next == nil || !check.Allowed,
		UnmetRequirements:  check.Unmet,
		TimelineEntries:    timeline.Entries,
		LastHistoryUpdate:  timeline.LastUpdate,
	}
}

// declaredFields flattens the field declarations of every step in the list.
func declaredFields(steps []models.Step) []models.Field {
	var fields []models.Field
	for _, s := range steps {
		fields = append(fields, s.Fields...)
	}
	return fields
}
