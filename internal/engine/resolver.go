package engine

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/models"
)

// StepSource fetches the step list of a flow. Implemented by the step
// repository; tests supply fakes.
type StepSource interface {
	StepsForFlow(ctx context.Context, flowID string) ([]models.Step, error)
}

// Resolver determines which step list applies to a card.
type Resolver struct {
	source StepSource
	logger *zap.Logger
}

// NewResolver creates a step resolver backed by the given source.
func NewResolver(source StepSource, logger *zap.Logger) *Resolver {
	return &Resolver{source: source, logger: logger}
}

// EffectiveSteps returns the ordered step list to use for all position and
// validation logic on the card. If the card's current step belongs to the
// supplied list the supplied list is used verbatim; otherwise the card was
// opened from a different flow (a cross-flow reference) and its own flow's
// steps are fetched. If the fetch fails or yields nothing the supplied list
// is kept so the caller degrades instead of blocking.
func (r *Resolver) EffectiveSteps(ctx context.Context, card *models.Card, supplied []models.Step) []models.Step {
	if containsStep(supplied, card.StepID) {
		return SortSteps(supplied)
	}

	steps, err := r.source.StepsForFlow(ctx, card.FlowID)
	if err != nil {
		r.logger.Warn("cross-flow step fetch failed, using supplied steps",
			zap.String("card_id", card.ID),
			zap.String("flow_id", card.FlowID),
			zap.Error(err))
		return SortSteps(supplied)
	}
	if len(steps) == 0 {
		return SortSteps(supplied)
	}
	return SortSteps(steps)
}

// SortSteps returns a copy of steps sorted ascending by position.
func SortSteps(steps []models.Step) []models.Step {
	out := make([]models.Step, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}

func containsStep(steps []models.Step, stepID string) bool {
	for i := range steps {
		if steps[i].ID == stepID {
			return true
		}
	}
	return false
}
