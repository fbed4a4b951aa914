package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/models"
)

type fakeHistorySource struct {
	cardHistoryFunc func(ctx context.Context, cardID string, parentCardID *string) ([]models.MovementHistoryEntry, error)
}

func (f *fakeHistorySource) CardHistory(ctx context.Context, cardID string, parentCardID *string) ([]models.MovementHistoryEntry, error) {
	if f.cardHistoryFunc != nil {
		return f.cardHistoryFunc(ctx, cardID, parentCardID)
	}
	return nil, nil
}

func newTestEngine(steps *fakeStepSource, history *fakeHistorySource) *Engine {
	if steps == nil {
		steps = &fakeStepSource{}
	}
	if history == nil {
		history = &fakeHistorySource{}
	}
	return New(steps, history, zap.NewNop())
}

func TestBuildReadModel_ChecklistGateReactsToEdits(t *testing.T) {
	// three steps, card on the middle one with a required two-item
	// checklist, one item checked
	steps := pipelineSteps(1, 2, 3)
	steps[1].Fields = []models.Field{{
		ID:       "check",
		Label:    "Checklist",
		Type:     models.FieldTypeChecklist,
		Required: true,
		Config:   models.FieldConfig{ChecklistItems: []string{"a", "b"}},
	}}

	card := &models.Card{
		ID:     "card-1",
		FlowID: "flow-1",
		StepID: stepID(2),
		ChecklistState: map[string]map[string]bool{
			"check": {"a": true},
		},
		CreatedAt: time.Now(),
	}

	e := newTestEngine(nil, nil)
	rm := e.BuildReadModel(context.Background(), card, steps, "flow-1")

	require.NotNil(t, rm.CurrentStep)
	assert.True(t, rm.IsMoveDisabled)
	assert.NotEmpty(t, rm.UnmetRequirements)

	// the user checks the second item and the gate re-evaluates
	card.ChecklistState["check"]["b"] = true
	rm = e.BuildReadModel(context.Background(), card, steps, "flow-1")
	assert.False(t, rm.IsMoveDisabled)
	assert.Empty(t, rm.UnmetRequirements)
}

func TestBuildReadModel_UnresolvedStepDisablesEverything(t *testing.T) {
	// step id absent from the supplied list and the cross-flow fetch
	// fails too
	steps := &fakeStepSource{
		stepsForFlowFunc: func(ctx context.Context, flowID string) ([]models.Step, error) {
			return nil, errors.New("unavailable")
		},
	}
	card := &models.Card{ID: "card-1", FlowID: "flow-2", StepID: "nowhere", CreatedAt: time.Now()}

	rm := newTestEngine(steps, nil).BuildReadModel(context.Background(), card, pipelineSteps(1, 2, 3), "flow-1")

	assert.Nil(t, rm.CurrentStep)
	assert.Nil(t, rm.NextStep)
	assert.Nil(t, rm.PreviousStep)
	assert.Zero(t, rm.ProgressPercentage)
	assert.True(t, rm.IsMoveDisabled)
	assert.True(t, rm.IsReadOnly)
	assert.Empty(t, rm.TimelineEntries)
}

func TestBuildReadModel_FrozenCard(t *testing.T) {
	steps := pipelineSteps(1, 2)
	steps[1].StepType = models.StepTypeFreezing
	card := &models.Card{ID: "card-1", FlowID: "flow-1", StepID: stepID(2), CreatedAt: time.Now()}

	rm := newTestEngine(nil, nil).BuildReadModel(context.Background(), card, steps, "flow-1")

	assert.True(t, rm.IsFrozenCard)
	assert.False(t, rm.IsReadOnly)
	assert.True(t, rm.IsDisabled)
	assert.True(t, rm.IsMoveDisabled)
}

func TestBuildReadModel_LastStepDisablesForwardMove(t *testing.T) {
	steps := pipelineSteps(1, 2)
	card := &models.Card{ID: "card-1", FlowID: "flow-1", StepID: stepID(2), CreatedAt: time.Now()}

	rm := newTestEngine(nil, nil).BuildReadModel(context.Background(), card, steps, "flow-1")

	assert.Nil(t, rm.NextStep)
	assert.True(t, rm.IsMoveDisabled, "no next step means nothing to advance to")
	assert.False(t, rm.IsDisabled)
}

func TestBuildReadModel_ProgressUsesSuppliedList(t *testing.T) {
	// cross-flow card: position comes from its own flow, progress from the
	// list on screen, which does not contain the step at all
	other := []models.Step{
		{ID: "x-1", FlowID: "flow-2", Position: 1},
		{ID: "x-2", FlowID: "flow-2", Position: 2},
	}
	steps := &fakeStepSource{
		stepsForFlowFunc: func(ctx context.Context, flowID string) ([]models.Step, error) {
			return other, nil
		},
	}
	card := &models.Card{ID: "card-1", FlowID: "flow-2", StepID: "x-1", CreatedAt: time.Now()}

	rm := newTestEngine(steps, nil).BuildReadModel(context.Background(), card, pipelineSteps(1, 2, 3), "flow-1")

	require.NotNil(t, rm.CurrentStep)
	assert.Equal(t, "x-1", rm.CurrentStep.ID)
	assert.Zero(t, rm.ProgressPercentage)
	assert.True(t, rm.IsReadOnly)
}

func TestBuildReadModel_HistoryUsesParentCard(t *testing.T) {
	parent := "parent-1"
	var askedCard string
	var askedParent *string
	history := &fakeHistorySource{
		cardHistoryFunc: func(ctx context.Context, cardID string, parentCardID *string) ([]models.MovementHistoryEntry, error) {
			askedCard = cardID
			askedParent = parentCardID
			return nil, nil
		},
	}
	card := &models.Card{ID: "card-1", FlowID: "flow-1", StepID: stepID(1), ParentCardID: &parent, CreatedAt: time.Now()}

	newTestEngine(nil, history).BuildReadModel(context.Background(), card, pipelineSteps(1, 2), "flow-1")

	assert.Equal(t, "card-1", askedCard)
	require.NotNil(t, askedParent)
	assert.Equal(t, parent, *askedParent)
}

func TestBuildReadModel_HistoryErrorDegradesToSynthesis(t *testing.T) {
	history := &fakeHistorySource{
		cardHistoryFunc: func(ctx context.Context, cardID string, parentCardID *string) ([]models.MovementHistoryEntry, error) {
			return nil, errors.New("boom")
		},
	}
	card := &models.Card{ID: "card-1", FlowID: "flow-1", StepID: stepID(2), CreatedAt: time.Now()}

	rm := newTestEngine(nil, history).BuildReadModel(context.Background(), card, pipelineSteps(1, 2), "flow-1")

	require.Len(t, rm.TimelineEntries, 1)
	assert.True(t, rm.TimelineEntries[0].Synthesized)
}
