package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/models"
)

type fakeStepSource struct {
	stepsForFlowFunc func(ctx context.Context, flowID string) ([]models.Step, error)
	calls            int
}

func (f *fakeStepSource) StepsForFlow(ctx context.Context, flowID string) ([]models.Step, error) {
	f.calls++
	if f.stepsForFlowFunc != nil {
		return f.stepsForFlowFunc(ctx, flowID)
	}
	return nil, errors.New("not configured")
}

func TestEffectiveSteps_SuppliedListWhenStepPresent(t *testing.T) {
	source := &fakeStepSource{}
	r := NewResolver(source, zap.NewNop())

	supplied := pipelineSteps(1, 2, 3)
	card := &models.Card{ID: "card-1", FlowID: "flow-1", StepID: stepID(2)}

	got := r.EffectiveSteps(context.Background(), card, supplied)

	require.Len(t, got, 3)
	assert.Zero(t, source.calls, "no fetch when the card's step is in the supplied list")
}

func TestEffectiveSteps_CrossFlowFetch(t *testing.T) {
	other := []models.Step{
		{ID: "x-2", FlowID: "flow-2", Position: 2},
		{ID: "x-1", FlowID: "flow-2", Position: 1},
	}
	source := &fakeStepSource{
		stepsForFlowFunc: func(ctx context.Context, flowID string) ([]models.Step, error) {
			assert.Equal(t, "flow-2", flowID)
			return other, nil
		},
	}
	r := NewResolver(source, zap.NewNop())

	card := &models.Card{ID: "card-1", FlowID: "flow-2", StepID: "x-1"}
	got := r.EffectiveSteps(context.Background(), card, pipelineSteps(1, 2, 3))

	require.Len(t, got, 2)
	assert.Equal(t, "x-1", got[0].ID, "fetched list comes back sorted by position")
	assert.Equal(t, "x-2", got[1].ID)
}

func TestEffectiveSteps_FallsBackOnFetchError(t *testing.T) {
	source := &fakeStepSource{
		stepsForFlowFunc: func(ctx context.Context, flowID string) ([]models.Step, error) {
			return nil, errors.New("data service down")
		},
	}
	r := NewResolver(source, zap.NewNop())

	supplied := pipelineSteps(1, 2, 3)
	card := &models.Card{ID: "card-1", FlowID: "flow-2", StepID: "elsewhere"}

	got := r.EffectiveSteps(context.Background(), card, supplied)
	assert.Len(t, got, len(supplied), "supplied list is kept while the cross-flow list is unavailable")
}

func TestEffectiveSteps_FallsBackOnEmptyFetch(t *testing.T) {
	source := &fakeStepSource{
		stepsForFlowFunc: func(ctx context.Context, flowID string) ([]models.Step, error) {
			return nil, nil
		},
	}
	r := NewResolver(source, zap.NewNop())

	supplied := pipelineSteps(1, 2)
	card := &models.Card{ID: "card-1", FlowID: "flow-2", StepID: "elsewhere"}

	got := r.EffectiveSteps(context.Background(), card, supplied)
	assert.Len(t, got, 2)
}
