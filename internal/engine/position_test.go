package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertobarcelos/nexflow/internal/models"
)

func pipelineSteps(positions ...int) []models.Step {
	steps := make([]models.Step, 0, len(positions))
	for _, p := range positions {
		steps = append(steps, models.Step{
			ID:       stepID(p),
			FlowID:   "flow-1",
			Position: p,
			Title:    "Step",
			StepType: models.StepTypeNormal,
		})
	}
	return steps
}

func stepID(position int) string {
	return "step-" + string(rune('0'+position))
}

func TestLocate_AdjacencyAcrossWholeList(t *testing.T) {
	steps := pipelineSteps(1, 2, 3, 5, 8) // positions need not be contiguous
	sorted := SortSteps(steps)

	for i := range sorted {
		pos := Locate(steps, sorted[i].ID)
		require.NotNil(t, pos.Current, "step %s should resolve", sorted[i].ID)
		assert.Equal(t, sorted[i].ID, pos.Current.ID)

		if i == 0 {
			assert.Nil(t, pos.Previous)
		} else {
			require.NotNil(t, pos.Previous)
			assert.Equal(t, sorted[i-1].ID, pos.Previous.ID)
		}

		if i == len(sorted)-1 {
			assert.Nil(t, pos.Next)
		} else {
			require.NotNil(t, pos.Next)
			assert.Equal(t, sorted[i+1].ID, pos.Next.ID)
		}
	}
}

func TestLocate_UnsortedInput(t *testing.T) {
	steps := []models.Step{
		{ID: "c", Position: 30},
		{ID: "a", Position: 10},
		{ID: "b", Position: 20},
	}

	pos := Locate(steps, "b")
	require.NotNil(t, pos.Current)
	assert.Equal(t, "a", pos.Previous.ID)
	assert.Equal(t, "c", pos.Next.ID)
}

func TestLocate_StepAbsent(t *testing.T) {
	pos := Locate(pipelineSteps(1, 2, 3), "step-9")
	assert.Nil(t, pos.Current)
	assert.Nil(t, pos.Previous)
	assert.Nil(t, pos.Next)
	assert.Equal(t, -1, pos.Index)
}

func TestLocate_EmptyList(t *testing.T) {
	pos := Locate(nil, "step-1")
	assert.Nil(t, pos.Current)
	assert.Equal(t, -1, pos.Index)
}

func TestProgress_ExactFraction(t *testing.T) {
	steps := pipelineSteps(1, 2, 3, 4)

	assert.InDelta(t, 25.0, Progress(steps, stepID(1)), 1e-9)
	assert.InDelta(t, 50.0, Progress(steps, stepID(2)), 1e-9)
	assert.InDelta(t, 75.0, Progress(steps, stepID(3)), 1e-9)
	assert.InDelta(t, 100.0, Progress(steps, stepID(4)), 1e-9)
}

func TestProgress_Monotonic(t *testing.T) {
	steps := pipelineSteps(2, 4, 6, 9, 11)
	sorted := SortSteps(steps)

	prev := 0.0
	for i := range sorted {
		p := Progress(steps, sorted[i].ID)
		assert.GreaterOrEqual(t, p, prev, "progress must not decrease along the pipeline")
		prev = p
	}
}

func TestProgress_AbsentOrEmpty(t *testing.T) {
	assert.Zero(t, Progress(pipelineSteps(1, 2), "missing"))
	assert.Zero(t, Progress(nil, "step-1"))
}
