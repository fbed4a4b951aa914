package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertobarcelos/nexflow/internal/models"
)

func intPtr(v int) *int { return &v }

func TestReconstruct_DropsEntriesWithoutDestination(t *testing.T) {
	card := &models.Card{ID: "c1", StepID: stepID(3)}
	steps := pipelineSteps(1, 2, 3)
	raw := []models.MovementHistoryEntry{
		{ID: "h1", CardID: "c1", ToStepID: "", Timestamp: time.Now()},
		{ID: "h2", CardID: "c1", ToStepID: stepID(2), Timestamp: time.Now()},
	}

	tl := Reconstruct(card, steps, raw)
	require.Len(t, tl.Entries, 1)
	assert.Equal(t, "h2", tl.Entries[0].Entry.ID)
}

func TestReconstruct_CurrentStepExcludedUnlessTerminalAction(t *testing.T) {
	card := &models.Card{ID: "c1", StepID: stepID(2)}
	steps := pipelineSteps(1, 2, 3)
	now := time.Now()

	// plain move onto the current step is redundant with the current-step panel
	tl := Reconstruct(card, steps, []models.MovementHistoryEntry{
		{ID: "h1", CardID: "c1", ToStepID: stepID(1), ActionType: models.ActionMove, Timestamp: now},
		{ID: "h2", CardID: "c1", ToStepID: stepID(2), ActionType: models.ActionMove, Timestamp: now},
	})
	require.Len(t, tl.Entries, 1)
	assert.Equal(t, "h1", tl.Entries[0].Entry.ID)

	// complete on the current step is always shown
	tl = Reconstruct(card, steps, []models.MovementHistoryEntry{
		{ID: "h3", CardID: "c1", ToStepID: stepID(2), ActionType: models.ActionComplete, Timestamp: now},
	})
	require.Len(t, tl.Entries, 1)
	assert.Equal(t, "h3", tl.Entries[0].Entry.ID)

	tl = Reconstruct(card, steps, []models.MovementHistoryEntry{
		{ID: "h4", CardID: "c1", ToStepID: stepID(2), ActionType: models.ActionCancel, Timestamp: now},
	})
	require.Len(t, tl.Entries, 1)
}

func TestReconstruct_SynthesizesEarlierSteps(t *testing.T) {
	// card at position 4 of {1,2,3,4,5} with no recorded history: exactly
	// one pseudo-entry per earlier step
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	card := &models.Card{ID: "c1", StepID: stepID(4), CreatedAt: created}
	steps := pipelineSteps(1, 2, 3, 4, 5)

	tl := Reconstruct(card, steps, nil)
	require.Len(t, tl.Entries, 3)
	for i, e := range tl.Entries {
		assert.True(t, e.Synthesized)
		assert.Equal(t, stepID(i+1), e.Entry.ToStepID)
		assert.Equal(t, created, e.Entry.Timestamp)
		assert.Empty(t, e.Entry.ActorName)
	}
	require.NotNil(t, tl.LastUpdate)
	assert.Equal(t, created, *tl.LastUpdate)
}

func TestReconstruct_SynthesisAfterFilteringEverything(t *testing.T) {
	// the only real record lands on the current step with a plain move, so
	// the filtered history is empty and synthesis kicks in
	card := &models.Card{ID: "c1", StepID: stepID(2), CreatedAt: time.Now()}
	steps := pipelineSteps(1, 2)
	raw := []models.MovementHistoryEntry{
		{ID: "h1", CardID: "c1", ToStepID: stepID(2), ActionType: models.ActionMove, Timestamp: time.Now()},
	}

	tl := Reconstruct(card, steps, raw)
	require.Len(t, tl.Entries, 1)
	assert.True(t, tl.Entries[0].Synthesized)
	assert.Equal(t, stepID(1), tl.Entries[0].Entry.ToStepID)
}

func TestReconstruct_NoSynthesisWhenCurrentStepUnknown(t *testing.T) {
	card := &models.Card{ID: "c1", StepID: "elsewhere", CreatedAt: time.Now()}
	tl := Reconstruct(card, pipelineSteps(1, 2, 3), nil)
	assert.Empty(t, tl.Entries)
	assert.Nil(t, tl.LastUpdate)
}

func TestReconstruct_BackwardDetection(t *testing.T) {
	card := &models.Card{ID: "c1", StepID: stepID(3)}
	steps := pipelineSteps(1, 2, 3)
	now := time.Now()
	flag := true

	raw := []models.MovementHistoryEntry{
		{ID: "fwd", CardID: "c1", ToStepID: stepID(2), FromPosition: intPtr(1), ToPosition: intPtr(2), Timestamp: now},
		{ID: "back", CardID: "c1", ToStepID: stepID(1), FromPosition: intPtr(2), ToPosition: intPtr(1), Timestamp: now.Add(time.Minute)},
		{ID: "tagged", CardID: "c1", ToStepID: stepID(2), Backward: &flag, Timestamp: now.Add(2 * time.Minute)},
	}

	tl := Reconstruct(card, steps, raw)
	require.Len(t, tl.Entries, 3)
	assert.False(t, tl.Entries[0].Backward)
	assert.True(t, tl.Entries[1].Backward, "decreasing recorded positions mean a backward move")
	assert.True(t, tl.Entries[2].Backward, "explicit tag wins")
}

func TestReconstruct_LastUpdateIsNewestTimestamp(t *testing.T) {
	card := &models.Card{ID: "c1", StepID: stepID(3)}
	steps := pipelineSteps(1, 2, 3)
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	tl := Reconstruct(card, steps, []models.MovementHistoryEntry{
		{ID: "h1", CardID: "c1", ToStepID: stepID(1), Timestamp: early},
		{ID: "h2", CardID: "c1", ToStepID: stepID(2), Timestamp: late},
	})

	require.NotNil(t, tl.LastUpdate)
	assert.Equal(t, late, *tl.LastUpdate)
}

func TestReconstruct_KeepsSourceOrder(t *testing.T) {
	card := &models.Card{ID: "c1", StepID: stepID(3)}
	steps := pipelineSteps(1, 2, 3)
	now := time.Now()

	tl := Reconstruct(card, steps, []models.MovementHistoryEntry{
		{ID: "first", CardID: "c1", ToStepID: stepID(1), Timestamp: now},
		{ID: "second", CardID: "c1", ToStepID: stepID(2), Timestamp: now},
	})

	require.Len(t, tl.Entries, 2)
	assert.Equal(t, "first", tl.Entries[0].Entry.ID)
	assert.Equal(t, "second", tl.Entries[1].Entry.ID)
}
