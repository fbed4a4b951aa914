package engine

import (
	"time"

	"github.com/albertobarcelos/nexflow/internal/models"
)

// TimelineEntry is one display-ready row of a card's movement timeline.
type TimelineEntry struct {
	Entry       models.MovementHistoryEntry `json:"entry"`
	Step        *models.Step                `json:"step,omitempty"` // destination step, when still present in the flow
	Backward    bool                        `json:"backward"`
	Synthesized bool                        `json:"synthesized"`
}

// Timeline is the reconstructed movement history of a card.
type Timeline struct {
	Entries    []TimelineEntry `json:"entries"`
	LastUpdate *time.Time      `json:"last_update,omitempty"`
}

// Reconstruct builds the timeline from the raw history records and the
// ordered step list. Records without a destination step are dropped, and a
// record landing on the card's current step is dropped too (it would repeat
// the current-step panel) unless it carries a complete or cancel action,
// which is always shown. When no real history survives the filter — a fresh
// card, or history not yet populated — one pseudo-entry is synthesized per
// step before the current one, dated at card creation with no actor. The
// synthesis is an approximation: a card that skipped steps gets the same
// entries as one that visited each of them. Entries keep source order
// (chronological ascending); the newest timestamp is exposed as LastUpdate.
func Reconstruct(card *models.Card, steps []models.Step, raw []models.MovementHistoryEntry) Timeline {
	sorted := SortSteps(steps)
	byID := make(map[string]*models.Step, len(sorted))
	for i := range sorted {
		byID[sorted[i].ID] = &sorted[i]
	}

	var entries []TimelineEntry
	for _, rec := range raw {
		if rec.ToStepID == "" {
			continue
		}
		if rec.ToStepID == card.StepID &&
			rec.ActionType != models.ActionComplete && rec.ActionType != models.ActionCancel {
			continue
		}
		entries = append(entries, TimelineEntry{
			Entry:    rec,
			Step:     byID[rec.ToStepID],
			Backward: rec.IsBackward(),
		})
	}

	if len(entries) == 0 {
		entries = synthesize(card, sorted)
	}

	tl := Timeline{Entries: entries}
	for i := range entries {
		ts := entries[i].Entry.Timestamp
		if tl.LastUpdate == nil || ts.After(*tl.LastUpdate) {
			t := ts
			tl.LastUpdate = &t
		}
	}
	return tl
}

// synthesize fabricates a pass-through entry for every step whose position
// precedes the card's current step, all dated at card creation.
func synthesize(card *models.Card, sorted []models.Step) []TimelineEntry {
	var current *models.Step
	for i := range sorted {
		if sorted[i].ID == card.StepID {
			current = &sorted[i]
			break
		}
	}
	if current == nil {
		return nil
	}

	var entries []TimelineEntry
	for i := range sorted {
		step := &sorted[i]
		if step.Position >= current.Position {
			continue
		}
		pos := step.Position
		entries = append(entries, TimelineEntry{
			Entry: models.MovementHistoryEntry{
				CardID:     card.ID,
				ToStepID:   step.ID,
				ToStepName: step.Title,
				ToPosition: &pos,
				Timestamp:  card.CreatedAt,
				ActionType: models.ActionMove,
			},
			Step:        step,
			Synthesized: true,
		})
	}
	return entries
}
