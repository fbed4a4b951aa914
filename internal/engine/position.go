package engine

import "github.com/albertobarcelos/nexflow/internal/models"

// Position locates a card within an ordered step list.
type Position struct {
	Current  *models.Step
	Previous *models.Step
	Next     *models.Step
	Index    int // index of Current in the sorted list, -1 when absent
}

// Locate computes the current, previous and next step pointers for the card's
// step id within the given list. Steps are sorted ascending by position;
// next and previous are defined purely by adjacency in the sorted list,
// independent of step type. A step id not present in the list yields a
// Position with all pointers nil.
func Locate(steps []models.Step, stepID string) Position {
	sorted := SortSteps(steps)
	pos := Position{Index: -1}
	for i := range sorted {
		if sorted[i].ID != stepID {
			continue
		}
		pos.Index = i
		pos.Current = &sorted[i]
		if i > 0 {
			pos.Previous = &sorted[i-1]
		}
		if i < len(sorted)-1 {
			pos.Next = &sorted[i+1]
		}
		break
	}
	return pos
}

// Progress returns the card's progress through the given step list as a
// 0-100 percentage: ((index+1)/total)*100, or 0 when the step id is absent
// or the list is empty. The list passed here is the one the UI displays,
// which is not necessarily the effective cross-flow list.
func Progress(steps []models.Step, stepID string) float64 {
	if len(steps) == 0 {
		return 0
	}
	pos := Locate(steps, stepID)
	if pos.Index < 0 {
		return 0
	}
	return float64(pos.Index+1) / float64(len(steps)) * 100
}
