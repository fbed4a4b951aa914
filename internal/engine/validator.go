package engine

import (
	"fmt"
	"strings"

	"github.com/albertobarcelos/nexflow/internal/models"
	"github.com/albertobarcelos/nexflow/pkg/utils"
)

// RequirementCheck is the result of evaluating a step's required fields
// against the live form buffer. Unmet carries one advisory message per
// unsatisfied requirement; it names the field so the user knows what to
// finish before retrying.
type RequirementCheck struct {
	Allowed bool     `json:"allowed"`
	Unmet   []string `json:"unmet,omitempty"`
}

// CheckTransition decides whether a forward transition out of the step is
// allowed: every required field must be satisfied under its type rule. A step
// with no required fields always allows the move. Backward transitions are
// never gated by this check. The check is cheap and side-effect free so
// callers can re-run it on every form edit.
func CheckTransition(step *models.Step, form *models.CardFormValues) RequirementCheck {
	if step == nil {
		return RequirementCheck{Allowed: true}
	}

	var unmet []string
	for _, f := range step.Fields {
		if !f.Required {
			continue
		}
		if msg := unmetReason(f, form); msg != "" {
			unmet = append(unmet, msg)
		}
	}
	return RequirementCheck{Allowed: len(unmet) == 0, Unmet: unmet}
}

// CanAdvance is the boolean gate on the advance control.
func CanAdvance(step *models.Step, form *models.CardFormValues) bool {
	return CheckTransition(step, form).Allowed
}

// unmetReason returns an advisory message when the required field is not
// satisfied, empty when it is.
func unmetReason(f models.Field, form *models.CardFormValues) string {
	switch ClassifyField(f) {
	case RoleAssignee:
		if form.AssignedTo == nil {
			return fmt.Sprintf("%s: choose a responsible user", f.Label)
		}
		return ""
	case RoleTeam:
		if form.AssignedTeamID == nil {
			return fmt.Sprintf("%s: choose a responsible team", f.Label)
		}
		return ""
	case RoleAgents:
		if len(form.Agents) == 0 {
			return fmt.Sprintf("%s: add at least one agent", f.Label)
		}
		return ""
	}

	if f.Type == models.FieldTypeChecklist {
		progress := form.ChecklistFor(f.ID)
		for _, item := range f.Config.ChecklistItems {
			if !progress[item] {
				return fmt.Sprintf("%s: item %q is not done", f.Label, item)
			}
		}
		return ""
	}

	value, ok := lookupValue(form, f)
	if !ok {
		return fmt.Sprintf("%s is required", f.Label)
	}

	switch value.Kind {
	case models.ValueNumber:
		// any present number counts as filled, zero included
		return ""
	case models.ValueText, models.ValueDate:
		raw := value.Text
		if value.Kind == models.ValueDate {
			raw = value.Date
		}
		if strings.TrimSpace(raw) == "" {
			return fmt.Sprintf("%s is required", f.Label)
		}
		if f.Type == models.FieldTypeIdentifier {
			if err := utils.ValidateIdentifier(string(f.Config.IdentifierKind), raw); err != nil {
				return fmt.Sprintf("%s: invalid identifier", f.Label)
			}
		}
		return ""
	case models.ValueChecklist:
		for _, done := range value.Checklist {
			if done {
				return ""
			}
		}
		return fmt.Sprintf("%s is required", f.Label)
	default:
		return fmt.Sprintf("%s is required", f.Label)
	}
}

// lookupValue finds the form value of a declared field, stored under its id
// or, for older flows, under its slug.
func lookupValue(form *models.CardFormValues, f models.Field) (models.FieldValue, bool) {
	if v, ok := form.Fields[f.ID]; ok {
		return v, true
	}
	if f.Slug != "" {
		if v, ok := form.Fields[f.Slug]; ok {
			return v, true
		}
	}
	return models.FieldValue{}, false
}
