package models

// AssigneeType says which primary assignment slot the form is editing.
type AssigneeType string

const (
	AssigneeUser AssigneeType = "user"
	AssigneeTeam AssigneeType = "team"
)

// CardFormValues is the live editing buffer for one open card. It is built
// fresh whenever the active card changes, discarded on close and written back
// to the card on save. System fields (assignee, team, agents) live in their
// dedicated slots and never appear in Fields.
type CardFormValues struct {
	Title          string                     `json:"title"`
	Fields         map[string]FieldValue      `json:"fields"`
	ChecklistState map[string]map[string]bool `json:"checklist_state,omitempty"`
	AssigneeType   AssigneeType               `json:"assignee_type"`
	AssignedTo     *string                    `json:"assigned_to,omitempty"`
	AssignedTeamID *string                    `json:"assigned_team_id,omitempty"`
	Agents         []string                   `json:"agents,omitempty"`
	ProductID      *string                    `json:"product_id,omitempty"`
	Value          *float64                   `json:"value,omitempty"`
}

// ChecklistFor returns the checklist progress of one field, never nil.
func (f *CardFormValues) ChecklistFor(fieldID string) map[string]bool {
	if f.ChecklistState == nil {
		return map[string]bool{}
	}
	if m, ok := f.ChecklistState[fieldID]; ok && m != nil {
		return m
	}
	return map[string]bool{}
}
