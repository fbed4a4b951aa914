package models

import "time"

// Card is a work item progressing through a flow's steps.
type Card struct {
	ID             string                     `json:"id"`
	FlowID         string                     `json:"flow_id"`
	StepID         string                     `json:"step_id"`
	Title          string                     `json:"title"`
	FieldValues    map[string]FieldValue      `json:"field_values"`
	ChecklistState map[string]map[string]bool `json:"checklist_state,omitempty"`
	ParentCardID   *string                    `json:"parent_card_id,omitempty"`
	AssigneeUserID *string                    `json:"assignee_user_id,omitempty"`
	AssigneeTeamID *string                    `json:"assignee_team_id,omitempty"`
	AgentIDs       []string                   `json:"agent_ids,omitempty"`
	CardType       string                     `json:"card_type,omitempty"`
	Value          *float64                   `json:"value,omitempty"`
	ProductID      *string                    `json:"product_id,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// SetAgents replaces the card's collaborating-agent set, dropping duplicates
// while keeping first-seen order.
func (c *Card) SetAgents(ids []string) {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	c.AgentIDs = out
}

// ChecklistFor returns the checklist progress map of one field, never nil.
func (c *Card) ChecklistFor(fieldID string) map[string]bool {
	if c.ChecklistState == nil {
		return map[string]bool{}
	}
	if m, ok := c.ChecklistState[fieldID]; ok && m != nil {
		return m
	}
	return map[string]bool{}
}
