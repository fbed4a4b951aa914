package engine

import (
	"strings"

	"github.com/albertobarcelos/nexflow/internal/models"
)

// Hydrate converts a card's raw field-value map into the typed form buffer
// the editor works on. Values stored under the reserved system slugs, or
// under the id of a declared field classified as assignee/team, are diverted
// into the dedicated assignment slots and excluded from the generic map.
// Agents are read only from the card's own agent set, never from the map.
func Hydrate(card *models.Card, declared []models.Field) models.CardFormValues {
	form := models.CardFormValues{
		Title:          card.Title,
		Fields:         make(map[string]models.FieldValue),
		ChecklistState: make(map[string]map[string]bool),
		AssigneeType:   models.AssigneeUser,
		ProductID:      card.ProductID,
		Value:          card.Value,
	}

	roleByKey := systemKeyRoles(declared)

	for key, value := range card.FieldValues {
		role, ok := roleByKey[key]
		if !ok {
			role = RoleGeneric
		}
		switch role {
		case RoleAssignee:
			form.AssignedTo = idFromValue(value)
		case RoleTeam:
			form.AssignedTeamID = idFromValue(value)
		case RoleAgents:
			// agent membership lives on the card itself
		default:
			form.Fields[key] = value
		}
	}

	for fieldID, items := range card.ChecklistState {
		copied := make(map[string]bool, len(items))
		for name, done := range items {
			copied[name] = done
		}
		form.ChecklistState[fieldID] = copied
	}

	form.Agents = dedupe(card.AgentIDs)

	if form.AssignedTo == nil && card.AssigneeUserID != nil {
		form.AssignedTo = card.AssigneeUserID
	}
	if form.AssignedTeamID == nil && card.AssigneeTeamID != nil {
		form.AssignedTeamID = card.AssigneeTeamID
	}
	if form.AssignedTo == nil && form.AssignedTeamID != nil {
		form.AssigneeType = models.AssigneeTeam
	}

	return form
}

// systemKeyRoles maps every key under which a system value may be stored to
// its role: the three reserved slugs always, plus the ids of declared fields
// the classifier routed to assignee/team/agents (covers flows whose fields
// carry no slug and store values by field id).
func systemKeyRoles(declared []models.Field) map[string]FieldRole {
	roles := map[string]FieldRole{
		models.SlugAssignedTo:   RoleAssignee,
		models.SlugAssignedTeam: RoleTeam,
		models.SlugAgents:       RoleAgents,
	}
	for _, f := range declared {
		role := ClassifyField(f)
		if role == RoleGeneric {
			continue
		}
		if f.Slug != "" {
			roles[f.Slug] = role
		}
		roles[f.ID] = role
	}
	return roles
}

// idFromValue extracts an identifier from a text field value, mapping blank
// strings to nil so an empty selection never persists as "".
func idFromValue(v models.FieldValue) *string {
	if v.Kind != models.ValueText {
		return nil
	}
	trimmed := strings.TrimSpace(v.Text)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
