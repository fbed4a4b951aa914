package engine

import (
	"testing"

	"github.com/albertobarcelos/nexflow/internal/models"
)

func TestClassifyField_SlugMatches(t *testing.T) {
	tests := []struct {
		name     string
		field    models.Field
		expected FieldRole
	}{
		{
			name:     "agents slug wins regardless of type",
			field:    models.Field{Slug: models.SlugAgents, Type: models.FieldTypeText, Label: "whatever"},
			expected: RoleAgents,
		},
		{
			name:     "assignee slug on person selector",
			field:    models.Field{Slug: models.SlugAssignedTo, Type: models.FieldTypeUserSelect, Label: "Pick one"},
			expected: RoleAssignee,
		},
		{
			name:     "team slug on person selector",
			field:    models.Field{Slug: models.SlugAssignedTeam, Type: models.FieldTypeUserSelect, Label: "Pick one"},
			expected: RoleTeam,
		},
		{
			name:     "assignee slug on non-person field stays generic",
			field:    models.Field{Slug: models.SlugAssignedTo, Type: models.FieldTypeText, Label: "Pick one"},
			expected: RoleGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyField(tt.field); got != tt.expected {
				t.Errorf("ClassifyField() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassifyField_LabelHeuristics(t *testing.T) {
	tests := []struct {
		name     string
		field    models.Field
		expected FieldRole
	}{
		{
			name:     "agentes label on person selector",
			field:    models.Field{Type: models.FieldTypeUserSelect, Label: "Agentes do card"},
			expected: RoleAgents,
		},
		{
			name:     "responsavel label with diacritics",
			field:    models.Field{Type: models.FieldTypeUserSelect, Label: "Responsável"},
			expected: RoleAssignee,
		},
		{
			name:     "responsavel label without diacritics",
			field:    models.Field{Type: models.FieldTypeUserSelect, Label: "responsavel pelo card"},
			expected: RoleAssignee,
		},
		{
			name:     "time label routes to team",
			field:    models.Field{Type: models.FieldTypeUserSelect, Label: "Time"},
			expected: RoleTeam,
		},
		{
			name:     "time plus responsavel routes to assignee, not team",
			field:    models.Field{Type: models.FieldTypeUserSelect, Label: "Time responsável"},
			expected: RoleAssignee,
		},
		{
			name:     "agents label beats responsavel label",
			field:    models.Field{Type: models.FieldTypeUserSelect, Label: "Agentes responsáveis"},
			expected: RoleAgents,
		},
		{
			name:     "label heuristics need a person selector",
			field:    models.Field{Type: models.FieldTypeText, Label: "Responsável"},
			expected: RoleGeneric,
		},
		{
			name:     "plain data field",
			field:    models.Field{Type: models.FieldTypeText, Label: "Descrição"},
			expected: RoleGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyField(tt.field); got != tt.expected {
				t.Errorf("ClassifyField() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassifyField_SlugBlocksOtherRoles(t *testing.T) {
	// a field already slugged as team never falls into the assignee role,
	// whatever its label says
	f := models.Field{Slug: models.SlugAssignedTeam, Type: models.FieldTypeUserSelect, Label: "Responsável"}
	if got := ClassifyField(f); got != RoleTeam {
		t.Errorf("ClassifyField() = %v, want %v", got, RoleTeam)
	}
}
