// Package engine holds the card pipeline derivation logic: step resolution,
// position and access state, form hydration, transition validation and the
// movement timeline. Everything here is pure computation over committed
// state; I/O happens only through the narrow source interfaces.
package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/albertobarcelos/nexflow/internal/models"
)

// FieldRole says where a field's value is routed during hydration.
type FieldRole int

const (
	RoleGeneric FieldRole = iota
	RoleAssignee
	RoleTeam
	RoleAgents
)

// String returns a readable name for the role.
func (r FieldRole) String() string {
	switch r {
	case RoleAssignee:
		return "assignee"
	case RoleTeam:
		return "team"
	case RoleAgents:
		return "agents"
	default:
		return "generic"
	}
}

var labelFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldLabel lowercases a label and strips diacritics so that heuristic
// matching treats "Responsável" and "responsavel" alike.
func foldLabel(label string) string {
	folded, _, err := transform.String(labelFolder, label)
	if err != nil {
		folded = label
	}
	return strings.ToLower(folded)
}

// ClassifyField decides whether a field is a system field (agents, assignee
// user, assignee team) or a generic data field. Slug matches take priority;
// the label substrings ("agents"/"agentes", "responsavel", "time") are a
// fuzzy fallback for flows configured before slugs existed, and the synonym
// list is deliberately closed. First match wins, in this order:
//
//  1. agents slug, or a person selector whose label mentions agents
//  2. assignee slug, or a person selector whose label mentions the
//     responsible person
//  3. team slug, or a person selector whose label mentions the team without
//     also mentioning the responsible person
//  4. generic
func ClassifyField(f models.Field) FieldRole {
	label := foldLabel(f.Label)
	person := f.Type == models.FieldTypeUserSelect

	if f.Slug == models.SlugAgents ||
		(person && (strings.Contains(label, "agents") || strings.Contains(label, "agentes"))) {
		return RoleAgents
	}

	if person && f.Slug != models.SlugAssignedTeam && f.Slug != models.SlugAgents &&
		(f.Slug == models.SlugAssignedTo || strings.Contains(label, "responsavel")) {
		return RoleAssignee
	}

	if person && f.Slug != models.SlugAgents && f.Slug != models.SlugAssignedTo &&
		(f.Slug == models.SlugAssignedTeam ||
			(strings.Contains(label, "time") && !strings.Contains(label, "responsavel"))) {
		return RoleTeam
	}

	return RoleGeneric
}
