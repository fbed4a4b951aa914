package models

import (
	"encoding/json"
	"fmt"
)

// FieldType identifies the data-entry widget and validation rule of a field.
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeNumber     FieldType = "number"
	FieldTypeDate       FieldType = "date"
	FieldTypeChecklist  FieldType = "checklist"
	FieldTypeUserSelect FieldType = "user_select"
	FieldTypeIdentifier FieldType = "identifier"
)

var validFieldTypes = map[FieldType]bool{
	FieldTypeText:       true,
	FieldTypeNumber:     true,
	FieldTypeDate:       true,
	FieldTypeChecklist:  true,
	FieldTypeUserSelect: true,
	FieldTypeIdentifier: true,
}

// IsValid returns true if the field type is known.
func (t FieldType) IsValid() bool {
	return validFieldTypes[t]
}

// String returns the string representation of the field type.
func (t FieldType) String() string {
	return string(t)
}

// IdentifierKind selects the checksum rule of an identifier field.
type IdentifierKind string

const (
	IdentifierCPF  IdentifierKind = "cpf"
	IdentifierCNPJ IdentifierKind = "cnpj"
	IdentifierAuto IdentifierKind = "auto"
)

// TextVariant distinguishes single-line from multi-line text fields.
type TextVariant string

const (
	TextShort TextVariant = "short"
	TextLong  TextVariant = "long"
)

// Reserved slugs that route a field's value to a dedicated card attribute
// instead of the generic field map.
const (
	SlugAssignedTo   = "assigned_to"
	SlugAssignedTeam = "assigned_team_id"
	SlugAgents       = "agents"
)

// FieldConfig holds type-specific configuration for a field declaration.
type FieldConfig struct {
	ChecklistItems []string       `json:"checklist_items,omitempty"`
	TextVariant    TextVariant    `json:"text_variant,omitempty"`
	IdentifierKind IdentifierKind `json:"identifier_kind,omitempty"`
}

// Field is a declared data-entry unit belonging to one step.
type Field struct {
	ID       string      `json:"id"`
	StepID   string      `json:"step_id"`
	Label    string      `json:"label"`
	Slug     string      `json:"slug,omitempty"`
	Type     FieldType   `json:"type"`
	Required bool        `json:"is_required"`
	Config   FieldConfig `json:"config"`
}

// FieldValueKind tags the payload slot of a FieldValue.
type FieldValueKind string

const (
	ValueText      FieldValueKind = "text"
	ValueNumber    FieldValueKind = "number"
	ValueChecklist FieldValueKind = "checklist"
	ValueDate      FieldValueKind = "date"
)

// FieldValue is the tagged union stored in a card's generic field map.
// Exactly one payload slot is meaningful, selected by Kind.
type FieldValue struct {
	Kind      FieldValueKind
	Text      string
	Number    float64
	Checklist map[string]bool
	Date      string // ISO 8601 date
}

// TextValue builds a text-kind field value.
func TextValue(s string) FieldValue {
	return FieldValue{Kind: ValueText, Text: s}
}

// NumberValue builds a number-kind field value.
func NumberValue(n float64) FieldValue {
	return FieldValue{Kind: ValueNumber, Number: n}
}

// ChecklistValue builds a checklist-kind field value.
func ChecklistValue(items map[string]bool) FieldValue {
	return FieldValue{Kind: ValueChecklist, Checklist: items}
}

// DateValue builds a date-kind field value from an ISO 8601 date string.
func DateValue(iso string) FieldValue {
	return FieldValue{Kind: ValueDate, Date: iso}
}

// fieldValueJSON is the persisted wire shape of a FieldValue.
type fieldValueJSON struct {
	Kind      FieldValueKind  `json:"kind"`
	Text      string          `json:"text,omitempty"`
	Number    *float64        `json:"number,omitempty"`
	Checklist map[string]bool `json:"checklist,omitempty"`
	Date      string          `json:"date,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	out := fieldValueJSON{Kind: v.Kind}
	switch v.Kind {
	case ValueText:
		out.Text = v.Text
	case ValueNumber:
		n := v.Number
		out.Number = &n
	case ValueChecklist:
		out.Checklist = v.Checklist
	case ValueDate:
		out.Date = v.Date
	default:
		return nil, fmt.Errorf("unknown field value kind: %q", v.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var in fieldValueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	v.Kind = in.Kind
	v.Text = in.Text
	if in.Number != nil {
		v.Number = *in.Number
	}
	v.Checklist = in.Checklist
	v.Date = in.Date
	return nil
}
