package models

// StepType tags the role of a step within its flow.
type StepType string

const (
	StepTypeNormal   StepType = "normal"
	StepTypeFinisher StepType = "finisher"
	StepTypeFail     StepType = "fail"
	StepTypeFreezing StepType = "freezing"
)

var validStepTypes = map[StepType]bool{
	StepTypeNormal:   true,
	StepTypeFinisher: true,
	StepTypeFail:     true,
	StepTypeFreezing: true,
}

var terminalStepTypes = map[StepType]bool{
	StepTypeFinisher: true,
	StepTypeFail:     true,
}

// IsValid returns true if the step type is known.
func (t StepType) IsValid() bool {
	return validStepTypes[t]
}

// IsTerminal returns true for finisher and fail steps.
func (t StepType) IsTerminal() bool {
	return terminalStepTypes[t]
}

// IsFreezing returns true for freezing steps; cards parked on one are
// not editable.
func (t StepType) IsFreezing() bool {
	return t == StepTypeFreezing
}

// String returns the string representation of the step type.
func (t StepType) String() string {
	return string(t)
}

// Step is one ordered stage of a flow. Position is unique within a flow and
// strictly increasing but not necessarily contiguous; ordering is by
// comparison, never by arithmetic offset.
type Step struct {
	ID                string   `json:"id"`
	FlowID            string   `json:"flow_id"`
	Position          int      `json:"position"`
	Title             string   `json:"title"`
	Color             string   `json:"color,omitempty"`
	StepType          StepType `json:"step_type"`
	Fields            []Field  `json:"fields"`
	DefaultAssigneeID *string  `json:"default_assignee_id,omitempty"`
	DefaultTeamID     *string  `json:"default_team_id,omitempty"`
}

// Flow is a named pipeline: an ordered collection of steps.
type Flow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Steps []Step `json:"steps,omitempty"`
}
