package types

import "time"

type IssueType string

const (
	IssueTypePipeDamage        IssueType = "pipe_damage"
	IssueTypeTapFailure        IssueType = "tap_failure"
	IssueTypeTankEmpty         IssueType = "tank_empty"
	IssueTypeIllegalConnection IssueType = "illegal_connection"
	IssueTypeWaterLeak         IssueType = "water_leak"
	IssueTypeNoWaterSupply     IssueType = "no_water_supply"
	IssueTypeContaminatedWater IssueType = "contaminated_water"
	IssueTypeBrokenMeter       IssueType = "broken_meter"
	IssueTypeLowPressure       IssueType = "low_pressure"
	IssueTypeUnauthorizedUse   IssueType = "unauthorized_use"
	IssueTypeSewageOverflow    IssueType = "sewage_overflow"
	IssueTypeOther             IssueType = "other"
)

// IssueTypes lists every reportable issue in form display order.
var IssueTypes = []IssueType{
	IssueTypePipeDamage,
	IssueTypeTapFailure,
	IssueTypeTankEmpty,
	IssueTypeIllegalConnection,
	IssueTypeWaterLeak,
	IssueTypeNoWaterSupply,
	IssueTypeContaminatedWater,
	IssueTypeBrokenMeter,
	IssueTypeLowPressure,
	IssueTypeUnauthorizedUse,
	IssueTypeSewageOverflow,
	IssueTypeOther,
}

var issueTypeLabels = map[IssueType]string{
	IssueTypePipeDamage:        "Pipe Damage",
	IssueTypeTapFailure:        "Tap Failure",
	IssueTypeTankEmpty:         "Tank Empty",
	IssueTypeIllegalConnection: "Illegal Connection",
	IssueTypeWaterLeak:         "Water Leak",
	IssueTypeNoWaterSupply:     "No Water Supply",
	IssueTypeContaminatedWater: "Contaminated Water",
	IssueTypeBrokenMeter:       "Broken Water Meter",
	IssueTypeLowPressure:       "Low Water Pressure",
	IssueTypeUnauthorizedUse:   "Unauthorized Water Use",
	IssueTypeSewageOverflow:    "Sewage Overflow",
	IssueTypeOther:             "Other",
}

func (t IssueType) Valid() bool {
	_, ok := issueTypeLabels[t]
	return ok
}

func (t IssueType) Label() string {
	if label, ok := issueTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

type IncidentStatus string

const (
	IncidentStatusReceived   IncidentStatus = "received"
	IncidentStatusProcessing IncidentStatus = "processing"
	IncidentStatusCompleted  IncidentStatus = "completed"
)

var IncidentStatuses = []IncidentStatus{
	IncidentStatusReceived,
	IncidentStatusProcessing,
	IncidentStatusCompleted,
}

var incidentStatusLabels = map[IncidentStatus]string{
	IncidentStatusReceived:   "Received",
	IncidentStatusProcessing: "Processing",
	IncidentStatusCompleted:  "Completed",
}

func (s IncidentStatus) Valid() bool {
	_, ok := incidentStatusLabels[s]
	return ok
}

func (s IncidentStatus) Label() string {
	if label, ok := incidentStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// BadgeColor is the admin list badge background for this status.
func (s IncidentStatus) BadgeColor() string {
	switch s {
	case IncidentStatusReceived:
		return "orange"
	case IncidentStatusProcessing:
		return "blue"
	case IncidentStatusCompleted:
		return "green"
	}
	return "grey"
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var Severities = []Severity{
	SeverityLow,
	SeverityModerate,
	SeverityHigh,
	SeverityCritical,
}

var severityLabels = map[Severity]string{
	SeverityLow:      "Low",
	SeverityModerate: "Moderate",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

func (s Severity) Valid() bool {
	_, ok := severityLabels[s]
	return ok
}

func (s Severity) Label() string {
	if label, ok := severityLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s Severity) BadgeColor() string {
	switch s {
	case SeverityLow:
		return "gray"
	case SeverityModerate:
		return "blue"
	case SeverityHigh:
		return "orange"
	case SeverityCritical:
		return "red"
	}
	return "black"
}

// Incident is a single citizen-submitted water-service problem record.
type Incident struct {
	ID        string `db:"id"`
	AccountID string `db:"account_id"`

	IssueType   IssueType `db:"issue_type"`
	Description string    `db:"description"`
	ImageKey    *string   `db:"image_key"`

	Status   IncidentStatus `db:"status"`
	Severity Severity       `db:"severity"`

	Latitude  *float64 `db:"latitude"`
	Longitude *float64 `db:"longitude"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasLocation reports whether the incident carries usable coordinates.
// (0, 0) is treated as "no location" at render time only; the stored
// values are never rewritten.
func (i *Incident) HasLocation() bool {
	if i.Latitude == nil || i.Longitude == nil {
		return false
	}
	return *i.Latitude != 0 || *i.Longitude != 0
}

// IncidentRow is an incident joined with its reporter, as listed in the
// administrative surface.
type IncidentRow struct {
	Incident

	ReporterIDNumber  string `db:"reporter_id_number"`
	ReporterFirstName string `db:"reporter_first_name"`
	ReporterLastName  string `db:"reporter_last_name"`
}

func (r *IncidentRow) ReporterName() string {
	name := r.ReporterFirstName
	if r.ReporterLastName != "" {
		if name != "" {
			name += " "
		}
		name += r.ReporterLastName
	}
	if name == "" {
		return r.ReporterIDNumber
	}
	return name
}

// ShortDescription truncates the description for the admin list. Counts
// runes, not bytes, so multi-byte text is never cut mid-character.
func (r *IncidentRow) ShortDescription() string {
	const max = 75
	runes := []rune(r.Description)
	if len(runes) <= max {
		return r.Description
	}
	return string(runes[:max]) + "..."
}

// IncidentFilter narrows the triage view for a single account. Zero values
// mean "no filter".
type IncidentFilter struct {
	IssueType IssueType
	Status    IncidentStatus
}

// AdminIncidentFilter narrows the administrative incident list.
type AdminIncidentFilter struct {
	IssueType IssueType
	Status    IncidentStatus
	Severity  Severity
	Search    string
}

// AccountFilter narrows the administrative account list.
type AccountFilter struct {
	Search string
	Staff  *bool
	Active *bool
}
