package models

// User roles
const (
	RoleAdmin   = "ADMIN"
	RoleFaculty = "FACULTY"
	RoleHOD     = "HOD"
	RoleDean    = "DEAN"
)

// Submission statuses
const (
	StatusDraft         = "DRAFT"
	StatusSubmitted     = "SUBMITTED"
	StatusNeedsRevision = "NEEDS_REVISION"
	StatusHodApproved   = "HOD_APPROVED"
	StatusDeanApproved  = "DEAN_APPROVED"
	StatusRejected      = "REJECTED"
)

// CountedStatuses are the statuses whose points count toward scores.
var CountedStatuses = []string{StatusHodApproved, StatusDeanApproved}

// Main parameter role owners
const (
	RoleOwnerFaculty = "FACULTY"
	RoleOwnerHOD     = "HOD"
)

// Sub-parameter approval routing
const (
	RoutingHOD   = "HOD"
	RoutingOther = "OTHER"
)

// HoD mapping aggregation modes
const (
	AggregationAverage = "AVERAGE"
)

// Dynamic field kinds. The set is closed: validation dispatches over exactly
// these values and treats anything else as misconfiguration.
const (
	FieldText        = "text"
	FieldTextarea    = "textarea"
	FieldNumber      = "number"
	FieldPercentage  = "percentage"
	FieldDate        = "date"
	FieldURL         = "url"
	FieldSelect      = "select"
	FieldMultiSelect = "multiselect"
	FieldFile        = "file"
	FieldMultiFile   = "multifile"
)

// Activity log actions
const (
	ActionCreated       = "CREATED"
	ActionUpdated       = "UPDATED"
	ActionDeleted       = "DELETED"
	ActionSubmitted     = "SUBMITTED"
	ActionApproved      = "APPROVED"
	ActionRejected      = "REJECTED"
	ActionNeedsRevision = "NEEDS_REVISION"
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English month name for 1-12, or an empty string.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}
