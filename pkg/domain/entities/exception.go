package entities

import (
	"github.com/google/uuid"
)

// Severity grades how urgent an exception is for the planner
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

// String method for Severity enum
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// MrpExceptionType classifies netting anomalies
type MrpExceptionType int

const (
	PastDue MrpExceptionType = iota
	Unfulfillable
	ExcessInventory
	OrphanedDemand
)

// String method for MrpExceptionType enum
func (t MrpExceptionType) String() string {
	switch t {
	case PastDue:
		return "PastDue"
	case Unfulfillable:
		return "Unfulfillable"
	case ExcessInventory:
		return "ExcessInventory"
	case OrphanedDemand:
		return "OrphanedDemand"
	default:
		return "Unknown"
	}
}

// MrpException flags a netting anomaly. Exceptions are informational; they
// never block a run from completing.
type MrpException struct {
	ID         uuid.UUID
	Type       MrpExceptionType
	Severity   Severity
	ItemID     ItemID
	Period     int
	Message    string
	Resolved   bool
	Resolution string
}

// NewMrpException creates an unresolved MrpException
func NewMrpException(t MrpExceptionType, severity Severity, itemID ItemID, period int, message string) *MrpException {
	return &MrpException{
		ID:       uuid.New(),
		Type:     t,
		Severity: severity,
		ItemID:   itemID,
		Period:   period,
		Message:  message,
	}
}

// Resolve marks the exception handled by an operator
func (e *MrpException) Resolve(resolution string) {
	e.Resolved = true
	e.Resolution = resolution
}

// CapacityExceptionType classifies capacity anomalies
type CapacityExceptionType int

const (
	Overload CapacityExceptionType = iota
	Bottleneck
)

// String method for CapacityExceptionType enum
func (t CapacityExceptionType) String() string {
	switch t {
	case Overload:
		return "Overload"
	case Bottleneck:
		return "Bottleneck"
	default:
		return "Unknown"
	}
}

// CapacityException flags a work center load anomaly
type CapacityException struct {
	ID              uuid.UUID
	Type            CapacityExceptionType
	Severity        Severity
	WorkCenterID    WorkCenterID
	Period          int
	Message         string
	SuggestedAction string
	Resolved        bool
	Resolution      string
}

// NewCapacityException creates an unresolved CapacityException
func NewCapacityException(t CapacityExceptionType, severity Severity, wc WorkCenterID, period int, message, suggestedAction string) *CapacityException {
	return &CapacityException{
		ID:              uuid.New(),
		Type:            t,
		Severity:        severity,
		WorkCenterID:    wc,
		Period:          period,
		Message:         message,
		SuggestedAction: suggestedAction,
	}
}

// Resolve marks the exception handled by an operator
func (e *CapacityException) Resolve(resolution string) {
	e.Resolved = true
	e.Resolution = resolution
}
