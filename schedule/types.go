/*
Package schedule is the maintenance due-status engine.

PURPOSE:
  Computes which maintenance items on a vehicle are due, given the rule
  catalog, the purchase date, the recorded service history, the current
  odometer reading, and the query date. It is a pure function over an
  immutable input snapshot: no I/O, no state between calls, safe for
  concurrent use.

KEY CONCEPTS:
  - MaintenanceRule: a named item with a time interval, a mileage interval,
    or both (catalog.go holds the production table)
  - ServiceEvent: one recorded maintenance action (date + odometer + item)
  - Basis: the reference point the next due date/mileage is computed from:
    the purchase date (or 0 km) when an item has never been serviced,
    otherwise the most recent matching service
  - DueAssessment: per-rule result with both branches evaluated

SEE ALSO:
  - evaluate.go: The evaluator itself
  - catalog.go: The production rule table
  - errors.go: Failure taxonomy
*/
package schedule

import "time"

// =============================================================================
// RULES
// =============================================================================

// TimeUnit is the unit of a time-based maintenance interval.
type TimeUnit string

const (
	UnitMonth TimeUnit = "month"
	UnitYear  TimeUnit = "year"
)

// TimeInterval is a recurrence expressed in calendar time.
type TimeInterval struct {
	Amount int
	Unit   TimeUnit
}

// Advance returns from moved forward by the interval, clamping at month ends.
func (iv TimeInterval) Advance(from Date) Date {
	if iv.Unit == UnitYear {
		return from.AddYears(iv.Amount)
	}
	return from.AddMonths(iv.Amount)
}

// MileageInterval is a recurrence expressed in kilometers driven.
type MileageInterval struct {
	Amount int
}

// MaintenanceRule defines one maintenance item. At least one of the two
// intervals must be set; a rule may carry both.
type MaintenanceRule struct {
	Name    string
	Time    *TimeInterval
	Mileage *MileageInterval
}

// =============================================================================
// HISTORY
// =============================================================================

// ServiceEvent is one recorded maintenance action. Date holds the stored
// string form ("YYYY-MM-DD", optionally with a time suffix); the evaluator
// parses it and fails fast on malformed input rather than skipping the row.
type ServiceEvent struct {
	ID        int64
	ItemName  string
	Date      string
	Mileage   int
	CreatedAt time.Time
}

// =============================================================================
// EVALUATOR OUTPUT
// =============================================================================

// TimeStatus is the time branch of a rule's assessment.
type TimeStatus struct {
	NextDueDate   Date
	DaysRemaining int // signed; negative means overdue
	BasisDate     Date
	BasisLabel    string
}

// MileageStatus is the mileage branch of a rule's assessment.
type MileageStatus struct {
	NextDueMileage    int
	DistanceRemaining int // signed; negative means overdue
	BasisMileage      int
	BasisLabel        string
}

// DueAssessment is the per-rule evaluation result. A branch is nil when the
// rule has no interval of that kind.
type DueAssessment struct {
	ItemName string
	Time     *TimeStatus
	Mileage  *MileageStatus
	IsDue    bool
}

// DebugInfo carries the per-rule projections for troubleshooting. Every rule
// contributes to each list it has a branch for, due or not, with remaining
// values clamped to zero once elapsed.
type DebugInfo struct {
	QueryDate    string   `json:"queryDate"`
	TimeBased    []string `json:"timeBased"`
	MileageBased []string `json:"mileageBased"`
}

// Evaluation is the full result snapshot of one evaluator run.
type Evaluation struct {
	Suggestions []string
	Debug       DebugInfo
	Assessments []DueAssessment
}
