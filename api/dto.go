/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

Validation happens in handlers, not here. DTOs are pure data carriers.
Field names follow the wire contract the frontend already speaks
(current_mileage, maintenance_date, debugInfo, ...).
*/
package api

import (
	"github.com/warp/maintenance-engine/schedule"
)

// QueryRequest asks which maintenance items are due at the given odometer
// reading. CurrentMileage is a pointer so a missing field is distinguishable
// from an explicit zero.
type QueryRequest struct {
	CurrentMileage *int `json:"current_mileage"`
}

// QueryResponse carries the due suggestions plus the per-rule projections.
type QueryResponse struct {
	Suggestions []string           `json:"suggestions"`
	DebugInfo   schedule.DebugInfo `json:"debugInfo"`
}

// SubmitLogRequest records a maintenance visit and, optionally on first use,
// the purchase date. When Items is non-empty, MaintenanceDate and Mileage are
// required; every item is logged at that same date and odometer reading.
type SubmitLogRequest struct {
	PurchaseDate    string   `json:"purchase_date,omitempty"`
	MaintenanceDate string   `json:"maintenance_date,omitempty"`
	Mileage         *int     `json:"mileage,omitempty"`
	Items           []string `json:"items,omitempty"`
}

// StatusResponse is the generic success/message envelope for mutations.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LogDTO represents one service history row.
type LogDTO struct {
	ID              int64  `json:"id"`
	MaintenanceDate string `json:"maintenance_date"`
	Mileage         int    `json:"mileage"`
	ItemName        string `json:"item_name"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// VehicleDTO represents the vehicle profile.
type VehicleDTO struct {
	PurchaseDate string `json:"purchase_date"`
}

// RuleDTO represents one catalog entry.
type RuleDTO struct {
	Name         string           `json:"name"`
	TimeInterval *TimeIntervalDTO `json:"time_interval,omitempty"`
	MileageKM    *int             `json:"mileage_interval_km,omitempty"`
}

// TimeIntervalDTO is the time recurrence of a rule.
type TimeIntervalDTO struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
