// Package api holds the request and response bodies of the HTTP API. The
// shapes mirror the schemas in internal/handler/openapi/openapi.json.
package api

import (
	"time"

	"github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// CreateTreatmentRequest is a farmer's diagnosis request
type CreateTreatmentRequest struct {
	AnimalId  types.UUID `json:"animal_id" binding:"required"`
	Symptoms  []string   `json:"symptoms"`
	Diagnosis string     `json:"diagnosis"`
	Notes     *string    `json:"notes,omitempty"`
}

// PrescribedMedicine is one medicine in a diagnosis
type PrescribedMedicine struct {
	MedicineId           *types.UUID `json:"medicine_id,omitempty"`
	Name                 string      `json:"name"`
	Dosage               string      `json:"dosage"`
	Route                *string     `json:"route,omitempty"`
	Frequency            *string     `json:"frequency,omitempty"`
	DurationDays         *int        `json:"duration_days,omitempty"`
	WithdrawalPeriodDays *int        `json:"withdrawal_period_days,omitempty"`
}

// DiagnoseRequest is a vet's diagnosis of a pending treatment
type DiagnoseRequest struct {
	Medicines []PrescribedMedicine `json:"medicines"`
	Notes     *string              `json:"notes,omitempty"`
}

// DiagnoseResponse returns the diagnosed treatment with its alert
type DiagnoseResponse struct {
	Treatment       *model.Treatment       `json:"treatment"`
	WithdrawalAlert *model.WithdrawalAlert `json:"withdrawal_alert"`
}

// SafetyResponse is the consumer safety check result
type SafetyResponse struct {
	FarmerId  string     `json:"farmer_id"`
	Status    string     `json:"status"`
	SafeAfter *time.Time `json:"safe_after,omitempty"`
	Message   string     `json:"message"`
}

// AnimalWithdrawalStatus is the per-animal status response
type AnimalWithdrawalStatus struct {
	AnimalId  string     `json:"animal_id"`
	TagNumber string     `json:"tag_number"`
	Status    string     `json:"status"`
	SafeAfter *time.Time `json:"safe_after,omitempty"`
}

// VerifyFarmerRequest sets a farmer's verification flag
type VerifyFarmerRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// GenerateReportRequest requests a withdrawal compliance report
type GenerateReportRequest struct {
	FarmerId  string     `json:"farmer_id" binding:"required"`
	StartDate types.Date `json:"start_date"`
	EndDate   types.Date `json:"end_date"`
}

// ReportResponse describes a generated report
type ReportResponse struct {
	Id          string      `json:"id"`
	FarmerId    string      `json:"farmer_id"`
	RequestedBy string      `json:"requested_by"`
	StartDate   *types.Date `json:"start_date"`
	EndDate     *types.Date `json:"end_date"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
