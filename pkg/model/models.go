package model

import "time"

// Role identifies the kind of authenticated caller
type Role string

const (
	RoleFarmer    Role = "farmer"
	RoleVet       Role = "vet"
	RoleAuthority Role = "authority"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleVet, RoleAuthority:
		return true
	}
	return false
}

// Identity is the authenticated caller as asserted by the bearer token
type Identity struct {
	UserID string
	Role   Role
}

// Farmer represents a registered farmer profile
type Farmer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Mobile     string    `json:"mobile,omitempty"`
	Address    *string   `json:"address,omitempty"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Animal represents a single animal owned by exactly one farmer
type Animal struct {
	ID              string    `json:"id"`
	FarmerID        string    `json:"farmer_id"`
	TagNumber       string    `json:"tag_number"`
	Species         string    `json:"species"`
	Breed           string    `json:"breed"`
	Gender          string    `json:"gender"`
	Age             *int      `json:"age,omitempty"`
	Weight          *float64  `json:"weight,omitempty"`
	IsLactating     bool      `json:"is_lactating"`
	DailyMilkYield  float64   `json:"daily_milk_yield"`
	PregnancyStatus string    `json:"pregnancy_status"`
	TreatmentIDs    []string  `json:"treatment_ids"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AuthorizedMedicine is a catalog entry with a mandated withdrawal period
type AuthorizedMedicine struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Dosage               string    `json:"dosage"`
	Route                *string   `json:"route,omitempty"`
	Frequency            *string   `json:"frequency,omitempty"`
	DurationDays         int       `json:"duration_days"`
	WithdrawalPeriodDays int       `json:"withdrawal_period_days"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// MedicineDetail is a medicine prescribed as part of one treatment
type MedicineDetail struct {
	ID                   string  `json:"id"`
	TreatmentID          string  `json:"treatment_id"`
	MedicineID           *string `json:"medicine_id,omitempty"`
	Name                 string  `json:"name"`
	Dosage               string  `json:"dosage"`
	Route                *string `json:"route,omitempty"`
	Frequency            *string `json:"frequency,omitempty"`
	DurationDays         int     `json:"duration_days"`
	WithdrawalPeriodDays int     `json:"withdrawal_period_days"`
	Position             int     `json:"-"`
}

// TreatmentStatus represents the lifecycle state of a treatment
type TreatmentStatus string

const (
	TreatmentStatusPending   TreatmentStatus = "pending"
	TreatmentStatusDiagnosed TreatmentStatus = "diagnosed"
)

// Treatment is a diagnosis request against one animal
type Treatment struct {
	ID                 string           `json:"id"`
	FarmerID           string           `json:"farmer_id"`
	AnimalID           string           `json:"animal_id"`
	VetID              *string          `json:"vet_id,omitempty"`
	Symptoms           []string         `json:"symptoms"`
	Diagnosis          string           `json:"diagnosis"`
	Notes              *string          `json:"notes,omitempty"`
	Status             TreatmentStatus  `json:"status"`
	Medicines          []MedicineDetail `json:"medicines"`
	TreatmentStartDate *time.Time       `json:"treatment_start_date,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// WithdrawalAlert names the instant after which an animal is safe again
type WithdrawalAlert struct {
	ID             string    `json:"id"`
	TreatmentID    string    `json:"treatment_id"`
	AnimalID       string    `json:"animal_id"`
	WithdrawalDays int       `json:"withdrawal_days"`
	SafeFrom       time.Time `json:"safe_from"`
	CreatedAt      time.Time `json:"created_at"`
}

// SafetyStatus is the consumption-safety classification
type SafetyStatus string

const (
	SafetyStatusSafe            SafetyStatus = "SAFE"
	SafetyStatusUnderWithdrawal SafetyStatus = "UNDER_WITHDRAWAL"
)

// SafetyResult is the outcome of evaluating an animal or a farmer
type SafetyResult struct {
	Status    SafetyStatus `json:"status"`
	SafeAfter *time.Time   `json:"safe_after,omitempty"`
}

// AnimalSafety pairs an animal with its current withdrawal status
type AnimalSafety struct {
	Animal Animal       `json:"animal"`
	Safety SafetyResult `json:"safety"`
}

// Report represents a generated withdrawal compliance report
type Report struct {
	ID             string    `json:"id"`
	FarmerID       string    `json:"farmer_id"`
	RequestedBy    string    `json:"requested_by"`
	DateRangeStart time.Time `json:"date_range_start"`
	DateRangeEnd   time.Time `json:"date_range_end"`
	FilePath       string    `json:"file_path"`
	GeneratedAt    time.Time `json:"generated_at"`
	CreatedAt      time.Time `json:"created_at"`
}
