package entity

import "time"

const (
	ClaimSubmitted   = "submitted"
	ClaimUnderReview = "under_review"
	ClaimSurveyor    = "surveyor_assigned"
	ClaimSettled     = "settled"

	EditAddOn   = "addon"
	EditNominee = "nominee"
	EditAddress = "address"

	EditPending = "pending"
)

// Claim is a First Notice of Loss submitted from the dashboard.
type Claim struct {
	ID             string    `json:"id" bson:"id"`
	PolicyNumber   string    `json:"policy_number" bson:"policy_number"`
	IncidentType   string    `json:"incident_type" bson:"incident_type"`
	FirFiled       bool      `json:"fir_filed" bson:"fir_filed"`
	Injuries       string    `json:"injuries" bson:"injuries"`
	IncidentDate   string    `json:"incident_date" bson:"incident_date"`
	Driver         string    `json:"driver" bson:"driver"`
	DriverName     string    `json:"driver_name" bson:"driver_name"`
	DriverLicensed bool      `json:"driver_licensed" bson:"driver_licensed"`
	Description    string    `json:"description" bson:"description"`
	Location       string    `json:"location" bson:"location"`
	Drivable       bool      `json:"drivable" bson:"drivable"`
	Towing         bool      `json:"towing" bson:"towing"`
	Garage         string    `json:"garage" bson:"garage"`
	Documents      []string  `json:"documents" bson:"documents"`
	Photos         []string  `json:"photos" bson:"photos"`
	Status         string    `json:"status" bson:"status"`
	SubmittedAt    time.Time `json:"submitted_at" bson:"submitted_at"`
}

// EditRequest is a policy change request submitted from the dashboard.
type EditRequest struct {
	ID              string    `json:"id" bson:"id"`
	PolicyNumber    string    `json:"policy_number" bson:"policy_number"`
	Type            string    `json:"type" bson:"type"`
	AddOns          []string  `json:"add_ons" bson:"add_ons"`
	NomineeName     string    `json:"nominee_name" bson:"nominee_name"`
	NomineeRelation string    `json:"nominee_relation" bson:"nominee_relation"`
	Address         string    `json:"address" bson:"address"`
	Status          string    `json:"status" bson:"status"`
	SubmittedAt     time.Time `json:"submitted_at" bson:"submitted_at"`
}
