package entity

import "time"

const (
	VehicleCar  = "car"
	VehicleBike = "bike"

	FuelPetrol   = "petrol"
	FuelDiesel   = "diesel"
	FuelCNG      = "cng"
	FuelElectric = "electric"
)

type Vehicle struct {
	Type         string `json:"type" bson:"type" validate:"omitempty,oneof=car bike"`
	Registration string `json:"registration" bson:"registration"`
	Brand        string `json:"brand" bson:"brand"`
	Model        string `json:"model" bson:"model"`
	Variant      string `json:"variant" bson:"variant"`
	Fuel         string `json:"fuel" bson:"fuel" validate:"omitempty,oneof=petrol diesel cng electric"`
	EngineCC     int    `json:"engine_cc" bson:"engine_cc" validate:"gte=0"`
	Year         int    `json:"year" bson:"year" validate:"gte=0"`
	ExShowroom   int    `json:"ex_showroom" bson:"ex_showroom" validate:"gte=0"`
}

// AgeYears returns the vehicle age in whole years at the given moment.
func (v Vehicle) AgeYears(at time.Time) int {
	if v.Year == 0 {
		return 0
	}
	age := at.Year() - v.Year
	if age < 0 {
		return 0
	}
	return age
}

func (v Vehicle) DisplayName() string {
	name := v.Brand
	if v.Model != "" {
		name += " " + v.Model
	}
	if v.Variant != "" {
		name += " " + v.Variant
	}
	return name
}

const (
	PolicyActive        = "active"
	PolicyExpiredRecent = "expired_recent"
	PolicyExpiredLong   = "expired_long"
	PolicyUnknown       = "unknown"
)

type PreviousPolicy struct {
	Status        string `json:"status" bson:"status"`
	Insurer       string `json:"insurer" bson:"insurer"`
	Type          string `json:"type" bson:"type"`
	ClaimMade     bool   `json:"claim_made" bson:"claim_made"`
	NcbPercentage int    `json:"ncb_percentage" bson:"ncb_percentage"`
}
