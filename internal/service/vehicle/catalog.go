package vehicle

import (
	"sort"

	"CoverBot/entity"
)

// catalogue used for manual entry and for the offline registry mock
var catalogue = []entity.Vehicle{
	{Type: entity.VehicleCar, Brand: "Maruti Suzuki", Model: "Swift", Variant: "VXi", Fuel: entity.FuelPetrol, EngineCC: 1197, ExShowroom: 700000},
	{Type: entity.VehicleCar, Brand: "Maruti Suzuki", Model: "Baleno", Variant: "Zeta", Fuel: entity.FuelPetrol, EngineCC: 1197, ExShowroom: 820000},
	{Type: entity.VehicleCar, Brand: "Maruti Suzuki", Model: "Ertiga", Variant: "VXi CNG", Fuel: entity.FuelCNG, EngineCC: 1462, ExShowroom: 1050000},
	{Type: entity.VehicleCar, Brand: "Hyundai", Model: "i20", Variant: "Asta", Fuel: entity.FuelPetrol, EngineCC: 1197, ExShowroom: 900000},
	{Type: entity.VehicleCar, Brand: "Hyundai", Model: "Creta", Variant: "SX", Fuel: entity.FuelDiesel, EngineCC: 1493, ExShowroom: 1650000},
	{Type: entity.VehicleCar, Brand: "Tata", Model: "Nexon", Variant: "XZ+", Fuel: entity.FuelPetrol, EngineCC: 1199, ExShowroom: 1100000},
	{Type: entity.VehicleCar, Brand: "Tata", Model: "Nexon EV", Variant: "Max", Fuel: entity.FuelElectric, EngineCC: 0, ExShowroom: 1700000},
	{Type: entity.VehicleCar, Brand: "Mahindra", Model: "XUV700", Variant: "AX7", Fuel: entity.FuelDiesel, EngineCC: 2184, ExShowroom: 2300000},
	{Type: entity.VehicleCar, Brand: "Honda", Model: "City", Variant: "V", Fuel: entity.FuelPetrol, EngineCC: 1498, ExShowroom: 1300000},
	{Type: entity.VehicleBike, Brand: "Hero", Model: "Splendor Plus", Fuel: entity.FuelPetrol, EngineCC: 97, ExShowroom: 75000},
	{Type: entity.VehicleBike, Brand: "Honda", Model: "Activa 6G", Fuel: entity.FuelPetrol, EngineCC: 109, ExShowroom: 80000},
	{Type: entity.VehicleBike, Brand: "Bajaj", Model: "Pulsar 150", Fuel: entity.FuelPetrol, EngineCC: 149, ExShowroom: 115000},
	{Type: entity.VehicleBike, Brand: "Royal Enfield", Model: "Classic 350", Fuel: entity.FuelPetrol, EngineCC: 349, ExShowroom: 195000},
	{Type: entity.VehicleBike, Brand: "TVS", Model: "iQube", Fuel: entity.FuelElectric, EngineCC: 0, ExShowroom: 120000},
	{Type: entity.VehicleBike, Brand: "KTM", Model: "390 Duke", Fuel: entity.FuelPetrol, EngineCC: 373, ExShowroom: 310000},
}

// Brands lists the brands known for a vehicle type, sorted by name.
func Brands(vehicleType string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range catalogue {
		if v.Type == vehicleType && !seen[v.Brand] {
			seen[v.Brand] = true
			out = append(out, v.Brand)
		}
	}
	sort.Strings(out)
	return out
}

// Models lists catalogue entries for a brand.
func Models(vehicleType, brand string) []entity.Vehicle {
	var out []entity.Vehicle
	for _, v := range catalogue {
		if v.Type == vehicleType && v.Brand == brand {
			out = append(out, v)
		}
	}
	return out
}

// Find returns the catalogue entry for a brand and model.
func Find(vehicleType, brand, model string) (entity.Vehicle, bool) {
	for _, v := range Models(vehicleType, brand) {
		if v.Model == model {
			return v, true
		}
	}
	return entity.Vehicle{}, false
}
