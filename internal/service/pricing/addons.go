package pricing

import (
	"math"
	"slices"

	"CoverBot/entity"
)

type addOnRule struct {
	entity.AddOn
	// rate is a fraction of IDV; Price is used when zero.
	rate    float64
	carOnly bool
}

var addOnCatalog = []addOnRule{
	{AddOn: entity.AddOn{ID: "zero_dep", Name: "Zero Depreciation", Description: "Full claim amount without deduction for wear on parts", Category: entity.AddOnOutOfPocket}, rate: 0.004},
	{AddOn: entity.AddOn{ID: "engine_protect", Name: "Engine Protect", Description: "Covers engine damage from water ingression and oil leaks", Category: entity.AddOnOutOfPocket}, rate: 0.0015},
	{AddOn: entity.AddOn{ID: "consumables", Name: "Consumables Cover", Description: "Pays for nuts, bolts, oil and coolant during repairs", Category: entity.AddOnOutOfPocket}, rate: 0.001},
	{AddOn: entity.AddOn{ID: "return_to_invoice", Name: "Return to Invoice", Description: "Get the invoice value back on total loss or theft", Category: entity.AddOnOutOfPocket}, rate: 0.002},
	{AddOn: entity.AddOn{ID: "tyre_protect", Name: "Tyre Protect", Description: "Replaces damaged tyres and tubes", Category: entity.AddOnOutOfPocket, Price: 450}, carOnly: true},
	{AddOn: entity.AddOn{ID: "key_replacement", Name: "Key Replacement", Description: "Covers lost or stolen keys and lock sets", Category: entity.AddOnOutOfPocket, Price: 299}, carOnly: true},
	{AddOn: entity.AddOn{ID: "pa_owner", Name: "Personal Accident Cover", Description: "₹15 lakh cover for the owner-driver", Category: entity.AddOnProtectEveryone, Price: 375}},
	{AddOn: entity.AddOn{ID: "pa_passengers", Name: "Passenger Cover", Description: "₹1 lakh cover for each passenger", Category: entity.AddOnProtectEveryone, Price: 250}},
	{AddOn: entity.AddOn{ID: "paid_driver", Name: "Paid Driver Cover", Description: "Legal liability for a paid driver", Category: entity.AddOnProtectEveryone, Price: 50}, carOnly: true},
	{AddOn: entity.AddOn{ID: "rsa", Name: "Roadside Assistance", Description: "Towing, flat tyre and fuel delivery, 24x7", Category: entity.AddOnProtectEveryone, Price: 199}},
}

func findAddOn(id string) (addOnRule, bool) {
	for _, a := range addOnCatalog {
		if a.ID == id {
			return a, true
		}
	}
	return addOnRule{}, false
}

// third-party plans never carry own-damage add-ons
func offered(a addOnRule, planType string) bool {
	return planType != entity.PlanThirdParty || a.Category != entity.AddOnOutOfPocket
}

// addOnPrice prices an add-on for a vehicle and IDV.
func addOnPrice(a addOnRule, v entity.Vehicle, idv int) int {
	if a.rate > 0 {
		return int(math.Round(float64(idv) * a.rate))
	}
	if v.Type == entity.VehicleBike {
		return int(math.Round(float64(a.Price) * 0.5))
	}
	return a.Price
}

// AddOns lists the add-ons of a category available for the vehicle and plan,
// priced for the given IDV. Add-ons already bundled into the plan are left out.
func AddOns(category string, v entity.Vehicle, planType string, idv int) []entity.AddOn {
	included := includedAddOns(planType)
	var out []entity.AddOn
	for _, a := range addOnCatalog {
		if a.Category != category || !offered(a, planType) {
			continue
		}
		if a.carOnly && v.Type == entity.VehicleBike {
			continue
		}
		if slices.Contains(included, a.ID) {
			continue
		}
		item := a.AddOn
		item.Price = addOnPrice(a, v, idv)
		out = append(out, item)
	}
	return out
}

// AddOnName returns the display name of an add-on id.
func AddOnName(id string) string {
	if a, ok := findAddOn(id); ok {
		return a.Name
	}
	return id
}

// Category returns the category of an add-on id, or "".
func Category(id string) string {
	if a, ok := findAddOn(id); ok {
		return a.Category
	}
	return ""
}
