package motor

import (
	"slices"

	"CoverBot/bot/journey"
	"CoverBot/entity"
	"CoverBot/internal/service/pricing"
)

var yesNo = []journey.Option{
	{ID: "yes", Label: "Yes"},
	{ID: "no", Label: "No"},
}

func vehicleOf(s *journey.State) entity.Vehicle {
	v, _ := journey.Get[entity.Vehicle](s, KeyVehicle)
	return v
}

func previousPolicy(s *journey.State) entity.PreviousPolicy {
	p, _ := journey.Get[entity.PreviousPolicy](s, KeyPreviousPolicy)
	return p
}

func quotes(s *journey.State) []entity.Plan {
	plans, _ := journey.Get[[]entity.Plan](s, KeyQuotes)
	return plans
}

func selectedPlan(s *journey.State) (entity.Plan, bool) {
	id := s.GetString(KeySelectedPlanID)
	for _, p := range quotes(s) {
		if p.ID == id {
			return p, true
		}
	}
	return entity.Plan{}, false
}

func isThirdParty(s *journey.State) bool {
	return s.GetString(KeySelectedPlan) == entity.PlanThirdParty
}

func isCar(s *journey.State) bool {
	return s.GetString(KeyVehicleType) == entity.VehicleCar
}

// PricingInput collects what the premium formulas need from a journey.
func PricingInput(s *journey.State) pricing.Input {
	prev := previousPolicy(s)
	return pricing.Input{
		Vehicle:     vehicleOf(s),
		At:          s.Now,
		NcbPercent:  s.GetInt(KeyNewNcb),
		ExpiredLong: prev.Status == entity.PolicyExpiredLong,
		HasCngKit:   s.GetBool(KeyHasCngKit),
	}
}

// CurrentPremium prices the selected plan with the chosen IDV, garage tier and add-ons.
func CurrentPremium(s *journey.State) entity.Premium {
	return pricing.Quote(
		PricingInput(s),
		s.GetString(KeySelectedPlan),
		s.GetString(KeyGarageTier),
		s.GetInt(KeyIDV),
		s.GetStrings(KeySelectedAddOns),
	)
}

// replaceCategory swaps the add-ons of one category for a new pick and keeps the rest.
func replaceCategory(current []string, category string, picked []string) []string {
	out := make([]string, 0, len(current)+len(picked))
	for _, id := range current {
		if pricing.Category(id) != category {
			out = append(out, id)
		}
	}
	for _, id := range picked {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func addOnOptions(s *journey.State, category string) []journey.Option {
	idv := s.GetInt(KeyIDV)
	if idv == 0 {
		idv = pricing.IDV(vehicleOf(s), s.Now)
	}
	items := pricing.AddOns(category, vehicleOf(s), s.GetString(KeySelectedPlan), idv)
	opts := make([]journey.Option, 0, len(items))
	for _, a := range items {
		opts = append(opts, journey.Option{
			ID:          a.ID,
			Label:       a.Name + " (" + pricing.FormatAmount(a.Price) + ")",
			Description: a.Description,
		})
	}
	return opts
}
