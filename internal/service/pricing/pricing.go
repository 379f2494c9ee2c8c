// Package pricing holds the deterministic premium formulas used to quote motor plans.
package pricing

import (
	"math"
	"slices"
	"strconv"
	"time"

	"CoverBot/entity"
)

const gstRate = 0.18

// Input is everything a quote depends on.
type Input struct {
	Vehicle     entity.Vehicle
	At          time.Time
	NcbPercent  int
	ExpiredLong bool
	HasCngKit   bool
}

// defaultExShowroom is used when neither the registry nor the catalogue knows the price.
var defaultExShowroom = map[string]int{
	entity.VehicleCar:  800000,
	entity.VehicleBike: 90000,
}

// depreciation by whole years of vehicle age.
var depreciation = []float64{0.05, 0.15, 0.20, 0.30, 0.40, 0.50}

// DepreciationRate returns the IDV depreciation for a vehicle age.
func DepreciationRate(ageYears int) float64 {
	if ageYears < 0 {
		ageYears = 0
	}
	if ageYears >= len(depreciation) {
		return depreciation[len(depreciation)-1]
	}
	return depreciation[ageYears]
}

// IDV is the insured declared value: ex-showroom price less depreciation, rounded to the rupee.
func IDV(v entity.Vehicle, at time.Time) int {
	price := v.ExShowroom
	if price == 0 {
		price = defaultExShowroom[v.Type]
	}
	return int(math.Round(float64(price) * (1 - DepreciationRate(v.AgeYears(at)))))
}

// IDVRange is the band a customer may move the IDV within.
func IDVRange(idv int) (low, high int) {
	return roundTo(float64(idv)*0.9, 100), roundTo(float64(idv)*1.1, 100)
}

// ownDamageRate is the base own-damage rate as a fraction of IDV.
func ownDamageRate(v entity.Vehicle) float64 {
	if v.Type == entity.VehicleBike {
		switch {
		case v.EngineCC <= 150:
			return 0.01708
		case v.EngineCC <= 350:
			return 0.01793
		default:
			return 0.01879
		}
	}
	switch {
	case v.EngineCC <= 1000:
		return 0.03127
	case v.EngineCC <= 1500:
		return 0.03283
	default:
		return 0.03440
	}
}

// ThirdPartyPremium is the annual third-party tariff by engine capacity.
func ThirdPartyPremium(v entity.Vehicle) int {
	if v.Type == entity.VehicleBike {
		switch {
		case v.EngineCC <= 75:
			return 538
		case v.EngineCC <= 150:
			return 714
		case v.EngineCC <= 350:
			return 1366
		default:
			return 2804
		}
	}
	switch {
	case v.EngineCC <= 1000:
		return 2094
	case v.EngineCC <= 1500:
		return 3416
	default:
		return 7897
	}
}

// NextNcb is the no claim bonus earned after one more claim-free year.
func NextNcb(current int) int {
	ladder := []int{0, 20, 25, 35, 45, 50}
	i := slices.Index(ladder, current)
	if i < 0 {
		return 0
	}
	if i == len(ladder)-1 {
		return ladder[i]
	}
	return ladder[i+1]
}

// NcbSlabs lists the valid no claim bonus percentages.
func NcbSlabs() []int {
	return []int{0, 20, 25, 35, 45, 50}
}

// Quote prices one plan type. idv overrides the computed IDV when non-zero.
func Quote(in Input, planType, garageTier string, idv int, addOns []string) entity.Premium {
	if idv == 0 {
		idv = IDV(in.Vehicle, in.At)
	}

	var p entity.Premium
	p.ThirdParty = ThirdPartyPremium(in.Vehicle)

	if planType != entity.PlanThirdParty {
		od := float64(idv) * ownDamageRate(in.Vehicle)
		if in.HasCngKit {
			od *= 1.05
		}
		if in.ExpiredLong {
			od *= 1.1
		}
		p.OwnDamage = int(math.Round(od))
		if garageTier == entity.GarageAny {
			p.GarageLoading = int(math.Round(od * 0.1))
		}
		ncb := in.NcbPercent
		if in.ExpiredLong {
			ncb = 0
		}
		p.NcbDiscount = int(math.Round(od * float64(ncb) / 100))
	}

	included := includedAddOns(planType)
	for _, id := range addOns {
		if slices.Contains(included, id) {
			continue
		}
		if a, ok := findAddOn(id); ok && offered(a, planType) {
			p.AddOns += addOnPrice(a, in.Vehicle, idv)
		}
	}

	p.Net = p.OwnDamage + p.ThirdParty + p.AddOns + p.GarageLoading - p.NcbDiscount
	p.GST = int(math.Round(float64(p.Net) * gstRate))
	p.Total = p.Net + p.GST
	return p
}

// Plans quotes every plan type at network garages with no optional add-ons.
func Plans(in Input) []entity.Plan {
	idv := IDV(in.Vehicle, in.At)
	plans := []entity.Plan{
		{
			ID:       entity.PlanThirdParty,
			Type:     entity.PlanThirdParty,
			Name:     "Third Party",
			Features: []string{"Covers damage to others", "Mandatory by law", "Personal accident cover available"},
		},
		{
			ID:       entity.PlanComprehensive,
			Type:     entity.PlanComprehensive,
			Name:     "Comprehensive",
			IDV:      idv,
			Features: []string{"Own damage and theft", "Third party liability", "Natural calamities"},
		},
		{
			ID:       entity.PlanComprehensivePlus,
			Type:     entity.PlanComprehensivePlus,
			Name:     "Comprehensive Plus",
			IDV:      idv,
			Features: []string{"Everything in Comprehensive", "Zero depreciation included", "24x7 roadside assistance"},
		},
	}
	for i := range plans {
		plans[i].Premium = Quote(in, plans[i].Type, entity.GarageNetwork, idv, includedAddOns(plans[i].Type))
		if plans[i].Type == entity.PlanComprehensivePlus {
			plans[i].Premium.AddOns = bundlePrice(in.Vehicle, idv)
			plans[i].Premium = total(plans[i].Premium)
		}
	}
	return plans
}

func includedAddOns(planType string) []string {
	if planType == entity.PlanComprehensivePlus {
		return []string{"zero_dep", "rsa"}
	}
	return nil
}

func bundlePrice(v entity.Vehicle, idv int) int {
	sum := 0
	for _, id := range includedAddOns(entity.PlanComprehensivePlus) {
		if a, ok := findAddOn(id); ok {
			sum += addOnPrice(a, v, idv)
		}
	}
	// bundles carry a 10% discount
	return int(math.Round(float64(sum) * 0.9))
}

func total(p entity.Premium) entity.Premium {
	p.Net = p.OwnDamage + p.ThirdParty + p.AddOns + p.GarageLoading - p.NcbDiscount
	p.GST = int(math.Round(float64(p.Net) * gstRate))
	p.Total = p.Net + p.GST
	return p
}

func roundTo(v float64, step int) int {
	return int(math.Round(v/float64(step))) * step
}

// FormatAmount renders rupees with Indian digit grouping, e.g. ₹5,40,000.
func FormatAmount(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.Itoa(amount)
	if len(s) <= 3 {
		return sign + "₹" + s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	out := ""
	for _, g := range groups {
		out += g + ","
	}
	return sign + "₹" + out + tail
}
