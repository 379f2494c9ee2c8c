package pricing

import (
	"testing"
	"time"

	"CoverBot/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

var nexon = entity.Vehicle{
	Type: entity.VehicleCar, Brand: "Tata", Model: "Nexon", Fuel: entity.FuelPetrol,
	EngineCC: 1199, Year: 2023, ExShowroom: 1000000,
}

func TestIDV(t *testing.T) {
	// three years old: 30% depreciation
	assert.Equal(t, 700000, IDV(nexon, at))

	old := nexon
	old.Year = 2012
	assert.Equal(t, 500000, IDV(old, at))

	unknown := entity.Vehicle{Type: entity.VehicleBike, Year: 2026}
	assert.Equal(t, 85500, IDV(unknown, at))

	low, high := IDVRange(700000)
	assert.Equal(t, 630000, low)
	assert.Equal(t, 770000, high)
}

func TestThirdPartyTariff(t *testing.T) {
	assert.Equal(t, 3416, ThirdPartyPremium(nexon))
	assert.Equal(t, 714, ThirdPartyPremium(entity.Vehicle{Type: entity.VehicleBike, EngineCC: 125}))
	assert.Equal(t, 7897, ThirdPartyPremium(entity.Vehicle{Type: entity.VehicleCar, EngineCC: 1998}))
}

func TestQuoteComprehensive(t *testing.T) {
	in := Input{Vehicle: nexon, At: at, NcbPercent: 20}
	p := Quote(in, entity.PlanComprehensive, entity.GarageNetwork, 0, nil)

	assert.Equal(t, 22981, p.OwnDamage)
	assert.Equal(t, 3416, p.ThirdParty)
	assert.Equal(t, 4596, p.NcbDiscount)
	assert.Zero(t, p.GarageLoading)
	assert.Equal(t, p.OwnDamage+p.ThirdParty-p.NcbDiscount, p.Net)
	assert.Equal(t, p.Net+p.GST, p.Total)

	anyGarage := Quote(in, entity.PlanComprehensive, entity.GarageAny, 0, nil)
	assert.Equal(t, 2298, anyGarage.GarageLoading)
	assert.Greater(t, anyGarage.Total, p.Total)
}

func TestQuoteThirdPartyIgnoresOwnDamageAddOns(t *testing.T) {
	in := Input{Vehicle: nexon, At: at, NcbPercent: 50}
	p := Quote(in, entity.PlanThirdParty, entity.GarageAny, 0, []string{"zero_dep", "pa_owner"})

	assert.Zero(t, p.OwnDamage)
	assert.Zero(t, p.NcbDiscount)
	assert.Zero(t, p.GarageLoading)
	assert.Equal(t, 375, p.AddOns)
	assert.Equal(t, 3791, p.Net)
	assert.Equal(t, 682, p.GST)
}

func TestExpiredPolicyLosesNcb(t *testing.T) {
	in := Input{Vehicle: nexon, At: at, NcbPercent: 35, ExpiredLong: true}
	p := Quote(in, entity.PlanComprehensive, entity.GarageNetwork, 0, nil)
	assert.Zero(t, p.NcbDiscount)
}

func TestPlans(t *testing.T) {
	plans := Plans(Input{Vehicle: nexon, At: at})
	require.Len(t, plans, 3)
	assert.Equal(t, entity.PlanThirdParty, plans[0].Type)
	assert.Zero(t, plans[0].IDV)
	assert.Equal(t, 700000, plans[1].IDV)
	assert.Less(t, plans[0].Premium.Total, plans[1].Premium.Total)
	assert.Less(t, plans[1].Premium.Total, plans[2].Premium.Total)
	assert.Equal(t, plans[1].Premium.OwnDamage, plans[2].Premium.OwnDamage)
}

func TestAddOns(t *testing.T) {
	car := AddOns(entity.AddOnOutOfPocket, nexon, entity.PlanComprehensive, 700000)
	require.NotEmpty(t, car)
	assert.Equal(t, "zero_dep", car[0].ID)
	assert.Equal(t, 2800, car[0].Price)

	plus := AddOns(entity.AddOnOutOfPocket, nexon, entity.PlanComprehensivePlus, 700000)
	for _, a := range plus {
		assert.NotEqual(t, "zero_dep", a.ID)
	}

	assert.Empty(t, AddOns(entity.AddOnOutOfPocket, nexon, entity.PlanThirdParty, 0))

	bike := AddOns(entity.AddOnProtectEveryone, entity.Vehicle{Type: entity.VehicleBike}, entity.PlanThirdParty, 0)
	ids := make([]string, 0, len(bike))
	for _, a := range bike {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"pa_owner", "pa_passengers", "rsa"}, ids)
	assert.Equal(t, 188, bike[0].Price)
}

func TestNcbLadder(t *testing.T) {
	assert.Equal(t, 20, NextNcb(0))
	assert.Equal(t, 35, NextNcb(25))
	assert.Equal(t, 50, NextNcb(50))
	assert.Equal(t, 0, NextNcb(33))
}

func TestFormatAmount(t *testing.T) {
	for in, want := range map[int]string{
		0:        "₹0",
		999:      "₹999",
		1000:     "₹1,000",
		540000:   "₹5,40,000",
		12345678: "₹1,23,45,678",
		-2500:    "-₹2,500",
	} {
		assert.Equal(t, want, FormatAmount(in), "%d", in)
	}
}
