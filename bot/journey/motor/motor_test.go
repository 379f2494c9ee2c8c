package motor_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"CoverBot/bot/journey"
	"CoverBot/bot/journey/motor"
	"CoverBot/entity"
	"CoverBot/internal/service/pricing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

var swift = entity.Vehicle{
	Type: entity.VehicleCar, Brand: "Maruti Suzuki", Model: "Swift", Variant: "VXi",
	Fuel: entity.FuelPetrol, EngineCC: 1197, Year: 2022, ExShowroom: 700000,
}

var activa = entity.Vehicle{
	Type: entity.VehicleBike, Brand: "Honda", Model: "Activa 6G",
	Fuel: entity.FuelPetrol, EngineCC: 109, Year: 2021, ExShowroom: 80000,
}

func catalog() *journey.Catalog {
	dashboard := journey.NewRegistry("dashboard", motor.StepDashboard, journey.Step{
		ID:     motor.StepDashboard,
		Module: "dashboard",
		Widget: journey.WidgetNone,
		Script: func(*journey.State) journey.Script { return journey.Say("Welcome to your dashboard") },
	})
	return journey.NewCatalog(motor.Product, motor.Registry(), dashboard, motor.StepFallback, motor.InitialData)
}

type harness struct {
	engine   *journey.Engine
	payments []bool
}

func newHarness(t *testing.T, v entity.Vehicle) *harness {
	t.Helper()
	h := &harness{}
	fetch := journey.ResolverFunc(func(context.Context, *journey.Step, *journey.State) (journey.Response, error) {
		return journey.VehicleLookup{Found: true, Vehicle: v}, nil
	})
	calc := journey.ResolverFunc(func(_ context.Context, _ *journey.Step, s *journey.State) (journey.Response, error) {
		return journey.Quotes{Plans: pricing.Plans(motor.PricingInput(s))}, nil
	})
	pay := journey.ResolverFunc(func(context.Context, *journey.Step, *journey.State) (journey.Response, error) {
		ok := true
		if len(h.payments) > 0 {
			ok, h.payments = h.payments[0], h.payments[1:]
		}
		return journey.Payment{Reference: "ref-00a1b2c3", OK: ok}, nil
	})
	h.engine = journey.NewEngine(journey.NewMemoryStorage(), slog.New(slog.NewTextHandler(io.Discard, nil)),
		journey.WithPacer(journey.NoPacer{}),
		journey.WithClock(func() time.Time { return now }),
		journey.WithResolver(journey.WidgetVehicleFetch, fetch),
		journey.WithResolver(journey.WidgetPlanCalculator, calc),
		journey.WithResolver(journey.WidgetPayment, pay),
	)
	c := catalog()
	require.NoError(t, c.Validate())
	h.engine.RegisterCatalog(c)
	return h
}

func (h *harness) start(t *testing.T) *journey.State {
	t.Helper()
	s, err := h.engine.Start(context.Background(), motor.Product, "j1")
	require.NoError(t, err)
	return s
}

func (h *harness) answer(t *testing.T, r journey.Response) *journey.State {
	t.Helper()
	s, err := h.engine.Respond(context.Background(), motor.Product, "j1", r)
	require.NoError(t, err)
	return s
}

// toUsage walks from the welcome message to the commercial usage question.
func (h *harness) toUsage(t *testing.T, vehicleType string) *journey.State {
	t.Helper()
	s := h.start(t)
	require.Equal(t, motor.StepName, s.CurrentStep)
	h.answer(t, journey.Text{Value: "Asha"})
	s = h.answer(t, journey.Text{Value: "98765 43210"})
	require.Equal(t, motor.StepVehicleType, s.CurrentStep)
	assert.Equal(t, "+919876543210", s.GetString(motor.KeyPhone))
	h.answer(t, journey.Choice{ID: vehicleType})
	h.answer(t, journey.Choice{ID: "no"})
	s = h.answer(t, journey.Text{Value: "mh 02 ab 1234"})
	require.Equal(t, motor.StepConfirmVehicle, s.CurrentStep)
	assert.Equal(t, "MH02AB1234", s.GetString(motor.KeyRegistration))
	s = h.answer(t, journey.Choice{ID: "yes"})
	if s.CurrentStep == motor.StepCngKit {
		s = h.answer(t, journey.Choice{ID: "no"})
	}
	return s
}

// toPlans continues from the usage question to the plan cards with a 20% to 35% NCB renewal.
func (h *harness) toPlans(t *testing.T) *journey.State {
	t.Helper()
	h.answer(t, journey.Choice{ID: "personal"})
	h.answer(t, journey.Choice{ID: entity.PolicyActive})
	h.answer(t, journey.Choice{ID: "Digit"})
	h.answer(t, journey.Choice{ID: entity.PlanComprehensive})
	h.answer(t, journey.Choice{ID: "no"})
	h.answer(t, journey.Choice{ID: "20"})
	s := h.answer(t, journey.Choice{ID: "35"})
	require.Equal(t, motor.StepPlans, s.CurrentStep)
	return s
}

func TestBikeSkipsCngQuestion(t *testing.T) {
	h := newHarness(t, activa)
	s := h.toUsage(t, entity.VehicleBike)

	assert.Equal(t, motor.StepCommercialCheck, s.CurrentStep)
	assert.Equal(t, journey.StatusAwaiting, s.Status)
	for _, e := range s.Transcript {
		assert.NotEqual(t, motor.StepCngKit, e.StepID)
	}
}

func TestCarAsksCngQuestion(t *testing.T) {
	h := newHarness(t, swift)
	h.start(t)
	h.answer(t, journey.Text{Value: "Asha"})
	h.answer(t, journey.Text{Value: "9876543210"})
	h.answer(t, journey.Choice{ID: entity.VehicleCar})
	h.answer(t, journey.Choice{ID: "no"})
	h.answer(t, journey.Text{Value: "MH02AB1234"})
	s := h.answer(t, journey.Choice{ID: "yes"})
	assert.Equal(t, motor.StepCngKit, s.CurrentStep)
}

func TestInvalidPhoneLoopsBack(t *testing.T) {
	h := newHarness(t, swift)
	h.start(t)
	h.answer(t, journey.Text{Value: "Asha"})
	s := h.answer(t, journey.Text{Value: "12345"})

	assert.Equal(t, motor.StepPhone, s.CurrentStep)
	assert.Equal(t, "", s.GetString(motor.KeyPhone))
	assert.Contains(t, s.Transcript[len(s.Transcript)-2].Text, "doesn't look")
}

func TestCommercialUseIsADeadEnd(t *testing.T) {
	h := newHarness(t, swift)
	h.toUsage(t, entity.VehicleCar)
	s := h.answer(t, journey.Choice{ID: "commercial"})

	assert.Equal(t, motor.StepCommercialRejected, s.CurrentStep)
	assert.Equal(t, journey.StatusIdle, s.Status)
	assert.True(t, s.ShowExpertPanel)

	_, err := h.engine.Respond(context.Background(), motor.Product, "j1", journey.Choice{ID: "personal"})
	assert.ErrorIs(t, err, journey.ErrNotAwaiting)
}

func TestNcbRenewalIsRewarded(t *testing.T) {
	h := newHarness(t, swift)
	h.toUsage(t, entity.VehicleCar)
	s := h.toPlans(t)

	assert.Equal(t, 35, s.GetInt(motor.KeyNewNcb))
	assert.True(t, s.GetBool(motor.KeyNcbIncreased))

	var rewarded bool
	for _, e := range s.Transcript {
		if e.StepID == motor.StepNcbReward {
			rewarded = true
			assert.Contains(t, e.Text, "35%")
		}
	}
	assert.True(t, rewarded)

	prev, ok := journey.Get[entity.PreviousPolicy](s, motor.KeyPreviousPolicy)
	require.True(t, ok)
	assert.Equal(t, entity.PreviousPolicy{
		Status: entity.PolicyActive, Insurer: "Digit", Type: entity.PlanComprehensive, NcbPercentage: 20,
	}, prev)
}

func TestClaimResetsNcb(t *testing.T) {
	h := newHarness(t, swift)
	h.toUsage(t, entity.VehicleCar)
	h.answer(t, journey.Choice{ID: "personal"})
	h.answer(t, journey.Choice{ID: entity.PolicyActive})
	h.answer(t, journey.Choice{ID: "Digit"})
	h.answer(t, journey.Choice{ID: entity.PlanComprehensive})
	s := h.answer(t, journey.Choice{ID: "yes"})

	assert.Equal(t, motor.StepPlans, s.CurrentStep)
	assert.Equal(t, 0, s.GetInt(motor.KeyNewNcb))
}

func TestThirdPartyGoesStraightToPersonalCover(t *testing.T) {
	h := newHarness(t, swift)
	h.toUsage(t, entity.VehicleCar)
	h.toPlans(t)

	s := h.answer(t, journey.PlanPick{Plan: entity.PlanThirdParty, GarageTier: entity.GarageNetwork})
	assert.Equal(t, motor.StepProtectEveryone, s.CurrentStep)
	assert.Equal(t, entity.PlanThirdParty, s.GetString(motor.KeySelectedPlan))
	assert.Equal(t, "Third Party (network garages)", s.Transcript[len(s.Transcript)-3].Text)
}

func TestComprehensiveAsksIDVAndAddOns(t *testing.T) {
	h := newHarness(t, swift)
	h.toUsage(t, entity.VehicleCar)
	h.toPlans(t)

	s := h.answer(t, journey.PlanPick{Plan: entity.PlanComprehensive, GarageTier: entity.GarageAny})
	require.Equal(t, motor.StepIDVAdjust, s.CurrentStep)

	idv := s.GetInt(motor.KeyIDV)
	low, _ := pricing.IDVRange(idv)
	s = h.answer(t, journey.Choice{ID: "low"})
	require.Equal(t, motor.StepOutOfPocket, s.CurrentStep)
	assert.Equal(t, low, s.GetInt(motor.KeyIDV))

	h.answer(t, journey.AddOnPick{AddOns: []string{"zero_dep"}})
	s = h.answer(t, journey.AddOnPick{AddOns: []string{"rsa"}})
	require.Equal(t, motor.StepReview, s.CurrentStep)
	assert.Equal(t, []string{"zero_dep", "rsa"}, s.GetStrings(motor.KeySelectedAddOns))

	// changing the out of pocket pick keeps the personal cover pick
	h.answer(t, journey.Choice{ID: "change_addons"})
	s = h.answer(t, journey.AddOnPick{})
	assert.Equal(t, motor.StepProtectEveryone, s.CurrentStep)
	assert.Equal(t, []string{"rsa"}, s.GetStrings(motor.KeySelectedAddOns))
}

func (h *harness) toPayment(t *testing.T) *journey.State {
	t.Helper()
	h.toUsage(t, entity.VehicleCar)
	h.toPlans(t)
	h.answer(t, journey.PlanPick{Plan: entity.PlanThirdParty, GarageTier: entity.GarageNetwork})
	s := h.answer(t, journey.AddOnPick{AddOns: []string{"pa_owner"}})
	require.Equal(t, motor.StepReview, s.CurrentStep)
	s = h.answer(t, journey.Choice{ID: "proceed"})
	require.Equal(t, motor.StepOwnerName, s.CurrentStep)
	h.answer(t, journey.Text{Value: "Asha Rao"})
	s = h.answer(t, journey.Text{Value: "not-an-email"})
	require.Equal(t, motor.StepEmail, s.CurrentStep)
	h.answer(t, journey.Text{Value: "Asha@Example.com"})
	h.answer(t, journey.Text{Value: "Ravi Rao"})
	h.answer(t, journey.Choice{ID: "spouse"})
	s = h.answer(t, journey.Text{Value: "12 MG Road, Pune 411001"})
	require.Equal(t, motor.StepPaymentSummary, s.CurrentStep)
	return s
}

func TestPaymentSuccessOpensDashboard(t *testing.T) {
	h := newHarness(t, swift)
	h.toPayment(t)
	s := h.answer(t, journey.Choice{ID: "pay"})

	assert.Equal(t, motor.StepDashboard, s.CurrentStep)
	assert.Equal(t, journey.StatusIdle, s.Status)
	assert.Equal(t, "asha@example.com", s.GetString(motor.KeyEmail))
	assert.Equal(t, "MOT-20260115-A1B2C3", s.GetString(motor.KeyPolicyNumber))
	assert.Equal(t, 1, s.GetInt(motor.KeyPaymentAttempts))

	premium, ok := journey.Get[entity.Premium](s, motor.KeyPremium)
	require.True(t, ok)
	assert.Positive(t, premium.Total)
	assert.Zero(t, premium.OwnDamage)
}

func TestPaymentFailureOffersRetry(t *testing.T) {
	h := newHarness(t, swift)
	h.payments = []bool{false, true}
	h.toPayment(t)

	s := h.answer(t, journey.Choice{ID: "pay"})
	require.Equal(t, motor.StepPaymentFailed, s.CurrentStep)
	assert.Equal(t, 1, s.GetInt(motor.KeyPaymentAttempts))
	assert.Empty(t, s.GetString(motor.KeyPolicyNumber))

	s = h.answer(t, journey.Choice{ID: "retry"})
	assert.Equal(t, motor.StepDashboard, s.CurrentStep)
	assert.Equal(t, 2, s.GetInt(motor.KeyPaymentAttempts))
}

func TestTalkToExpertBeforePaying(t *testing.T) {
	h := newHarness(t, swift)
	h.toPayment(t)
	s := h.answer(t, journey.Choice{ID: "expert"})

	assert.Equal(t, motor.StepExpert, s.CurrentStep)
	assert.Equal(t, journey.StatusIdle, s.Status)
	assert.True(t, s.ShowExpertPanel)
	assert.Contains(t, s.Transcript[len(s.Transcript)-1].Text, "+919876543210")
}

func TestJourneyIsDeterministic(t *testing.T) {
	run := func() *journey.State {
		h := newHarness(t, swift)
		h.toPayment(t)
		return h.answer(t, journey.Choice{ID: "pay"})
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("journeys differ (-first +second):\n%s", diff)
	}
}

func TestEditVehicleTypeReplaysLaterAnswers(t *testing.T) {
	h := newHarness(t, swift)
	h.toUsage(t, entity.VehicleCar)

	s, err := h.engine.Edit(context.Background(), motor.Product, "j1", motor.StepVehicleType, journey.Choice{ID: entity.VehicleBike})
	require.NoError(t, err)

	assert.Equal(t, motor.StepBrandNew, s.CurrentStep)
	assert.Equal(t, entity.VehicleBike, s.GetString(motor.KeyVehicleType))
	assert.Equal(t, "Asha", s.GetString(motor.KeyUserName))
	assert.Equal(t, "", s.GetString(motor.KeyRegistration))
}

func TestRegistryValidates(t *testing.T) {
	c := catalog()
	require.NoError(t, c.Validate())
	c.SetModules(motor.Modules()...)
	assert.Equal(t, 100, c.Progress(motor.ModulePayment))
}
