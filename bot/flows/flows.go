// Package flows assembles the product catalogs and binds the loader widgets
// of the journey to the domain services.
package flows

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"strings"

	"CoverBot/bot/journey"
	"CoverBot/bot/journey/dashboard"
	"CoverBot/bot/journey/motor"
	"CoverBot/entity"
	"CoverBot/internal/lib/sl"
	"CoverBot/internal/service/pricing"

	"github.com/google/uuid"
)

// VehicleService looks vehicles up by registration number.
type VehicleService interface {
	Lookup(ctx context.Context, vehicleType, registration string) (entity.Vehicle, bool, error)
}

// MotorInitialData merges the journey fields with the empty dashboard drafts.
func MotorInitialData() journey.Patch {
	p := motor.InitialData()
	maps.Copy(p, dashboard.InitialData())
	return p
}

// MotorCatalog builds and validates the motor catalog.
func MotorCatalog() (*journey.Catalog, error) {
	c := journey.NewCatalog(motor.Product, motor.Registry(), dashboard.Registry(), motor.StepFallback, MotorInitialData)
	c.SetModules(motor.Modules()...)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Loaders resolves the loader widgets of the motor journey.
type Loaders struct {
	vehicles        VehicleService
	paymentFailRate float64
	random          func() float64
	newRef          func() string
	log             *slog.Logger
}

func NewLoaders(vehicles VehicleService, paymentFailRate float64, log *slog.Logger) *Loaders {
	return &Loaders{
		vehicles:        vehicles,
		paymentFailRate: paymentFailRate,
		random:          rand.Float64,
		newRef:          uuid.NewString,
		log:             log.With(sl.Module("flows.loaders")),
	}
}

// WithRandom replaces the source used to simulate payment failures.
func (l *Loaders) WithRandom(random func() float64) *Loaders {
	l.random = random
	return l
}

// Options registers the loaders with an engine.
func (l *Loaders) Options() []journey.EngineOption {
	return []journey.EngineOption{
		journey.WithResolver(journey.WidgetVehicleFetch, journey.ResolverFunc(l.FetchVehicle)),
		journey.WithResolver(journey.WidgetPlanCalculator, journey.ResolverFunc(l.CalculatePlans)),
		journey.WithResolver(journey.WidgetPayment, journey.ResolverFunc(l.Pay)),
	}
}

// FetchVehicle looks up the registration number. Registry failures are not
// errors: the journey continues with manual entry.
func (l *Loaders) FetchVehicle(ctx context.Context, _ *journey.Step, s *journey.State) (journey.Response, error) {
	reg := s.GetString(motor.KeyRegistration)
	v, found, err := l.vehicles.Lookup(ctx, s.GetString(motor.KeyVehicleType), reg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.log.Warn("vehicle lookup failed",
			slog.String("journey_id", s.ID),
			slog.String("registration", reg),
			sl.Err(err),
		)
		return journey.VehicleLookup{Found: false}, nil
	}
	return journey.VehicleLookup{Found: found, Vehicle: v}, nil
}

// CalculatePlans quotes every plan for the journey's vehicle and policy history.
func (l *Loaders) CalculatePlans(_ context.Context, _ *journey.Step, s *journey.State) (journey.Response, error) {
	plans := pricing.Plans(motor.PricingInput(s))
	if len(plans) == 0 {
		return nil, fmt.Errorf("no plans for %s", s.GetString(motor.KeyVehicleType))
	}
	return journey.Quotes{Plans: plans}, nil
}

// Pay simulates the payment gateway.
func (l *Loaders) Pay(_ context.Context, _ *journey.Step, s *journey.State) (journey.Response, error) {
	ref := "pay_" + strings.ReplaceAll(l.newRef(), "-", "")
	ok := l.random() >= l.paymentFailRate
	l.log.Info("payment processed",
		slog.String("journey_id", s.ID),
		slog.String("reference", ref),
		slog.Bool("ok", ok),
		slog.Int("amount", motor.CurrentPremium(s).Total),
	)
	return journey.Payment{Reference: ref, OK: ok}, nil
}
