package motor

import (
	"fmt"
	"slices"
	"strconv"

	"CoverBot/bot/journey"
	"CoverBot/entity"
	"CoverBot/internal/service/vehicle"
)

func vehicleSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepVehicleType,
			Module: ModuleVehicle,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"What are we insuring today?"},
					Options: []journey.Option{
						{ID: entity.VehicleCar, Label: "Car"},
						{ID: entity.VehicleBike, Label: "Bike or scooter"},
					},
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyVehicleType: journey.ChoiceID(r)}
			},
			To: StepBrandNew,
		},
		{
			ID:     StepBrandNew,
			Module: ModuleVehicle,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{fmt.Sprintf("Is it a brand new %s, yet to be registered?", vehicleNoun(s))},
					Options:     yesNo,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyIsBrandNew: journey.ChoiceID(r) == "yes"}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "yes" {
					return StepManualBrand
				}
				return StepRegistration
			},
			Targets: []journey.StepID{StepManualBrand, StepRegistration},
		},
		{
			ID:     StepRegistration,
			Module: ModuleVehicle,
			Widget: journey.WidgetText,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{fmt.Sprintf("What's your %s's registration number? I'll fetch the details for you.", vehicleNoun(s))},
					Placeholder: "e.g. MH 02 AB 1234",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				reg := vehicle.NormalizeRegistration(journey.TextValue(r))
				if !vehicle.ValidRegistration(reg) {
					return nil
				}
				return journey.Patch{KeyRegistration: reg}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if !vehicle.ValidRegistration(journey.TextValue(r)) {
					return StepRegistrationInvalid
				}
				return StepFetching
			},
			Targets: []journey.StepID{StepRegistrationInvalid, StepFetching},
		},
		{
			ID:     StepRegistrationInvalid,
			Module: ModuleVehicle,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("That registration number doesn't look right. It usually reads like MH 02 AB 1234.")
			},
			To: StepRegistration,
		},
		{
			ID:          StepFetching,
			Module:      ModuleVehicle,
			Widget:      journey.WidgetVehicleFetch,
			AutoAdvance: loaderDelay,
			Quiet:       true,
			Script: func(s *journey.State) journey.Script {
				return journey.Say("Fetching details for " + s.GetString(KeyRegistration) + " from the registry...")
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				lookup, ok := r.(journey.VehicleLookup)
				if !ok || !lookup.Found {
					return journey.Patch{KeyVehicleFetched: false}
				}
				v := lookup.Vehicle
				v.Type = s.GetString(KeyVehicleType)
				return journey.Patch{KeyVehicleFetched: true, KeyVehicle: v}
			},
			Next: func(_ journey.Response, s *journey.State) journey.StepID {
				if s.GetBool(KeyVehicleFetched) {
					return StepConfirmVehicle
				}
				return StepFetchFailed
			},
			Targets: []journey.StepID{StepConfirmVehicle, StepFetchFailed},
		},
		{
			ID:     StepFetchFailed,
			Module: ModuleVehicle,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("The registry isn't responding right now. No worries, let's pick your vehicle manually.")
			},
			To: StepManualBrand,
		},
		{
			ID:     StepConfirmVehicle,
			Module: ModuleVehicle,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				v := vehicleOf(s)
				return journey.Script{
					BotMessages: []string{
						"Found it!",
						fmt.Sprintf("%s, %s, registered in %d. Is this your %s?", v.DisplayName(), v.Fuel, v.Year, vehicleNoun(s)),
					},
					Options: []journey.Option{
						{ID: "yes", Label: "Yes, that's it"},
						{ID: "no", Label: "No, let me pick"},
					},
				}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "yes" {
					return StepCngKit
				}
				return StepManualBrand
			},
			Targets: []journey.StepID{StepCngKit, StepManualBrand},
		},
		{
			ID:     StepManualBrand,
			Module: ModuleVehicle,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				brands := vehicle.Brands(s.GetString(KeyVehicleType))
				opts := make([]journey.Option, 0, len(brands))
				for _, b := range brands {
					opts = append(opts, journey.Option{ID: b, Label: b})
				}
				return journey.Script{
					BotMessages: []string{"Which brand is it?"},
					Options:     opts,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyManualBrand: journey.ChoiceID(r)}
			},
			To: StepManualModel,
		},
		{
			ID:     StepManualModel,
			Module: ModuleVehicle,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				models := vehicle.Models(s.GetString(KeyVehicleType), s.GetString(KeyManualBrand))
				opts := make([]journey.Option, 0, len(models))
				for _, m := range models {
					opts = append(opts, journey.Option{ID: m.Model, Label: m.Model, Description: m.Variant + " " + m.Fuel})
				}
				return journey.Script{
					BotMessages: []string{"And the model?"},
					Options:     opts,
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				v, ok := vehicle.Find(s.GetString(KeyVehicleType), s.GetString(KeyManualBrand), journey.ChoiceID(r))
				if !ok {
					return nil
				}
				v.Registration = s.GetString(KeyRegistration)
				if s.GetBool(KeyIsBrandNew) {
					v.Year = s.Now.Year()
				} else {
					v.Year = vehicleOf(s).Year
				}
				return journey.Patch{KeyVehicle: v}
			},
			To: StepManualYear,
		},
		{
			ID:     StepManualYear,
			Module: ModuleVehicle,
			Widget: journey.WidgetSelection,
			Condition: func(s *journey.State) bool {
				return !s.GetBool(KeyIsBrandNew)
			},
			Script: func(s *journey.State) journey.Script {
				opts := make([]journey.Option, 0, 15)
				for y := s.Now.Year(); y > s.Now.Year()-15; y-- {
					opts = append(opts, journey.Option{ID: strconv.Itoa(y), Label: strconv.Itoa(y)})
				}
				return journey.Script{
					BotMessages: []string{"Which year was it registered?"},
					Options:     opts,
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				year, err := strconv.Atoi(journey.ChoiceID(r))
				if err != nil {
					return nil
				}
				v := vehicleOf(s)
				v.Year = year
				return journey.Patch{KeyVehicle: v}
			},
			To: StepCngKit,
		},
		{
			ID:     StepCngKit,
			Module: ModuleVehicle,
			Widget: journey.WidgetSelection,
			// only petrol and diesel cars can carry an aftermarket kit
			Condition: func(s *journey.State) bool {
				return isCar(s) && slices.Contains([]string{entity.FuelPetrol, entity.FuelDiesel}, vehicleOf(s).Fuel)
			},
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Does your car have an externally fitted CNG or LPG kit?"},
					SubText:     "Kits fitted after purchase need to be declared for claims to be paid.",
					Options:     yesNo,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyHasCngKit: journey.ChoiceID(r) == "yes"}
			},
			To: StepCommercialCheck,
		},
		{
			ID:     StepCommercialCheck,
			Module: ModuleVehicle,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{fmt.Sprintf("How do you use your %s?", vehicleNoun(s))},
					Options: []journey.Option{
						{ID: "personal", Label: "Personal use"},
						{ID: "commercial", Label: "Commercial use", Description: "Taxi, delivery, rentals"},
					},
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				usage := journey.ChoiceID(r)
				patch := journey.Patch{KeyUsage: usage}
				if usage == "commercial" {
					patch[journey.KeyShowExpertPanel] = true
				}
				return patch
			},
			Next: func(r journey.Response, s *journey.State) journey.StepID {
				switch {
				case journey.ChoiceID(r) == "commercial":
					return StepCommercialRejected
				case s.GetBool(KeyIsBrandNew):
					return StepCalculating
				default:
					return StepPolicyStatus
				}
			},
			Targets: []journey.StepID{StepCommercialRejected, StepCalculating, StepPolicyStatus},
		},
		{
			// dead end: commercial vehicles are sold offline
			ID:     StepCommercialRejected,
			Module: ModuleVehicle,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say(
					"Sorry, commercial vehicles can't be insured online yet.",
					"Our experts handle these personally. Reach out using the panel on the right.",
				)
			},
		},
	}
}

func vehicleNoun(s *journey.State) string {
	if s.GetString(KeyVehicleType) == entity.VehicleBike {
		return "bike"
	}
	return "car"
}
