package motor

import (
	"fmt"
	"strings"

	"CoverBot/bot/journey"
	"CoverBot/entity"
	"CoverBot/internal/service/pricing"
)

func planLabel(p entity.Plan) string {
	return fmt.Sprintf("%s, %s/yr", p.Name, pricing.FormatAmount(p.Premium.Total))
}

func quoteSteps() []journey.Step {
	return []journey.Step{
		{
			ID:          StepCalculating,
			Module:      ModuleQuote,
			Widget:      journey.WidgetPlanCalculator,
			AutoAdvance: calculatorDelay,
			Quiet:       true,
			Script: func(*journey.State) journey.Script {
				return journey.Say("Comparing plans from our partner insurers...")
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				q, ok := r.(journey.Quotes)
				if !ok {
					return nil
				}
				idv := 0
				for _, p := range q.Plans {
					if p.IDV > idv {
						idv = p.IDV
					}
				}
				return journey.Patch{KeyQuotes: q.Plans, KeyIDV: idv}
			},
			To: StepPlans,
		},
		{
			ID:     StepPlans,
			Module: ModuleQuote,
			Widget: journey.WidgetPlanSelection,
			Script: func(s *journey.State) journey.Script {
				plans := quotes(s)
				opts := make([]journey.Option, 0, len(plans))
				for _, p := range plans {
					opts = append(opts, journey.Option{
						ID:          p.ID,
						Label:       p.Name,
						Description: strings.Join(p.Features, " · "),
					})
				}
				msgs := []string{fmt.Sprintf("Here are your plans, %s.", s.GetString(KeyUserName))}
				for _, p := range plans {
					msgs = append(msgs, planLabel(p))
				}
				return journey.Script{
					BotMessages: msgs,
					SubText:     "Network garages offer cashless repairs. Any garage adds 10% to the own damage premium.",
					Options:     opts,
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				pick, ok := r.(journey.PlanPick)
				if !ok {
					return nil
				}
				patch := journey.Patch{
					KeySelectedPlanID: pick.Plan,
					KeyGarageTier:     pick.GarageTier,
					KeySelectedAddOns: []string{},
				}
				for _, p := range quotes(s) {
					if p.ID == pick.Plan {
						patch[KeySelectedPlan] = p.Type
						if p.IDV > 0 {
							patch[KeyIDV] = p.IDV
						}
					}
				}
				return patch
			},
			To: StepPlanSelected,
		},
		{
			ID:     StepPlanSelected,
			Module: ModuleQuote,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				plan, _ := selectedPlan(s)
				if isThirdParty(s) {
					return journey.Say(fmt.Sprintf("%s it is. Let's make sure the people around you are protected too.", plan.Name))
				}
				return journey.Say(fmt.Sprintf("Great choice! %s covers your %s and everyone else on the road.", plan.Name, vehicleNoun(s)))
			},
			Next: func(_ journey.Response, s *journey.State) journey.StepID {
				if isThirdParty(s) {
					return StepProtectEveryone
				}
				return StepIDVAdjust
			},
			Targets: []journey.StepID{StepProtectEveryone, StepIDVAdjust},
		},
		{
			ID:     StepIDVAdjust,
			Module: ModuleQuote,
			Widget: journey.WidgetSelection,
			Condition: func(s *journey.State) bool {
				return !isThirdParty(s)
			},
			Script: func(s *journey.State) journey.Script {
				plan, _ := selectedPlan(s)
				low, high := pricing.IDVRange(plan.IDV)
				return journey.Script{
					BotMessages: []string{
						fmt.Sprintf("Your vehicle's insured value (IDV) is %s. That's what you get if it's stolen or written off.", pricing.FormatAmount(plan.IDV)),
						"Want to adjust it?",
					},
					SubText: "A higher IDV means a bigger payout and a slightly higher premium.",
					Options: []journey.Option{
						{ID: "low", Label: "Lower to " + pricing.FormatAmount(low)},
						{ID: "recommended", Label: "Keep " + pricing.FormatAmount(plan.IDV)},
						{ID: "high", Label: "Raise to " + pricing.FormatAmount(high)},
					},
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				plan, _ := selectedPlan(s)
				low, high := pricing.IDVRange(plan.IDV)
				switch journey.ChoiceID(r) {
				case "low":
					return journey.Patch{KeyIDV: low}
				case "high":
					return journey.Patch{KeyIDV: high}
				default:
					return journey.Patch{KeyIDV: plan.IDV}
				}
			},
			Next: func(_ journey.Response, s *journey.State) journey.StepID {
				if isThirdParty(s) {
					return StepProtectEveryone
				}
				return StepOutOfPocket
			},
			Targets: []journey.StepID{StepProtectEveryone, StepOutOfPocket},
		},
		{
			ID:     StepReview,
			Module: ModuleQuote,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				plan, _ := selectedPlan(s)
				p := CurrentPremium(s)
				lines := []string{
					fmt.Sprintf("Here's your %s quote:", plan.Name),
				}
				breakdown := []string{}
				if p.OwnDamage > 0 {
					breakdown = append(breakdown, "Own damage: "+pricing.FormatAmount(p.OwnDamage))
				}
				breakdown = append(breakdown, "Third party: "+pricing.FormatAmount(p.ThirdParty))
				if p.AddOns > 0 {
					breakdown = append(breakdown, "Add-ons: "+pricing.FormatAmount(p.AddOns))
				}
				if p.GarageLoading > 0 {
					breakdown = append(breakdown, "Any-garage loading: "+pricing.FormatAmount(p.GarageLoading))
				}
				if p.NcbDiscount > 0 {
					breakdown = append(breakdown, fmt.Sprintf("NCB discount (%d%%): -%s", s.GetInt(KeyNewNcb), pricing.FormatAmount(p.NcbDiscount)))
				}
				breakdown = append(breakdown, "GST (18%): "+pricing.FormatAmount(p.GST))
				lines = append(lines, strings.Join(breakdown, "\n"))
				lines = append(lines, "Total: "+pricing.FormatAmount(p.Total))
				return journey.Script{
					BotMessages: lines,
					Options: []journey.Option{
						{ID: "proceed", Label: "Looks good, continue"},
						{ID: "change_plan", Label: "Change plan"},
						{ID: "change_addons", Label: "Change add-ons"},
					},
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				if journey.ChoiceID(r) != "proceed" {
					return nil
				}
				return journey.Patch{KeyPremium: CurrentPremium(s)}
			},
			Next: func(r journey.Response, s *journey.State) journey.StepID {
				switch journey.ChoiceID(r) {
				case "change_plan":
					return StepPlans
				case "change_addons":
					if isThirdParty(s) {
						return StepProtectEveryone
					}
					return StepOutOfPocket
				default:
					return StepOwnerName
				}
			},
			Targets: []journey.StepID{StepPlans, StepProtectEveryone, StepOutOfPocket, StepOwnerName},
		},
	}
}

func addOnLabel(r journey.Response, _ *journey.State, _ journey.Script) string {
	pick, ok := r.(journey.AddOnPick)
	if !ok || len(pick.AddOns) == 0 {
		return "No add-ons"
	}
	names := make([]string, 0, len(pick.AddOns))
	for _, id := range pick.AddOns {
		names = append(names, pricing.AddOnName(id))
	}
	return strings.Join(names, ", ")
}

func addOnSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepOutOfPocket,
			Module: ModuleAddOns,
			Widget: journey.WidgetAddOnSelection,
			// own damage add-ons only make sense with own damage cover
			Condition: func(s *journey.State) bool {
				return !isThirdParty(s)
			},
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Want to avoid paying out of pocket at claim time? These add-ons cover what a standard policy doesn't."},
					SubText:     "Pick any, or skip.",
					Options:     addOnOptions(s, entity.AddOnOutOfPocket),
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				pick, _ := r.(journey.AddOnPick)
				return journey.Patch{
					KeySelectedAddOns: replaceCategory(s.GetStrings(KeySelectedAddOns), entity.AddOnOutOfPocket, pick.AddOns),
				}
			},
			Label: addOnLabel,
			To:    StepProtectEveryone,
		},
		{
			ID:     StepProtectEveryone,
			Module: ModuleAddOns,
			Widget: journey.WidgetAddOnSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Now let's protect everyone in the " + vehicleNoun(s) + ", you included."},
					Options:     addOnOptions(s, entity.AddOnProtectEveryone),
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				pick, _ := r.(journey.AddOnPick)
				return journey.Patch{
					KeySelectedAddOns: replaceCategory(s.GetStrings(KeySelectedAddOns), entity.AddOnProtectEveryone, pick.AddOns),
				}
			},
			Label: addOnLabel,
			To:    StepReview,
		},
	}
}
