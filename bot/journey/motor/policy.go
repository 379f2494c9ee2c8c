package motor

import (
	"fmt"
	"strconv"

	"CoverBot/bot/journey"
	"CoverBot/entity"
	"CoverBot/internal/service/pricing"
)

var insurers = []string{
	"HDFC ERGO", "ICICI Lombard", "Bajaj Allianz", "Tata AIG",
	"New India Assurance", "Digit", "Other",
}

func ncbOptions(from int) []journey.Option {
	var opts []journey.Option
	for _, n := range pricing.NcbSlabs() {
		if n < from {
			continue
		}
		opts = append(opts, journey.Option{ID: strconv.Itoa(n), Label: fmt.Sprintf("%d%%", n)})
	}
	return opts
}

func withPrevious(s *journey.State, update func(p *entity.PreviousPolicy)) journey.Patch {
	p := previousPolicy(s)
	update(&p)
	return journey.Patch{KeyPreviousPolicy: p}
}

func policySteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepPolicyStatus,
			Module: ModulePolicy,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{fmt.Sprintf("What's the status of your %s's current policy?", vehicleNoun(s))},
					Options: []journey.Option{
						{ID: entity.PolicyActive, Label: "Still active"},
						{ID: entity.PolicyExpiredRecent, Label: "Expired in the last 90 days"},
						{ID: entity.PolicyExpiredLong, Label: "Expired more than 90 days ago"},
						{ID: entity.PolicyUnknown, Label: "I'm not sure"},
					},
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				status := journey.ChoiceID(r)
				patch := withPrevious(s, func(p *entity.PreviousPolicy) { p.Status = status })
				if status == entity.PolicyExpiredLong || status == entity.PolicyUnknown {
					patch[KeyNewNcb] = 0
					patch[KeyNcbIncreased] = false
				}
				return patch
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				switch journey.ChoiceID(r) {
				case entity.PolicyExpiredLong, entity.PolicyUnknown:
					return StepPolicyExpired
				default:
					return StepInsurer
				}
			},
			Targets: []journey.StepID{StepPolicyExpired, StepInsurer},
		},
		{
			ID:     StepPolicyExpired,
			Module: ModulePolicy,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say(
					"Got it. When a policy lapses for more than 90 days the No Claim Bonus resets to zero, and we may need a quick video inspection.",
					"You can still buy a fresh policy right now.",
				)
			},
			To: StepPolicySummary,
		},
		{
			ID:     StepInsurer,
			Module: ModulePolicy,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				opts := make([]journey.Option, 0, len(insurers))
				for _, name := range insurers {
					opts = append(opts, journey.Option{ID: name, Label: name})
				}
				return journey.Script{
					BotMessages: []string{"Who is your current insurer?"},
					Options:     opts,
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				insurer := journey.ChoiceID(r)
				return withPrevious(s, func(p *entity.PreviousPolicy) { p.Insurer = insurer })
			},
			To: StepPolicyType,
		},
		{
			ID:     StepPolicyType,
			Module: ModulePolicy,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"What kind of policy is it?"},
					Options: []journey.Option{
						{ID: entity.PlanComprehensive, Label: "Comprehensive", Description: "Covers your vehicle and third parties"},
						{ID: entity.PlanThirdParty, Label: "Third party only", Description: "The legal minimum"},
					},
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				kind := journey.ChoiceID(r)
				return withPrevious(s, func(p *entity.PreviousPolicy) { p.Type = kind })
			},
			To: StepClaimMade,
		},
		{
			ID:     StepClaimMade,
			Module: ModulePolicy,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Did you make a claim during this policy year?"},
					Options:     yesNo,
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				claimed := journey.ChoiceID(r) == "yes"
				patch := withPrevious(s, func(p *entity.PreviousPolicy) { p.ClaimMade = claimed })
				if claimed {
					patch[KeyNewNcb] = 0
					patch[KeyNcbIncreased] = false
				}
				return patch
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "yes" {
					return StepClaimNotice
				}
				return StepNcbCurrent
			},
			Targets: []journey.StepID{StepClaimNotice, StepNcbCurrent},
		},
		{
			ID:     StepClaimNotice,
			Module: ModulePolicy,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("Thanks for being upfront. A claim resets your No Claim Bonus, so your new policy starts at 0% NCB.")
			},
			To: StepPolicySummary,
		},
		{
			ID:     StepNcbCurrent,
			Module: ModulePolicy,
			Widget: journey.WidgetSelection,
			// third party policies earn no bonus
			Condition: func(s *journey.State) bool {
				return previousPolicy(s).Type == entity.PlanComprehensive
			},
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"What No Claim Bonus does your current policy show?"},
					SubText:     "You'll find it on the first page of your policy schedule.",
					Options:     ncbOptions(0),
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				ncb, err := strconv.Atoi(journey.ChoiceID(r))
				if err != nil {
					return nil
				}
				return withPrevious(s, func(p *entity.PreviousPolicy) { p.NcbPercentage = ncb })
			},
			To: StepNcbConfirm,
		},
		{
			ID:     StepNcbConfirm,
			Module: ModulePolicy,
			Widget: journey.WidgetSelection,
			Condition: func(s *journey.State) bool {
				return previousPolicy(s).Type == entity.PlanComprehensive
			},
			Script: func(s *journey.State) journey.Script {
				prev := previousPolicy(s).NcbPercentage
				return journey.Script{
					BotMessages: []string{fmt.Sprintf(
						"A claim-free year usually lifts your bonus from %d%% to %d%%. Which NCB does your renewal notice show?",
						prev, pricing.NextNcb(prev),
					)},
					Options: ncbOptions(prev),
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				ncb, err := strconv.Atoi(journey.ChoiceID(r))
				if err != nil {
					return nil
				}
				return journey.Patch{
					KeyNewNcb:       ncb,
					KeyNcbIncreased: ncb > previousPolicy(s).NcbPercentage,
				}
			},
			Next: func(_ journey.Response, s *journey.State) journey.StepID {
				if s.GetBool(KeyNcbIncreased) {
					return StepNcbReward
				}
				return StepPolicySummary
			},
			Targets: []journey.StepID{StepNcbReward, StepPolicySummary},
		},
		{
			ID:     StepNcbReward,
			Module: ModulePolicy,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				return journey.Say(fmt.Sprintf(
					"Well done, %s! Your No Claim Bonus goes up to %d%%. That comes straight off your own damage premium.",
					s.GetString(KeyUserName), s.GetInt(KeyNewNcb),
				))
			},
			To: StepPolicySummary,
		},
		{
			ID:     StepPolicySummary,
			Module: ModulePolicy,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				prev := previousPolicy(s)
				insurer := prev.Insurer
				if insurer == "" {
					insurer = "your previous insurer"
				}
				return journey.Say(
					fmt.Sprintf("Here's what I have: %s, moving from %s with %d%% NCB.", vehicleOf(s).DisplayName(), insurer, s.GetInt(KeyNewNcb)),
					"Let me find you the best plans.",
				)
			},
			To: StepCalculating,
		},
	}
}
