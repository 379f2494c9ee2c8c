package motor

import (
	"fmt"
	"strings"

	"CoverBot/bot/journey"
	"CoverBot/internal/service/pricing"
)

// PolicyNumber derives the policy number from the issue date and payment reference.
func PolicyNumber(s *journey.State, reference string) string {
	ref := strings.ToUpper(strings.ReplaceAll(reference, "-", ""))
	if len(ref) > 6 {
		ref = ref[len(ref)-6:]
	}
	return fmt.Sprintf("MOT-%s-%s", s.Now.Format("20060102"), ref)
}

func paymentSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepPaymentSummary,
			Module: ModulePayment,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				plan, _ := selectedPlan(s)
				return journey.Script{
					BotMessages: []string{
						fmt.Sprintf("All set, %s. %s for your %s.", s.GetString(KeyUserName), plan.Name, vehicleOf(s).DisplayName()),
						"Total payable: " + pricing.FormatAmount(CurrentPremium(s).Total),
					},
					Options: []journey.Option{
						{ID: "pay", Label: "Pay now"},
						{ID: "expert", Label: "Talk to an expert first"},
					},
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				if journey.ChoiceID(r) == "expert" {
					return journey.Patch{journey.KeyShowExpertPanel: true}
				}
				return nil
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "expert" {
					return StepExpert
				}
				return StepPaymentProcessing
			},
			Targets: []journey.StepID{StepExpert, StepPaymentProcessing},
		},
		{
			ID:          StepPaymentProcessing,
			Module:      ModulePayment,
			Widget:      journey.WidgetPayment,
			AutoAdvance: paymentDelay,
			Quiet:       true,
			Script: func(*journey.State) journey.Script {
				return journey.Say("Processing your payment securely...")
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				p, _ := r.(journey.Payment)
				patch := journey.Patch{
					KeyPaymentRef:      p.Reference,
					KeyPaymentAttempts: s.GetInt(KeyPaymentAttempts) + 1,
				}
				if p.OK {
					patch[KeyPolicyNumber] = PolicyNumber(s, p.Reference)
					patch[KeyPolicyIssuedAt] = s.Now
				}
				return patch
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if p, ok := r.(journey.Payment); ok && p.OK {
					return StepPaymentSuccess
				}
				return StepPaymentFailed
			},
			Targets: []journey.StepID{StepPaymentSuccess, StepPaymentFailed},
		},
		{
			ID:     StepPaymentFailed,
			Module: ModulePayment,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"The payment didn't go through. No money was deducted."},
					Options: []journey.Option{
						{ID: "retry", Label: "Try again"},
						{ID: "expert", Label: "Get help from an expert"},
					},
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				if journey.ChoiceID(r) == "expert" {
					return journey.Patch{journey.KeyShowExpertPanel: true}
				}
				return nil
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "expert" {
					return StepExpert
				}
				return StepPaymentProcessing
			},
			Targets: []journey.StepID{StepExpert, StepPaymentProcessing},
		},
		{
			ID:     StepPaymentSuccess,
			Module: ModulePayment,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				return journey.Say(
					"Payment received! 🎉",
					fmt.Sprintf("Your policy %s is active from today. The documents are on their way to %s.",
						s.GetString(KeyPolicyNumber), s.GetString(KeyEmail)),
				)
			},
			To: StepDashboard,
		},
	}
}

func supportSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepExpert,
			Module: ModuleSupport,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				phone := s.GetString(KeyPhone)
				if phone == "" {
					return journey.Say("One of our experts will reach out shortly. You can also use the expert panel to call us.")
				}
				return journey.Say("One of our experts will call you on " + phone + " within 30 minutes.")
			},
		},
		{
			ID:     StepFallback,
			Module: ModuleSupport,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("Sorry, something went wrong on our side. I'm handing you over to a human expert.")
			},
			To: StepExpert,
		},
	}
}
