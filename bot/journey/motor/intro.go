package motor

import (
	"strings"

	"CoverBot/bot/journey"
)

func introSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepWelcome,
			Module: ModuleIntro,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say(
					"Hi! I'm Cover, your motor insurance assistant.",
					"I'll get you a policy in about three minutes. No paperwork, no calls.",
				)
			},
			To: StepName,
		},
		{
			ID:     StepName,
			Module: ModuleIntro,
			Widget: journey.WidgetText,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"First things first, what should I call you?"},
					Placeholder: "Your first name",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyUserName: strings.TrimSpace(journey.TextValue(r))}
			},
			To: StepPhone,
		},
		{
			ID:     StepPhone,
			Module: ModuleIntro,
			Widget: journey.WidgetText,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Nice to meet you, " + s.GetString(KeyUserName) + "! Which mobile number can we reach you on?"},
					SubText:     "We'll send your policy documents here.",
					Placeholder: "10 digit mobile number",
					InputType:   "tel",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				text := journey.TextValue(r)
				if !journey.IsValidPhone(text) {
					return nil
				}
				return journey.Patch{KeyPhone: journey.NormalizePhone(text)}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if !journey.IsValidPhone(journey.TextValue(r)) {
					return StepPhoneInvalid
				}
				return StepVehicleType
			},
			Targets: []journey.StepID{StepPhoneInvalid, StepVehicleType},
		},
		{
			ID:     StepPhoneInvalid,
			Module: ModuleIntro,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("Hmm, that doesn't look like an Indian mobile number. It should be 10 digits starting with 6, 7, 8 or 9.")
			},
			To: StepPhone,
		},
	}
}
