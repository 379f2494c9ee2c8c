package motor

import (
	"strings"

	"CoverBot/bot/journey"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(strings.TrimSpace(email), "required,email") == nil
}

func ownerSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepOwnerName,
			Module: ModuleOwner,
			Widget: journey.WidgetText,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Almost there! What's the owner's full name, exactly as on the RC?"},
					Placeholder: s.GetString(KeyUserName),
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyOwnerName: strings.TrimSpace(journey.TextValue(r))}
			},
			To: StepEmail,
		},
		{
			ID:     StepEmail,
			Module: ModuleOwner,
			Widget: journey.WidgetText,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Which email should the policy go to?"},
					Placeholder: "name@example.com",
					InputType:   "email",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				email := strings.ToLower(strings.TrimSpace(journey.TextValue(r)))
				if !validEmail(email) {
					return nil
				}
				return journey.Patch{KeyEmail: email}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if !validEmail(journey.TextValue(r)) {
					return StepEmailInvalid
				}
				return StepNomineeName
			},
			Targets: []journey.StepID{StepEmailInvalid, StepNomineeName},
		},
		{
			ID:     StepEmailInvalid,
			Module: ModuleOwner,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("That email address doesn't look complete. Could you check it?")
			},
			To: StepEmail,
		},
		{
			ID:     StepNomineeName,
			Module: ModuleOwner,
			Widget: journey.WidgetText,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Who should be the nominee for the personal accident cover?"},
					Placeholder: "Nominee's full name",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyNomineeName: strings.TrimSpace(journey.TextValue(r))}
			},
			To: StepNomineeRelation,
		},
		{
			ID:     StepNomineeRelation,
			Module: ModuleOwner,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"How is " + s.GetString(KeyNomineeName) + " related to you?"},
					Options:     NomineeRelations,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyNomineeRelation: journey.ChoiceID(r)}
			},
			To: StepAddress,
		},
		{
			ID:     StepAddress,
			Module: ModuleOwner,
			Widget: journey.WidgetText,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Last one: your communication address?"},
					Placeholder: "House, street, city, PIN",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyAddress: strings.TrimSpace(journey.TextValue(r))}
			},
			To: StepPaymentSummary,
		},
	}
}

// NomineeRelations are the relations accepted for a nominee.
var NomineeRelations = []journey.Option{
	{ID: "spouse", Label: "Spouse"},
	{ID: "parent", Label: "Parent"},
	{ID: "child", Label: "Child"},
	{ID: "sibling", Label: "Sibling"},
}
