package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"CoverBot/bot/journey"
	"CoverBot/bot/journey/motor"
	"CoverBot/entity"
	"CoverBot/internal/service/pricing"
)

var editOptions = []journey.Option{
	{ID: entity.EditAddOn, Label: "Add an add-on"},
	{ID: entity.EditNominee, Label: "Change nominee"},
	{ID: entity.EditAddress, Label: "Update address"},
}

// availableAddOns lists add-ons that can still be added to the purchased policy.
func availableAddOns(s *journey.State) []journey.Option {
	v, _ := journey.Get[entity.Vehicle](s, motor.KeyVehicle)
	planType := s.GetString(motor.KeySelectedPlan)
	owned := s.GetStrings(motor.KeySelectedAddOns)
	var opts []journey.Option
	for _, category := range []string{entity.AddOnOutOfPocket, entity.AddOnProtectEveryone} {
		for _, a := range pricing.AddOns(category, v, planType, s.GetInt(motor.KeyIDV)) {
			if slices.Contains(owned, a.ID) {
				continue
			}
			opts = append(opts, journey.Option{
				ID:          a.ID,
				Label:       a.Name + " (" + pricing.FormatAmount(a.Price) + ")",
				Description: a.Description,
			})
		}
	}
	return opts
}

// DraftEdit assembles an edit request from the draft fields.
func DraftEdit(s *journey.State) entity.EditRequest {
	return entity.EditRequest{
		PolicyNumber:    s.GetString(motor.KeyPolicyNumber),
		Type:            s.GetString(KeyEditType),
		AddOns:          s.GetStrings(KeyEditAddOns),
		NomineeName:     s.GetString(KeyEditNomineeName),
		NomineeRelation: s.GetString(KeyEditNomineeRelation),
		Address:         s.GetString(KeyEditAddress),
	}
}

func editSummary(e entity.EditRequest) string {
	switch e.Type {
	case entity.EditAddOn:
		names := make([]string, 0, len(e.AddOns))
		for _, id := range e.AddOns {
			names = append(names, pricing.AddOnName(id))
		}
		return "Add to policy: " + strings.Join(names, ", ")
	case entity.EditNominee:
		return fmt.Sprintf("New nominee: %s (%s)", e.NomineeName, optionLabel(motor.NomineeRelations, e.NomineeRelation))
	case entity.EditAddress:
		return "New address: " + e.Address
	}
	return ""
}

func editSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepEditMenu,
			Module: ModuleEdits,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"What would you like to change?"},
					Options:     append(append([]journey.Option{}, editOptions...), back),
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				if journey.ChoiceID(r) == back.ID {
					return nil
				}
				return journey.Patch{KeyEditType: journey.ChoiceID(r)}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				switch journey.ChoiceID(r) {
				case entity.EditAddOn:
					return StepEditAddOn
				case entity.EditNominee:
					return StepEditNomineeName
				case entity.EditAddress:
					return StepEditAddress
				default:
					return StepMenu
				}
			},
			Targets: []journey.StepID{StepEditAddOn, StepEditNomineeName, StepEditAddress, StepMenu},
		},
		{
			ID:     StepEditAddOn,
			Module: ModuleEdits,
			Widget: journey.WidgetAddOnSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"These add-ons can be added mid-term. The premium is charged pro rata."},
					Options:     availableAddOns(s),
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				pick, _ := r.(journey.AddOnPick)
				if len(pick.AddOns) == 0 {
					return EditDraft()
				}
				return journey.Patch{KeyEditAddOns: slices.Clone(pick.AddOns)}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if pick, ok := r.(journey.AddOnPick); ok && len(pick.AddOns) > 0 {
					return StepEditConfirm
				}
				return StepEditCancelled
			},
			Targets: []journey.StepID{StepEditConfirm, StepEditCancelled},
		},
		{
			ID:     StepEditNomineeName,
			Module: ModuleEdits,
			Widget: journey.WidgetText,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Your current nominee is " + s.GetString(motor.KeyNomineeName) + ". Who should it be instead?"},
					Placeholder: "Nominee's full name",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyEditNomineeName: strings.TrimSpace(journey.TextValue(r))}
			},
			To: StepEditNomineeRelation,
		},
		{
			ID:     StepEditNomineeRelation,
			Module: ModuleEdits,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"How is " + s.GetString(KeyEditNomineeName) + " related to you?"},
					Options:     motor.NomineeRelations,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyEditNomineeRelation: journey.ChoiceID(r)}
			},
			To: StepEditConfirm,
		},
		{
			ID:     StepEditAddress,
			Module: ModuleEdits,
			Widget: journey.WidgetText,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"What's the new address?"},
					Placeholder: "House, street, city, PIN",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyEditAddress: strings.TrimSpace(journey.TextValue(r))}
			},
			To: StepEditConfirm,
		},
		{
			ID:     StepEditConfirm,
			Module: ModuleEdits,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Shall I submit this change?", editSummary(DraftEdit(s))},
					Options: []journey.Option{
						{ID: "submit", Label: "Submit request"},
						{ID: "cancel", Label: "Cancel"},
					},
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				patch := EditDraft()
				if journey.ChoiceID(r) != "submit" {
					return patch
				}
				edits := submittedEdits(s)
				e := DraftEdit(s)
				e.ID = recordID("EDT", s, len(edits)+1)
				e.Status = entity.EditPending
				e.SubmittedAt = s.Now
				patch[KeySubmittedEdits] = append(slices.Clone(edits), e)
				patch[KeyTrackID] = e.ID
				return patch
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "submit" {
					return StepEditSubmitted
				}
				return StepEditCancelled
			},
			Targets: []journey.StepID{StepEditSubmitted, StepEditCancelled},
		},
		{
			ID:     StepEditSubmitted,
			Module: ModuleEdits,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				return journey.Say(fmt.Sprintf("Request %s submitted. The updated policy will reach %s within 2 working days.",
					s.GetString(KeyTrackID), s.GetString(motor.KeyEmail)))
			},
			To: StepMenu,
		},
		{
			ID:     StepEditCancelled,
			Module: ModuleEdits,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("Okay, nothing was changed.")
			},
			To: StepMenu,
		},
	}
}
