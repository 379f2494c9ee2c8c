// Package dashboard is the servicing registry reached after purchase: policy
// overview, first notice of loss claims, tracking, FAQ, documents and policy
// edit requests. Every step id carries the db. prefix.
package dashboard

import (
	"fmt"
	"maps"

	"CoverBot/bot/journey"
	"CoverBot/bot/journey/motor"
	"CoverBot/entity"
)

const (
	Module       journey.Module = "dashboard"
	ModuleClaims journey.Module = "claims"
	ModuleEdits  journey.Module = "edits"
)

// Step IDs
const (
	StepWelcome journey.StepID = "db.welcome"
	StepMenu    journey.StepID = "db.menu"
	StepExpert  journey.StepID = "db.expert"

	StepClaimIncident    journey.StepID = "db.claim_incident"
	StepClaimFir         journey.StepID = "db.claim_fir"
	StepClaimFirNotice   journey.StepID = "db.claim_fir_notice"
	StepClaimInjuries    journey.StepID = "db.claim_injuries"
	StepClaimDate        journey.StepID = "db.claim_date"
	StepClaimDateEntry   journey.StepID = "db.claim_date_entry"
	StepClaimDateInvalid journey.StepID = "db.claim_date_invalid"
	StepClaimDriver      journey.StepID = "db.claim_driver"
	StepClaimDriverName  journey.StepID = "db.claim_driver_name"
	StepClaimLicence     journey.StepID = "db.claim_licence"
	StepClaimDescription journey.StepID = "db.claim_description"
	StepClaimLocation    journey.StepID = "db.claim_location"
	StepClaimDrivable    journey.StepID = "db.claim_drivable"
	StepClaimTowing      journey.StepID = "db.claim_towing"
	StepClaimGarage      journey.StepID = "db.claim_garage"
	StepClaimDocuments   journey.StepID = "db.claim_documents"
	StepClaimPhotos      journey.StepID = "db.claim_photos"
	StepClaimReview      journey.StepID = "db.claim_review"
	StepClaimSubmitted   journey.StepID = "db.claim_submitted"
	StepClaimCancelled   journey.StepID = "db.claim_cancelled"

	StepTrack         journey.StepID = "db.track"
	StepTrackDetail   journey.StepID = "db.track_detail"
	StepFaq           journey.StepID = "db.faq"
	StepFaqAnswer     journey.StepID = "db.faq_answer"
	StepDocuments     journey.StepID = "db.documents"
	StepDocumentsSent journey.StepID = "db.documents_sent"

	StepEditMenu            journey.StepID = "db.edit_menu"
	StepEditAddOn           journey.StepID = "db.edit_addon"
	StepEditNomineeName     journey.StepID = "db.edit_nominee_name"
	StepEditNomineeRelation journey.StepID = "db.edit_nominee_relation"
	StepEditAddress         journey.StepID = "db.edit_address"
	StepEditConfirm         journey.StepID = "db.edit_confirm"
	StepEditSubmitted       journey.StepID = "db.edit_submitted"
	StepEditCancelled       journey.StepID = "db.edit_cancelled"
)

// Claim draft keys. They are cleared together on submit and on cancel.
const (
	KeyClaimIncident       = "dashboardClaimIncidentType"
	KeyClaimFir            = "dashboardClaimFirFiled"
	KeyClaimInjuries       = "dashboardClaimInjuries"
	KeyClaimDate           = "dashboardClaimDate"
	KeyClaimDriver         = "dashboardClaimDriver"
	KeyClaimDriverName     = "dashboardClaimDriverName"
	KeyClaimDriverLicensed = "dashboardClaimDriverLicensed"
	KeyClaimDescription    = "dashboardClaimDescription"
	KeyClaimLocation       = "dashboardClaimLocation"
	KeyClaimDrivable       = "dashboardClaimDrivable"
	KeyClaimTowing         = "dashboardClaimTowing"
	KeyClaimGarage         = "dashboardClaimGarage"
	KeyClaimDocuments      = "dashboardClaimDocuments"
	KeyClaimPhotos         = "dashboardClaimPhotos"
)

// Edit request draft keys.
const (
	KeyEditType            = "dashboardEditType"
	KeyEditAddOns          = "dashboardEditAddOns"
	KeyEditNomineeName     = "dashboardEditNomineeName"
	KeyEditNomineeRelation = "dashboardEditNomineeRelation"
	KeyEditAddress         = "dashboardEditAddress"
)

const (
	KeySubmittedClaims = "dashboardSubmittedClaims"
	KeySubmittedEdits  = "dashboardSubmittedEdits"
	KeyTrackID         = "dashboardTrackId"
	KeyFaqTopic        = "dashboardFaqTopic"
	KeyDocument        = "dashboardDocument"
)

// ClaimDraft is the empty claim draft. Merging it into a state resets every draft field.
func ClaimDraft() journey.Patch {
	return journey.Patch{
		KeyClaimIncident:       "",
		KeyClaimFir:            false,
		KeyClaimInjuries:       "",
		KeyClaimDate:           "",
		KeyClaimDriver:         "",
		KeyClaimDriverName:     "",
		KeyClaimDriverLicensed: false,
		KeyClaimDescription:    "",
		KeyClaimLocation:       "",
		KeyClaimDrivable:       false,
		KeyClaimTowing:         false,
		KeyClaimGarage:         "",
		KeyClaimDocuments:      []string{},
		KeyClaimPhotos:         []string{},
	}
}

// EditDraft is the empty edit request draft.
func EditDraft() journey.Patch {
	return journey.Patch{
		KeyEditType:            "",
		KeyEditAddOns:          []string{},
		KeyEditNomineeName:     "",
		KeyEditNomineeRelation: "",
		KeyEditAddress:         "",
	}
}

// InitialData is the dashboard part of a fresh journey state.
func InitialData() journey.Patch {
	p := journey.Patch{
		KeySubmittedClaims: []entity.Claim{},
		KeySubmittedEdits:  []entity.EditRequest{},
		KeyTrackID:         "",
		KeyFaqTopic:        "",
		KeyDocument:        "",
	}
	maps.Copy(p, ClaimDraft())
	maps.Copy(p, EditDraft())
	return p
}

// Registry builds the dashboard step registry.
func Registry() *journey.Registry {
	steps := []journey.Step{}
	steps = append(steps, homeSteps()...)
	steps = append(steps, claimSteps()...)
	steps = append(steps, servicingSteps()...)
	steps = append(steps, editSteps()...)
	return journey.NewRegistry("dashboard", StepWelcome, steps...)
}

func submittedClaims(s *journey.State) []entity.Claim {
	v, _ := journey.Get[[]entity.Claim](s, KeySubmittedClaims)
	return v
}

func submittedEdits(s *journey.State) []entity.EditRequest {
	v, _ := journey.Get[[]entity.EditRequest](s, KeySubmittedEdits)
	return v
}

// recordID builds human readable ids like CLM2601150001.
func recordID(prefix string, s *journey.State, seq int) string {
	return fmt.Sprintf("%s%s%04d", prefix, s.Now.Format("060102"), seq)
}

var menuOptions = []journey.Option{
	{ID: "claim", Label: "Raise a claim"},
	{ID: "track", Label: "Track a claim or request"},
	{ID: "edit", Label: "Update my policy"},
	{ID: "documents", Label: "Get policy documents"},
	{ID: "faq", Label: "Common questions"},
	{ID: "expert", Label: "Talk to an expert"},
}

func homeSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepWelcome,
			Module: Module,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				msg := "Welcome to your dashboard"
				if name := s.GetString(motor.KeyUserName); name != "" {
					msg += ", " + name
				}
				msg += "."
				if number := s.GetString(motor.KeyPolicyNumber); number != "" {
					return journey.Say(msg, fmt.Sprintf("Policy %s is active. Everything you need after purchase lives here.", number))
				}
				return journey.Say(msg)
			},
			To: StepMenu,
		},
		{
			ID:     StepMenu,
			Module: Module,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"What would you like to do?"},
					Options:     menuOptions,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				switch journey.ChoiceID(r) {
				case "claim":
					return ClaimDraft()
				case "edit":
					return EditDraft()
				case "expert":
					return journey.Patch{journey.KeyShowExpertPanel: true}
				}
				return nil
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				switch journey.ChoiceID(r) {
				case "claim":
					return StepClaimIncident
				case "track":
					return StepTrack
				case "edit":
					return StepEditMenu
				case "documents":
					return StepDocuments
				case "faq":
					return StepFaq
				default:
					return StepExpert
				}
			},
			Targets: []journey.StepID{StepClaimIncident, StepTrack, StepEditMenu, StepDocuments, StepFaq, StepExpert},
		},
		{
			ID:     StepExpert,
			Module: Module,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				return journey.Say("I've asked an expert to call you on " + s.GetString(motor.KeyPhone) + ". You can keep using the dashboard meanwhile.")
			},
			To: StepMenu,
		},
	}
}
