package dashboard

import (
	"fmt"
	"slices"
	"time"

	"CoverBot/bot/journey"
	"CoverBot/bot/journey/motor"
	"CoverBot/entity"
)

var back = journey.Option{ID: "back", Label: "Back to menu"}

var statusLabels = map[string]string{
	entity.ClaimSubmitted:   "Submitted",
	entity.ClaimUnderReview: "Under review",
	entity.ClaimSurveyor:    "Surveyor assigned",
	entity.ClaimSettled:     "Settled",
	entity.EditPending:      "Pending",
}

type milestone struct {
	status string
	after  time.Duration
}

// claimTimeline is how long after submission a claim moves to each status.
var claimTimeline = []milestone{
	{entity.ClaimSubmitted, 0},
	{entity.ClaimUnderReview, time.Hour},
	{entity.ClaimSurveyor, 24 * time.Hour},
	{entity.ClaimSettled, 7 * 24 * time.Hour},
}

// progressClaims moves every submitted claim along the timeline as of now.
// A status never moves backwards. It reports whether anything changed.
func progressClaims(claims []entity.Claim, now time.Time) ([]entity.Claim, bool) {
	out := slices.Clone(claims)
	changed := false
	for i, c := range out {
		current := slices.IndexFunc(claimTimeline, func(m milestone) bool { return m.status == c.Status })
		if current < 0 {
			continue
		}
		age := now.Sub(c.SubmittedAt)
		for next := current + 1; next < len(claimTimeline) && age >= claimTimeline[next].after; next++ {
			out[i].Status = claimTimeline[next].status
			changed = true
		}
	}
	return out, changed
}

func statusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// FaqTopics are the questions offered on the FAQ menu, with their answers.
var FaqTopics = []struct {
	journey.Option
	Answer string
}{
	{
		Option: journey.Option{ID: "claim_process", Label: "How does a claim work?"},
		Answer: "Raise the claim here, upload documents and photos, and a surveyor inspects the vehicle within 24 hours. Network garages repair cashless; elsewhere you pay and we reimburse within 7 working days.",
	},
	{
		Option: journey.Option{ID: "ncb", Label: "Will a claim affect my NCB?"},
		Answer: "Yes. Any own damage claim resets your No Claim Bonus to 0% at renewal, unless you have NCB protection.",
	},
	{
		Option: journey.Option{ID: "cashless", Label: "What is a cashless claim?"},
		Answer: "At a network garage we settle the bill directly. You only pay deductibles and anything your policy doesn't cover.",
	},
	{
		Option: journey.Option{ID: "renewal", Label: "When should I renew?"},
		Answer: "Any time in the 60 days before expiry. Renewing after a 90 day gap loses your NCB.",
	},
	{
		Option: journey.Option{ID: "transfer", Label: "I sold my vehicle. What now?"},
		Answer: "The policy can be transferred to the new owner within 14 days of the sale. Share the new RC with us and we'll do the rest.",
	},
}

func faqOptions() []journey.Option {
	opts := make([]journey.Option, 0, len(FaqTopics)+1)
	for _, t := range FaqTopics {
		opts = append(opts, t.Option)
	}
	return append(opts, back)
}

// Documents lists the downloadable policy documents.
var Documents = []journey.Option{
	{ID: "policy_schedule", Label: "Policy schedule"},
	{ID: "certificate", Label: "Certificate of insurance"},
	{ID: "receipt", Label: "Payment receipt"},
}

func trackOptions(s *journey.State) []journey.Option {
	var opts []journey.Option
	for _, c := range submittedClaims(s) {
		opts = append(opts, journey.Option{
			ID:          c.ID,
			Label:       fmt.Sprintf("Claim %s · %s", c.ID, optionLabel(incidentOptions, c.IncidentType)),
			Description: statusLabel(c.Status),
		})
	}
	for _, e := range submittedEdits(s) {
		opts = append(opts, journey.Option{
			ID:          e.ID,
			Label:       fmt.Sprintf("Request %s · %s", e.ID, optionLabel(editOptions, e.Type)),
			Description: statusLabel(e.Status),
		})
	}
	return append(opts, back)
}

func servicingSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepTrack,
			Module: Module,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				opts := trackOptions(s)
				msg := "Which one would you like to check?"
				if len(opts) == 1 {
					msg = "You haven't raised any claims or requests yet."
				}
				return journey.Script{BotMessages: []string{msg}, Options: opts}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				if journey.ChoiceID(r) == back.ID {
					return nil
				}
				patch := journey.Patch{KeyTrackID: journey.ChoiceID(r)}
				if claims, changed := progressClaims(submittedClaims(s), s.Now); changed {
					patch[KeySubmittedClaims] = claims
				}
				return patch
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == back.ID {
					return StepMenu
				}
				return StepTrackDetail
			},
			Targets: []journey.StepID{StepMenu, StepTrackDetail},
		},
		{
			ID:     StepTrackDetail,
			Module: Module,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				id := s.GetString(KeyTrackID)
				for _, c := range submittedClaims(s) {
					if c.ID == id {
						return journey.Say(
							fmt.Sprintf("Claim %s for the %s on %s.", c.ID, optionLabel(incidentOptions, c.IncidentType), c.IncidentDate),
							"Status: "+statusLabel(c.Status),
							fmt.Sprintf("Submitted %s.", c.SubmittedAt.Format("2 Jan 2006 15:04")),
						)
					}
				}
				for _, e := range submittedEdits(s) {
					if e.ID == id {
						return journey.Say(
							fmt.Sprintf("Request %s: %s.", e.ID, optionLabel(editOptions, e.Type)),
							"Status: "+statusLabel(e.Status),
						)
					}
				}
				return journey.Say("I couldn't find that record.")
			},
			To: StepMenu,
		},
		{
			ID:     StepFaq,
			Module: Module,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Here are the questions people ask most."},
					Options:     faqOptions(),
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				if journey.ChoiceID(r) == back.ID {
					return journey.Patch{KeyFaqTopic: ""}
				}
				return journey.Patch{KeyFaqTopic: journey.ChoiceID(r)}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == back.ID {
					return StepMenu
				}
				return StepFaqAnswer
			},
			Targets: []journey.StepID{StepMenu, StepFaqAnswer},
		},
		{
			ID:     StepFaqAnswer,
			Module: Module,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				topic := s.GetString(KeyFaqTopic)
				for _, t := range FaqTopics {
					if t.ID == topic {
						return journey.Say(t.Answer)
					}
				}
				return journey.Say("I don't have an answer for that one yet.")
			},
			To: StepFaq,
		},
		{
			ID:     StepDocuments,
			Module: Module,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Which document do you need?"},
					Options:     append(append([]journey.Option{}, Documents...), back),
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				if journey.ChoiceID(r) == back.ID {
					return nil
				}
				return journey.Patch{KeyDocument: journey.ChoiceID(r)}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == back.ID {
					return StepMenu
				}
				return StepDocumentsSent
			},
			Targets: []journey.StepID{StepMenu, StepDocumentsSent},
		},
		{
			ID:     StepDocumentsSent,
			Module: Module,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				return journey.Say(fmt.Sprintf("Your %s is ready to download, and I've also emailed it to %s.",
					optionLabel(Documents, s.GetString(KeyDocument)), s.GetString(motor.KeyEmail)))
			},
			To: StepMenu,
		},
	}
}
