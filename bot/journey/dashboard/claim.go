package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"CoverBot/bot/journey"
	"CoverBot/bot/journey/motor"
	"CoverBot/entity"
)

const (
	IncidentAccident  = "accident"
	IncidentTheft     = "theft"
	IncidentFire      = "fire"
	IncidentFlood     = "flood"
	IncidentVandalism = "vandalism"
)

var incidentOptions = []journey.Option{
	{ID: IncidentAccident, Label: "Accident"},
	{ID: IncidentTheft, Label: "Theft"},
	{ID: IncidentFire, Label: "Fire"},
	{ID: IncidentFlood, Label: "Flood or natural calamity"},
	{ID: IncidentVandalism, Label: "Vandalism"},
}

var yesNo = []journey.Option{
	{ID: "yes", Label: "Yes"},
	{ID: "no", Label: "No"},
}

var networkGarages = []journey.Option{
	{ID: "autocare_andheri", Label: "AutoCare Motors, Andheri", Description: "Cashless, 2.1 km away"},
	{ID: "speedfix_powai", Label: "SpeedFix Garage, Powai", Description: "Cashless, 4.5 km away"},
	{ID: "metro_wheels_bkc", Label: "Metro Wheels, BKC", Description: "Cashless, 6.0 km away"},
	{ID: "own", Label: "My own garage", Description: "Reimbursement claim"},
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006", "2 Jan 2006"}

// ParseIncidentDate reads a typed date and rejects dates after now or more
// than a year before it.
func ParseIncidentDate(text string, now time.Time) (string, bool) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		d, err := time.ParseInLocation(layout, text, now.Location())
		if err != nil {
			continue
		}
		if d.After(now) || d.Before(now.AddDate(-1, 0, 0)) {
			return "", false
		}
		return d.Format("2006-01-02"), true
	}
	return "", false
}

func incident(s *journey.State) string {
	return s.GetString(KeyClaimIncident)
}

func isTheft(s *journey.State) bool {
	return incident(s) == IncidentTheft
}

func optionLabel(opts []journey.Option, id string) string {
	for _, o := range opts {
		if o.ID == id {
			return o.Label
		}
	}
	return id
}

// DraftClaim assembles a claim record from the draft fields.
func DraftClaim(s *journey.State) entity.Claim {
	return entity.Claim{
		PolicyNumber:   s.GetString(motor.KeyPolicyNumber),
		IncidentType:   incident(s),
		FirFiled:       s.GetBool(KeyClaimFir),
		Injuries:       s.GetString(KeyClaimInjuries),
		IncidentDate:   s.GetString(KeyClaimDate),
		Driver:         s.GetString(KeyClaimDriver),
		DriverName:     s.GetString(KeyClaimDriverName),
		DriverLicensed: s.GetBool(KeyClaimDriverLicensed),
		Description:    s.GetString(KeyClaimDescription),
		Location:       s.GetString(KeyClaimLocation),
		Drivable:       s.GetBool(KeyClaimDrivable),
		Towing:         s.GetBool(KeyClaimTowing),
		Garage:         s.GetString(KeyClaimGarage),
		Documents:      s.GetStrings(KeyClaimDocuments),
		Photos:         s.GetStrings(KeyClaimPhotos),
	}
}

func claimSummary(c entity.Claim) string {
	lines := []string{
		"Incident: " + optionLabel(incidentOptions, c.IncidentType),
		"Date: " + c.IncidentDate,
	}
	if c.IncidentType == IncidentTheft {
		lines = append(lines, fmt.Sprintf("FIR filed: %t", c.FirFiled))
	} else {
		lines = append(lines, "Injuries: "+c.Injuries)
	}
	if c.DriverName != "" {
		lines = append(lines, "Driver: "+c.DriverName)
	}
	lines = append(lines,
		"What happened: "+c.Description,
		"Vehicle location: "+c.Location,
	)
	if c.Garage != "" {
		lines = append(lines, "Garage: "+optionLabel(networkGarages, c.Garage))
	}
	lines = append(lines, fmt.Sprintf("Files: %d documents, %d photos", len(c.Documents), len(c.Photos)))
	return strings.Join(lines, "\n")
}

func claimSteps() []journey.Step {
	return []journey.Step{
		{
			ID:     StepClaimIncident,
			Module: ModuleClaims,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"I'm sorry to hear that. Let's get your claim started. What happened?"},
					Options:     incidentOptions,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyClaimIncident: journey.ChoiceID(r)}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == IncidentTheft {
					return StepClaimFir
				}
				return StepClaimInjuries
			},
			Targets: []journey.StepID{StepClaimFir, StepClaimInjuries},
		},
		{
			ID:        StepClaimFir,
			Module:    ModuleClaims,
			Widget:    journey.WidgetSelection,
			Condition: isTheft,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Have you filed an FIR with the police?"},
					Options:     yesNo,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyClaimFir: journey.ChoiceID(r) == "yes"}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "yes" {
					return StepClaimDate
				}
				return StepClaimFirNotice
			},
			Targets: []journey.StepID{StepClaimDate, StepClaimFirNotice},
		},
		{
			ID:     StepClaimFirNotice,
			Module: ModuleClaims,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("A theft claim needs an FIR. Please file one at the nearest police station within 24 hours. We'll continue with the rest meanwhile.")
			},
			To: StepClaimDate,
		},
		{
			ID:     StepClaimInjuries,
			Module: ModuleClaims,
			Widget: journey.WidgetSelection,
			Condition: func(s *journey.State) bool {
				return !isTheft(s)
			},
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"First, is anyone hurt?"},
					Options: []journey.Option{
						{ID: "none", Label: "No one is hurt"},
						{ID: "minor", Label: "Minor injuries"},
						{ID: "serious", Label: "Serious injuries"},
					},
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				p := journey.Patch{KeyClaimInjuries: journey.ChoiceID(r)}
				if journey.ChoiceID(r) == "serious" {
					p[journey.KeyShowExpertPanel] = true
				}
				return p
			},
			To: StepClaimDate,
		},
		{
			ID:     StepClaimDate,
			Module: ModuleClaims,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"When did it happen?"},
					Options: []journey.Option{
						{ID: "today", Label: "Today"},
						{ID: "yesterday", Label: "Yesterday"},
						{ID: "earlier", Label: "Earlier"},
					},
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				switch journey.ChoiceID(r) {
				case "today":
					return journey.Patch{KeyClaimDate: s.Now.Format("2006-01-02")}
				case "yesterday":
					return journey.Patch{KeyClaimDate: s.Now.AddDate(0, 0, -1).Format("2006-01-02")}
				}
				return nil
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "earlier" {
					return StepClaimDateEntry
				}
				return StepClaimDriver
			},
			Targets: []journey.StepID{StepClaimDateEntry, StepClaimDriver},
		},
		{
			ID:     StepClaimDateEntry,
			Module: ModuleClaims,
			Widget: journey.WidgetText,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"What was the date?"},
					Placeholder: "DD/MM/YYYY",
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				date, ok := ParseIncidentDate(journey.TextValue(r), s.Now)
				if !ok {
					return nil
				}
				return journey.Patch{KeyClaimDate: date}
			},
			Next: func(_ journey.Response, s *journey.State) journey.StepID {
				if s.GetString(KeyClaimDate) == "" {
					return StepClaimDateInvalid
				}
				return StepClaimDriver
			},
			Targets: []journey.StepID{StepClaimDateInvalid, StepClaimDriver},
		},
		{
			ID:     StepClaimDateInvalid,
			Module: ModuleClaims,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("I couldn't use that date. It has to be within the last year and not in the future, e.g. 14/01/2026.")
			},
			To: StepClaimDateEntry,
		},
		{
			ID:     StepClaimDriver,
			Module: ModuleClaims,
			Widget: journey.WidgetSelection,
			// who drove only matters for accidents
			Condition: func(s *journey.State) bool {
				return incident(s) == IncidentAccident
			},
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Who was driving?"},
					Options: []journey.Option{
						{ID: "self", Label: "I was"},
						{ID: "other", Label: "Someone else"},
					},
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				if journey.ChoiceID(r) == "self" {
					return journey.Patch{
						KeyClaimDriver:         "self",
						KeyClaimDriverName:     s.GetString(motor.KeyOwnerName),
						KeyClaimDriverLicensed: true,
					}
				}
				return journey.Patch{KeyClaimDriver: "other"}
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "other" {
					return StepClaimDriverName
				}
				return StepClaimDescription
			},
			Targets: []journey.StepID{StepClaimDriverName, StepClaimDescription},
		},
		{
			ID:     StepClaimDriverName,
			Module: ModuleClaims,
			Widget: journey.WidgetText,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"What's the driver's full name?"},
					Placeholder: "Full name",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyClaimDriverName: strings.TrimSpace(journey.TextValue(r))}
			},
			To: StepClaimLicence,
		},
		{
			ID:     StepClaimLicence,
			Module: ModuleClaims,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Does " + s.GetString(KeyClaimDriverName) + " hold a valid driving licence?"},
					SubText:     "Claims can be rejected if the driver was unlicensed.",
					Options:     yesNo,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyClaimDriverLicensed: journey.ChoiceID(r) == "yes"}
			},
			To: StepClaimDescription,
		},
		{
			ID:     StepClaimDescription,
			Module: ModuleClaims,
			Widget: journey.WidgetText,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"In a few words, what happened?"},
					Placeholder: "e.g. Rear-ended at a signal on Link Road",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyClaimDescription: strings.TrimSpace(journey.TextValue(r))}
			},
			To: StepClaimLocation,
		},
		{
			ID:     StepClaimLocation,
			Module: ModuleClaims,
			Widget: journey.WidgetText,
			Script: func(s *journey.State) journey.Script {
				q := "Where is the vehicle right now?"
				if isTheft(s) {
					q = "Where was the vehicle last parked?"
				}
				return journey.Script{
					BotMessages: []string{q},
					Placeholder: "Area, city",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyClaimLocation: strings.TrimSpace(journey.TextValue(r))}
			},
			To: StepClaimDrivable,
		},
		{
			ID:     StepClaimDrivable,
			Module: ModuleClaims,
			Widget: journey.WidgetSelection,
			Condition: func(s *journey.State) bool {
				return !isTheft(s)
			},
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Can the vehicle be driven?"},
					Options:     yesNo,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyClaimDrivable: journey.ChoiceID(r) == "yes"}
			},
			Next: func(r journey.Response, s *journey.State) journey.StepID {
				switch {
				case isTheft(s):
					return StepClaimDocuments
				case journey.ChoiceID(r) == "no":
					return StepClaimTowing
				default:
					return StepClaimGarage
				}
			},
			Targets: []journey.StepID{StepClaimDocuments, StepClaimTowing, StepClaimGarage},
		},
		{
			ID:     StepClaimTowing,
			Module: ModuleClaims,
			Widget: journey.WidgetSelection,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Shall I send a tow truck? It's free with your policy."},
					Options:     yesNo,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyClaimTowing: journey.ChoiceID(r) == "yes"}
			},
			To: StepClaimGarage,
		},
		{
			ID:     StepClaimGarage,
			Module: ModuleClaims,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				msg := "Where should the repair happen?"
				if s.GetBool(KeyClaimTowing) {
					msg = "Where should we tow it? Network garages repair cashless."
				}
				return journey.Script{
					BotMessages: []string{msg},
					Options:     networkGarages,
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				return journey.Patch{KeyClaimGarage: journey.ChoiceID(r)}
			},
			To: StepClaimDocuments,
		},
		{
			ID:     StepClaimDocuments,
			Module: ModuleClaims,
			Widget: journey.WidgetDocumentUpload,
			Script: func(s *journey.State) journey.Script {
				docs := "driving licence and RC"
				if isTheft(s) {
					docs = "FIR copy, RC and both sets of keys (photo)"
				}
				return journey.Script{
					BotMessages: []string{"Please upload your " + docs + "."},
					SubText:     "PDF or images, up to 10 MB each.",
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				u, _ := r.(journey.Upload)
				return journey.Patch{KeyClaimDocuments: slices.Clone(u.Files)}
			},
			Next: func(_ journey.Response, s *journey.State) journey.StepID {
				if isTheft(s) {
					return StepClaimReview
				}
				return StepClaimPhotos
			},
			Targets: []journey.StepID{StepClaimReview, StepClaimPhotos},
		},
		{
			ID:     StepClaimPhotos,
			Module: ModuleClaims,
			Widget: journey.WidgetPhotoCapture,
			Script: func(*journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Now a few photos of the damage: front, back, and close-ups of each damaged part."},
				}
			},
			Process: func(r journey.Response, _ *journey.State) journey.Patch {
				u, _ := r.(journey.Upload)
				return journey.Patch{KeyClaimPhotos: slices.Clone(u.Files)}
			},
			To: StepClaimReview,
		},
		{
			ID:     StepClaimReview,
			Module: ModuleClaims,
			Widget: journey.WidgetSelection,
			Script: func(s *journey.State) journey.Script {
				return journey.Script{
					BotMessages: []string{"Please check your claim before I submit it:", claimSummary(DraftClaim(s))},
					Options: []journey.Option{
						{ID: "submit", Label: "Submit claim"},
						{ID: "cancel", Label: "Cancel"},
					},
				}
			},
			Process: func(r journey.Response, s *journey.State) journey.Patch {
				patch := ClaimDraft()
				if journey.ChoiceID(r) != "submit" {
					return patch
				}
				claims := submittedClaims(s)
				c := DraftClaim(s)
				c.ID = recordID("CLM", s, len(claims)+1)
				c.Status = entity.ClaimSubmitted
				c.SubmittedAt = s.Now
				patch[KeySubmittedClaims] = append(slices.Clone(claims), c)
				patch[KeyTrackID] = c.ID
				return patch
			},
			Next: func(r journey.Response, _ *journey.State) journey.StepID {
				if journey.ChoiceID(r) == "submit" {
					return StepClaimSubmitted
				}
				return StepClaimCancelled
			},
			Targets: []journey.StepID{StepClaimSubmitted, StepClaimCancelled},
		},
		{
			ID:     StepClaimSubmitted,
			Module: ModuleClaims,
			Widget: journey.WidgetNone,
			Script: func(s *journey.State) journey.Script {
				return journey.Say(
					fmt.Sprintf("Your claim %s is registered. ✅", s.GetString(KeyTrackID)),
					"A surveyor will contact you within 24 hours. You can track progress from the dashboard.",
				)
			},
			To: StepMenu,
		},
		{
			ID:     StepClaimCancelled,
			Module: ModuleClaims,
			Widget: journey.WidgetNone,
			Script: func(*journey.State) journey.Script {
				return journey.Say("No problem, I've discarded the claim draft.")
			},
			To: StepMenu,
		},
	}
}
