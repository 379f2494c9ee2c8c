// Package documents renders the downloadable policy documents of a purchased journey.
package documents

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"CoverBot/bot/journey"
	"CoverBot/bot/journey/dashboard"
	"CoverBot/bot/journey/motor"
	"CoverBot/entity"
	"CoverBot/internal/service/pricing"
)

var (
	ErrUnknownDocument = errors.New("unknown document")
	ErrNoPolicy        = errors.New("no policy issued yet")
)

type Document struct {
	ID          string
	Name        string
	Filename    string
	ContentType string
	Body        []byte
}

// Render builds a document from the journey's policy fields.
func Render(docID string, s *journey.State) (Document, error) {
	name := ""
	for _, o := range dashboard.Documents {
		if o.ID == docID {
			name = o.Label
		}
	}
	if name == "" {
		return Document{}, fmt.Errorf("%w: %s", ErrUnknownDocument, docID)
	}
	policy := s.GetString(motor.KeyPolicyNumber)
	if policy == "" {
		return Document{}, ErrNoPolicy
	}

	var sb strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%-18s %s\n", label+":", value)
		}
	}

	fmt.Fprintf(&sb, "%s\n%s\n\n", strings.ToUpper(name), strings.Repeat("=", len(name)))
	line("Policy number", policy)
	if issued, ok := journey.Get[time.Time](s, motor.KeyPolicyIssuedAt); ok && !issued.IsZero() {
		line("Issued", issued.Format("02 Jan 2006"))
		line("Valid until", issued.AddDate(1, 0, -1).Format("02 Jan 2006"))
	}
	line("Insured", s.GetString(motor.KeyOwnerName))

	vehicle, _ := journey.Get[entity.Vehicle](s, motor.KeyVehicle)
	premium, _ := journey.Get[entity.Premium](s, motor.KeyPremium)

	switch docID {
	case "policy_schedule":
		line("Vehicle", vehicle.DisplayName())
		line("Registration", vehicle.Registration)
		line("Plan", s.GetString(motor.KeySelectedPlan))
		if idv := s.GetInt(motor.KeyIDV); idv > 0 {
			line("IDV", pricing.FormatAmount(idv))
		}
		line("Garages", s.GetString(motor.KeyGarageTier))
		for _, id := range s.GetStrings(motor.KeySelectedAddOns) {
			line("Add-on", pricing.AddOnName(id))
		}
		line("Nominee", nominee(s))
		line("Address", s.GetString(motor.KeyAddress))
	case "certificate":
		line("Vehicle", vehicle.DisplayName())
		line("Registration", vehicle.Registration)
		sb.WriteString("\nCertified that the policy above complies with the Motor Vehicles Act, 1988.\n")
	case "receipt":
		line("Reference", s.GetString(motor.KeyPaymentRef))
		line("Net premium", pricing.FormatAmount(premium.Net))
		line("GST", pricing.FormatAmount(premium.GST))
		line("Total paid", pricing.FormatAmount(premium.Total))
	}

	return Document{
		ID:          docID,
		Name:        name,
		Filename:    fmt.Sprintf("%s-%s.txt", policy, docID),
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(sb.String()),
	}, nil
}

func nominee(s *journey.State) string {
	name := s.GetString(motor.KeyNomineeName)
	if rel := s.GetString(motor.KeyNomineeRelation); name != "" && rel != "" {
		return name + " (" + rel + ")"
	}
	return name
}
