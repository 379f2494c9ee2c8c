package journey

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var mobilePattern = regexp.MustCompile(`^\+91[6-9][0-9]{9}$`)

// NormalizePhone strips non-digit characters and prefixes the Indian country code.
func NormalizePhone(phone string) string {
	digits := ""
	for _, ch := range phone {
		if ch >= '0' && ch <= '9' {
			digits += string(ch)
		}
	}
	digits = strings.TrimPrefix(digits, "0")
	if len(digits) == 10 {
		digits = "91" + digits
	}
	if len(digits) > 0 {
		digits = "+" + digits
	}
	return digits
}

// IsValidPhone checks if the input is an Indian mobile number.
func IsValidPhone(phone string) bool {
	return mobilePattern.MatchString(NormalizePhone(phone))
}

// FormatNumberedOptions creates a numbered text menu for front ends without buttons.
// Example output: "Pick one\n\n1. Car\n2. Bike\n\nReply with a number:"
func FormatNumberedOptions(text string, options []Option) string {
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n")

	for i, o := range options {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, o.Label))
	}
	sb.WriteString("\nReply with a number:")
	return sb.String()
}

// MatchNumberToOption converts a number string ("1", "2", ...) to the
// corresponding option id. Returns empty string if no match.
func MatchNumberToOption(text string, options []Option) string {
	text = strings.TrimSpace(text)
	num, err := strconv.Atoi(text)
	if err != nil || num < 1 || num > len(options) {
		return ""
	}
	return options[num-1].ID
}

// matchOption accepts a menu number, an option label or an option id.
func matchOption(text string, options []Option) string {
	text = strings.TrimSpace(text)
	if id := MatchNumberToOption(text, options); id != "" {
		return id
	}
	for _, o := range options {
		if strings.EqualFold(o.Label, text) || strings.EqualFold(o.ID, text) {
			return o.ID
		}
	}
	return ""
}

// ParseInput converts free text into the response a widget expects.
// Loader widgets cannot be answered by text.
func ParseInput(w WidgetType, sc Script, text string) (Response, error) {
	text = strings.TrimSpace(text)
	switch w {
	case WidgetSelection:
		id := matchOption(text, sc.Options)
		if id == "" {
			return nil, fmt.Errorf("%w: %q is not one of the options", ErrMalformedResponse, text)
		}
		return Choice{ID: id}, nil

	case WidgetText:
		if text == "" {
			return nil, fmt.Errorf("%w: empty text", ErrMalformedResponse)
		}
		return Text{Value: text}, nil

	case WidgetNumber:
		clean := strings.NewReplacer("₹", "", ",", "", " ", "").Replace(text)
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrMalformedResponse, text)
		}
		return Number{Value: v}, nil

	case WidgetAddOnSelection:
		pick := AddOnPick{AddOns: []string{}}
		switch strings.ToLower(text) {
		case "", "0", "none", "skip", "no":
			return pick, nil
		}
		for _, part := range splitList(text) {
			id := matchOption(part, sc.Options)
			if id == "" {
				return nil, fmt.Errorf("%w: unknown add-on %q", ErrMalformedResponse, part)
			}
			pick.AddOns = append(pick.AddOns, id)
		}
		return pick, nil

	case WidgetPlanSelection:
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: no plan chosen", ErrMalformedResponse)
		}
		id := matchOption(fields[0], sc.Options)
		if id == "" {
			return nil, fmt.Errorf("%w: unknown plan %q", ErrMalformedResponse, fields[0])
		}
		tier := "network"
		if len(fields) > 1 && strings.EqualFold(fields[1], "any") {
			tier = "any"
		}
		return PlanPick{Plan: id, GarageTier: tier}, nil

	case WidgetDocumentUpload, WidgetPhotoCapture:
		files := splitList(text)
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: no files", ErrMalformedResponse)
		}
		return Upload{Files: files}, nil
	}
	return nil, fmt.Errorf("%w: widget %q is answered automatically", ErrMalformedResponse, w)
}

func splitList(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';' || r == '\n'
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
