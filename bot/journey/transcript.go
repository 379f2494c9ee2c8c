package journey

import (
	"fmt"
	"strconv"
	"strings"
)

// label turns a response into the text of the user's transcript bubble.
func (e *Engine) label(st *Step, r Response, s *State, sc Script) string {
	if st.Label != nil {
		return st.Label(r, s, sc)
	}
	return DescribeResponse(r, sc)
}

// DescribeResponse is the default transcript text for a response.
func DescribeResponse(r Response, sc Script) string {
	switch v := r.(type) {
	case Choice:
		if o, ok := sc.Option(v.ID); ok {
			return o.Label
		}
		return v.ID
	case Text:
		return v.Value
	case Number:
		return strconv.FormatFloat(v.Value, 'f', -1, 64)
	case AddOnPick:
		if len(v.AddOns) == 0 {
			return "No add-ons"
		}
		labels := make([]string, 0, len(v.AddOns))
		for _, id := range v.AddOns {
			if o, ok := sc.Option(id); ok {
				labels = append(labels, o.Label)
				continue
			}
			labels = append(labels, id)
		}
		return strings.Join(labels, ", ")
	case PlanPick:
		name := v.Plan
		if o, ok := sc.Option(v.Plan); ok {
			name = o.Label
		}
		if v.GarageTier == "any" {
			return name + " (any garage)"
		}
		return name + " (network garages)"
	case Upload:
		if len(v.Files) == 1 {
			return "Uploaded 1 file"
		}
		return fmt.Sprintf("Uploaded %d files", len(v.Files))
	case VehicleLookup:
		if v.Found {
			return v.Vehicle.DisplayName()
		}
		return ""
	case Payment:
		return ""
	}
	return ""
}
