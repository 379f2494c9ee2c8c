package journey

import (
	"encoding/json"
	"fmt"

	"CoverBot/entity"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Response is the single value a widget hands back to a step.
// The set of variants is closed; each one names the widgets it can answer.
type Response interface {
	Accepts(w WidgetType) bool
	isResponse()
}

// Choice answers a selection widget with an option id.
type Choice struct {
	ID string `json:"id" validate:"required"`
}

// Text answers a free-text widget.
type Text struct {
	Value string `json:"value" validate:"required"`
}

// Number answers a numeric widget (slider, counter).
type Number struct {
	Value float64 `json:"value" validate:"gte=0"`
}

// AddOnPick answers an add-on picker. An empty list means "skip".
type AddOnPick struct {
	AddOns []string `json:"addons" validate:"dive,required"`
}

// PlanPick answers the plan cards widget.
type PlanPick struct {
	Plan       string `json:"plan" validate:"required"`
	GarageTier string `json:"garageTier" validate:"required,oneof=network any"`
}

// VehicleLookup is produced by the registration lookup loader.
type VehicleLookup struct {
	Found   bool           `json:"found"`
	Vehicle entity.Vehicle `json:"vehicle"`
}

// Quotes is produced by the plan calculator loader.
type Quotes struct {
	Plans []entity.Plan `json:"plans" validate:"required,min=1,dive"`
}

// Upload answers document and photo capture widgets with stored file references.
type Upload struct {
	Files []string `json:"files" validate:"required,min=1,dive,required"`
}

// Payment is produced by the payment gateway loader.
type Payment struct {
	Reference string `json:"reference" validate:"required"`
	OK        bool   `json:"ok"`
}

func (Choice) Accepts(w WidgetType) bool        { return w == WidgetSelection }
func (Text) Accepts(w WidgetType) bool          { return w == WidgetText }
func (Number) Accepts(w WidgetType) bool        { return w == WidgetNumber }
func (AddOnPick) Accepts(w WidgetType) bool     { return w == WidgetAddOnSelection }
func (PlanPick) Accepts(w WidgetType) bool      { return w == WidgetPlanSelection }
func (VehicleLookup) Accepts(w WidgetType) bool { return w == WidgetVehicleFetch }
func (Quotes) Accepts(w WidgetType) bool        { return w == WidgetPlanCalculator }
func (Payment) Accepts(w WidgetType) bool       { return w == WidgetPayment }

func (Upload) Accepts(w WidgetType) bool {
	return w == WidgetDocumentUpload || w == WidgetPhotoCapture
}

func (Choice) isResponse()        {}
func (Text) isResponse()          {}
func (Number) isResponse()        {}
func (AddOnPick) isResponse()     {}
func (PlanPick) isResponse()      {}
func (VehicleLookup) isResponse() {}
func (Quotes) isResponse()        {}
func (Upload) isResponse()        {}
func (Payment) isResponse()       {}

// DecodeResponse builds the response variant for a widget from its JSON payload.
func DecodeResponse(w WidgetType, raw []byte) (Response, error) {
	var (
		r   Response
		err error
	)
	switch w {
	case WidgetSelection:
		var v Choice
		err = json.Unmarshal(raw, &v)
		r = v
	case WidgetText:
		var v Text
		err = json.Unmarshal(raw, &v)
		r = v
	case WidgetNumber:
		var v Number
		err = json.Unmarshal(raw, &v)
		r = v
	case WidgetAddOnSelection:
		var v AddOnPick
		err = json.Unmarshal(raw, &v)
		r = v
	case WidgetPlanSelection:
		var v PlanPick
		err = json.Unmarshal(raw, &v)
		r = v
	case WidgetVehicleFetch:
		var v VehicleLookup
		err = json.Unmarshal(raw, &v)
		r = v
	case WidgetPlanCalculator:
		var v Quotes
		err = json.Unmarshal(raw, &v)
		r = v
	case WidgetDocumentUpload, WidgetPhotoCapture:
		var v Upload
		err = json.Unmarshal(raw, &v)
		r = v
	case WidgetPayment:
		var v Payment
		err = json.Unmarshal(raw, &v)
		r = v
	default:
		return nil, fmt.Errorf("%w: widget %q takes no response", ErrMalformedResponse, w)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return r, nil
}

// EncodeResponse serializes a response for the answer log.
func EncodeResponse(r Response) (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ChoiceID returns the option id of a Choice response, or "".
func ChoiceID(r Response) string {
	if c, ok := r.(Choice); ok {
		return c.ID
	}
	return ""
}

// TextValue returns the value of a Text response, or "".
func TextValue(r Response) string {
	if t, ok := r.(Text); ok {
		return t.Value
	}
	return ""
}

// NumberValue returns the value of a Number response, or 0.
func NumberValue(r Response) float64 {
	if n, ok := r.(Number); ok {
		return n.Value
	}
	return 0
}
