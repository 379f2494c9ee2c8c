package entity

import (
	"CoverBot/internal/lib/validate"
	"encoding/json"
	"net/http"
)

type StartJourneyRequest struct {
	Product string `json:"product" validate:"required"`
	ID      string `json:"id" validate:"omitempty,max=64,printascii,excludesall=/?#"`
}

func (s *StartJourneyRequest) Bind(_ *http.Request) error {
	return validate.Struct(s)
}

// RespondRequest carries either a widget payload or free text typed by the user.
type RespondRequest struct {
	Payload json.RawMessage `json:"payload" validate:"required_without=Text"`
	Text    string          `json:"text" validate:"required_without=Payload"`
}

func (r *RespondRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

// StepEditRequest re-answers an earlier step of the journey.
type StepEditRequest struct {
	StepID  string          `json:"step_id" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

func (e *StepEditRequest) Bind(_ *http.Request) error {
	return validate.Struct(e)
}

// PanelsRequest toggles UI panels; an absent field leaves the panel as it is.
type PanelsRequest struct {
	Expert *bool `json:"expert"`
	AIChat *bool `json:"ai_chat"`
}

func (p *PanelsRequest) Bind(_ *http.Request) error {
	return validate.Struct(p)
}

type AskRequest struct {
	Question string `json:"question" validate:"required,max=1000"`
}

func (a *AskRequest) Bind(_ *http.Request) error {
	return validate.Struct(a)
}
