package journey

import (
	"context"
	"time"
)

// StepID is a unique identifier for a step across both registries.
type StepID string

// Module tags a step for progress and contextual help. It never drives control flow.
type Module string

// WidgetType selects the interactive control that collects a step's response.
type WidgetType string

const (
	WidgetNone           WidgetType = "none"
	WidgetSelection      WidgetType = "selection"
	WidgetText           WidgetType = "text"
	WidgetNumber         WidgetType = "number"
	WidgetAddOnSelection WidgetType = "addon_selection"
	WidgetPlanSelection  WidgetType = "plan_selection"
	WidgetVehicleFetch   WidgetType = "vehicle_fetch"
	WidgetPlanCalculator WidgetType = "plan_calculator"
	WidgetPayment        WidgetType = "payment"
	WidgetDocumentUpload WidgetType = "document_upload"
	WidgetPhotoCapture   WidgetType = "photo_capture"
)

// Status is where the interpreter stopped for a journey.
type Status string

const (
	StatusActive   Status = "active"
	StatusAwaiting Status = "awaiting"
	StatusIdle     Status = "idle"
)

// Storage handles persistence of journey states.
type Storage interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, product, id string) (*State, error)
	Delete(ctx context.Context, product, id string) error
}

// Presenter is the UI adapter for a front end (web socket, Telegram, ...).
// Each front end implements it to deliver narration and render widgets.
type Presenter interface {
	Typing(ctx context.Context, state *State) error
	Say(ctx context.Context, state *State, entry Entry) error
	Ask(ctx context.Context, state *State, prompt Prompt) error
}

// Resolver produces the response of a loader widget without user input,
// e.g. a vehicle lookup or a plan calculation.
type Resolver interface {
	Resolve(ctx context.Context, step *Step, state *State) (Response, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, step *Step, state *State) (Response, error)

func (f ResolverFunc) Resolve(ctx context.Context, step *Step, state *State) (Response, error) {
	return f(ctx, step, state)
}

// Pacer suspends the interpreter for simulated latency.
type Pacer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// Prompt is what a presenter needs to render the widget of the current step.
type Prompt struct {
	JourneyID string     `json:"journey_id"`
	StepID    StepID     `json:"step_id"`
	Module    Module     `json:"module"`
	Widget    WidgetType `json:"widget"`
	Script    Script     `json:"script"`
}
