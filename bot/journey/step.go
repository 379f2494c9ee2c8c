package journey

import (
	"slices"
	"strings"
	"time"
)

// Option is one static choice offered by a step's script.
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Script is the dialogue a step produces for the current state.
type Script struct {
	BotMessages []string `json:"bot_messages"`
	SubText     string   `json:"sub_text,omitempty"`
	Options     []Option `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	InputType   string   `json:"input_type,omitempty"`
}

// Say builds a script made of bot messages only.
func Say(messages ...string) Script {
	return Script{BotMessages: messages}
}

// Message joins the bot messages into a single narrated bubble.
func (s Script) Message() string {
	return strings.Join(s.BotMessages, "\n\n")
}

// Option looks up a static option by id.
func (s Script) Option(id string) (Option, bool) {
	for _, o := range s.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Step is one node of the conversational graph. Everything except the
// function fields is static data; the functions must be pure.
type Step struct {
	ID     StepID
	Module Module
	Widget WidgetType

	// AutoAdvance is the simulated latency before a loader resolves.
	AutoAdvance time.Duration

	// Condition skips the step without rendering when it returns false.
	Condition func(s *State) bool
	Script    func(s *State) Script
	Process   func(r Response, s *State) Patch
	Next      func(r Response, s *State) StepID

	// To is the successor when Next is nil. Targets lists every other id Next
	// can return, so the graph can be checked when the registry is built.
	To      StepID
	Targets []StepID

	// Label overrides the transcript text derived from a response.
	Label func(r Response, s *State, sc Script) string
	// Quiet suppresses the user transcript entry (loaders, spinners).
	Quiet bool
}

// Applies evaluates the guard condition.
func (st *Step) Applies(s *State) bool {
	return st.Condition == nil || st.Condition(s)
}

// Render evaluates the script.
func (st *Step) Render(s *State) Script {
	if st.Script == nil {
		return Script{}
	}
	return st.Script(s)
}

// Reduce evaluates the response handler.
func (st *Step) Reduce(r Response, s *State) Patch {
	if st.Process == nil {
		return nil
	}
	return st.Process(r, s)
}

// NextStep evaluates the transition. A step with neither Next nor To points at itself.
func (st *Step) NextStep(r Response, s *State) StepID {
	if st.Next != nil {
		return st.Next(r, s)
	}
	if st.To != "" {
		return st.To
	}
	return st.ID
}

// Edges returns the statically declared successors.
func (st *Step) Edges() []StepID {
	edges := make([]StepID, 0, len(st.Targets)+1)
	if st.To != "" {
		edges = append(edges, st.To)
	}
	for _, t := range st.Targets {
		if !slices.Contains(edges, t) {
			edges = append(edges, t)
		}
	}
	if len(edges) == 0 {
		edges = append(edges, st.ID)
	}
	return edges
}

// Interactive reports whether the step waits for a widget response.
func (st *Step) Interactive() bool {
	return st.Widget != WidgetNone && st.Widget != ""
}
