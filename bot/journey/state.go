package journey

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Role tells who produced a transcript entry.
type Role string

const (
	RoleBot  Role = "bot"
	RoleUser Role = "user"
)

// Entry is a single transcript bubble.
type Entry struct {
	Role   Role      `json:"role" bson:"role"`
	StepID StepID    `json:"step_id" bson:"step_id"`
	Text   string    `json:"text" bson:"text"`
	At     time.Time `json:"at" bson:"at"`
}

// Answer records a response that was fed through a step's reducer.
// The log is what edit-in-place replays.
type Answer struct {
	StepID  StepID     `json:"step_id" bson:"step_id"`
	Widget  WidgetType `json:"widget" bson:"widget"`
	Payload string     `json:"payload" bson:"payload"`
	At      time.Time  `json:"at" bson:"at"`
}

// Patch is the partial state returned by a step's response handler.
type Patch map[string]any

// State is the journey record for one user's pass through the flow.
type State struct {
	ID              string         `json:"id" bson:"id"`
	Product         string         `json:"product" bson:"product"`
	CurrentStep     StepID         `json:"current_step" bson:"current_step"`
	CurrentModule   Module         `json:"current_module" bson:"current_module"`
	Status          Status         `json:"status" bson:"status"`
	IsTyping        bool           `json:"is_typing" bson:"is_typing"`
	ShowExpertPanel bool           `json:"show_expert_panel" bson:"show_expert_panel"`
	ShowAIChat      bool           `json:"show_ai_chat" bson:"show_ai_chat"`
	Transcript      []Entry        `json:"transcript" bson:"transcript"`
	Answers         []Answer       `json:"answers" bson:"answers"`
	Data            map[string]any `json:"data" bson:"data"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updated_at"`

	// Now is the logical time of the last processed response.
	// Reducers read it instead of the wall clock so replays are deterministic.
	Now time.Time `json:"now" bson:"now"`
}

// NewState creates a state positioned at the initial step with a copy of initial data.
func NewState(product, id string, initial StepID, data Patch) *State {
	now := time.Now()
	s := &State{
		ID:          id,
		Product:     product,
		CurrentStep: initial,
		Status:      StatusActive,
		Data:        make(map[string]any, len(data)),
		CreatedAt:   now,
		UpdatedAt:   now,
		Now:         now,
	}
	for k, v := range data {
		s.Data[k] = v
	}
	return s
}

// Clone returns a copy that shares no slices or maps with the receiver.
// Values stored in Data are copied shallowly.
func (s *State) Clone() *State {
	c := *s
	c.Transcript = slices.Clone(s.Transcript)
	c.Answers = slices.Clone(s.Answers)
	c.Data = maps.Clone(s.Data)
	if c.Data == nil {
		c.Data = make(map[string]any)
	}
	return &c
}

// Patch keys that address UI flags instead of data fields.
const (
	KeyShowExpertPanel = "showExpertPanel"
	KeyShowAIChat      = "showAIChat"
)

// Apply merges a patch into a copy of the state and returns the copy.
func (s *State) Apply(p Patch) *State {
	c := s.Clone()
	for k, v := range p {
		switch k {
		case KeyShowExpertPanel:
			c.ShowExpertPanel, _ = v.(bool)
		case KeyShowAIChat:
			c.ShowAIChat, _ = v.(bool)
		default:
			c.Data[k] = v
		}
	}
	return c
}

// Has reports whether a data key is present and non-nil.
func (s *State) Has(key string) bool {
	v, ok := s.Data[key]
	return ok && v != nil
}

// GetString retrieves a string value from the state data.
func (s *State) GetString(key string) string {
	if v, ok := s.Data[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// GetInt retrieves an integer value from the state data.
func (s *State) GetInt(key string) int {
	if v, ok := s.Data[key]; ok {
		switch val := v.(type) {
		case int:
			return val
		case int32:
			return int(val)
		case int64:
			return int(val)
		case float64:
			return int(val)
		}
	}
	return 0
}

// GetFloat retrieves a floating point value from the state data.
func (s *State) GetFloat(key string) float64 {
	if v, ok := s.Data[key]; ok {
		switch val := v.(type) {
		case float64:
			return val
		case float32:
			return float64(val)
		case int:
			return float64(val)
		case int32:
			return float64(val)
		case int64:
			return float64(val)
		}
	}
	return 0
}

// GetBool retrieves a boolean value from the state data.
func (s *State) GetBool(key string) bool {
	if v, ok := s.Data[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// GetStrings retrieves a string list from the state data.
func (s *State) GetStrings(key string) []string {
	v, _ := Get[[]string](s, key)
	return v
}

// Get retrieves a typed value from the state data. Values that went through a
// JSON or BSON round trip come back as generic maps and slices; those are
// converted by re-encoding them into T.
func Get[T any](s *State, key string) (T, bool) {
	var zero T
	v, ok := s.Data[key]
	if !ok || v == nil {
		return zero, false
	}
	if t, ok := v.(T); ok {
		return t, true
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false
	}
	return out, true
}

// LastAnswer returns the index of the most recent answer recorded for a step, or -1.
func (s *State) LastAnswer(id StepID) int {
	for i := len(s.Answers) - 1; i >= 0; i-- {
		if s.Answers[i].StepID == id {
			return i
		}
	}
	return -1
}

// LastUserEntry returns the index of the most recent user entry for a step, or -1.
func (s *State) LastUserEntry(id StepID) int {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		e := s.Transcript[i]
		if e.Role == RoleUser && e.StepID == id {
			return i
		}
	}
	return -1
}
