package journey

import "slices"

// SetModules declares the order in which modules appear on the progress bar.
func (c *Catalog) SetModules(order ...Module) {
	c.modules = order
}

// Modules returns the progress bar order.
func (c *Catalog) Modules() []Module {
	return slices.Clone(c.modules)
}

// Progress returns how far along the progress bar a module sits, in percent.
// Modules outside the declared order report 100.
func (c *Catalog) Progress(m Module) int {
	i := slices.Index(c.modules, m)
	if i < 0 {
		return 100
	}
	return (i + 1) * 100 / len(c.modules)
}

// Snapshot is the externally visible view of a journey, suitable for
// persisting by a front end and rendering a progress bar.
type Snapshot struct {
	ID              string         `json:"id"`
	Product         string         `json:"product"`
	CurrentStep     StepID         `json:"current_step"`
	CurrentModule   Module         `json:"current_module"`
	Status          Status         `json:"status"`
	Progress        int            `json:"progress"`
	IsTyping        bool           `json:"is_typing"`
	ShowExpertPanel bool           `json:"show_expert_panel"`
	ShowAIChat      bool           `json:"show_ai_chat"`
	Transcript      []Entry        `json:"transcript"`
	Data            map[string]any `json:"data"`
	Prompt          *Prompt        `json:"prompt,omitempty"`
}

// Snapshot builds the view of a journey.
func (e *Engine) Snapshot(state *State) Snapshot {
	snap := Snapshot{
		ID:              state.ID,
		Product:         state.Product,
		CurrentStep:     state.CurrentStep,
		CurrentModule:   state.CurrentModule,
		Status:          state.Status,
		IsTyping:        state.IsTyping,
		ShowExpertPanel: state.ShowExpertPanel,
		ShowAIChat:      state.ShowAIChat,
		Transcript:      slices.Clone(state.Transcript),
		Data:            state.Clone().Data,
	}
	if c, ok := e.catalogs[state.Product]; ok {
		snap.Progress = c.Progress(state.CurrentModule)
	}
	if p, ok := e.Prompt(state); ok {
		snap.Prompt = &p
	}
	return snap
}
