package journey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"CoverBot/internal/lib/keylock"
	"CoverBot/internal/lib/sl"

	"github.com/google/uuid"
)

const defaultMaxTransitions = 50

// Engine interprets step catalogs. It owns the advance loop, validates
// responses against the awaiting step and persists every journey after each
// public operation.
type Engine struct {
	catalogs       map[string]*Catalog
	storage        Storage
	presenter      Presenter
	pacer          Pacer
	pacing         Pacing
	resolvers      map[WidgetType]Resolver
	metrics        Metrics
	clock          func() time.Time
	newID          func() string
	maxTransitions int
	locks          *keylock.Locks
	log            *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPresenter sets the front end that receives narration and prompts.
func WithPresenter(p Presenter) EngineOption {
	return func(e *Engine) { e.presenter = p }
}

// WithPacer sets the pacer used for typing and loader delays.
func WithPacer(p Pacer) EngineOption {
	return func(e *Engine) { e.pacer = p }
}

// WithPacing overrides the typing delay model.
func WithPacing(p Pacing) EngineOption {
	return func(e *Engine) { e.pacing = p }
}

// WithResolver registers the loader for a widget type.
func WithResolver(w WidgetType, r Resolver) EngineOption {
	return func(e *Engine) { e.resolvers[w] = r }
}

func WithMetrics(m Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

func WithIDGenerator(f func() string) EngineOption {
	return func(e *Engine) { e.newID = f }
}

// WithMaxTransitions bounds the number of steps the advance loop may
// pass through without stopping.
func WithMaxTransitions(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxTransitions = n
		}
	}
}

// NewEngine creates a new journey engine.
func NewEngine(storage Storage, log *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		catalogs:       make(map[string]*Catalog),
		storage:        storage,
		presenter:      NopPresenter{},
		pacer:          SleepPacer{},
		pacing:         DefaultPacing,
		resolvers:      make(map[WidgetType]Resolver),
		metrics:        nopMetrics{},
		clock:          time.Now,
		newID:          uuid.NewString,
		maxTransitions: defaultMaxTransitions,
		locks:          keylock.New(),
		log:            log.With(sl.Module("journey.engine")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterCatalog adds a product catalog to the engine.
func (e *Engine) RegisterCatalog(c *Catalog) {
	e.catalogs[c.Product()] = c
	e.log.Info("registered catalog",
		slog.String("product", c.Product()),
		slog.String("initial", string(c.Initial())),
		slog.Int("steps", len(c.Steps())),
	)
}

// Catalog returns the catalog registered for a product.
func (e *Engine) Catalog(product string) (*Catalog, bool) {
	c, ok := e.catalogs[product]
	return c, ok
}

// Products lists the registered product lines.
func (e *Engine) Products() []string {
	out := make([]string, 0, len(e.catalogs))
	for p := range e.catalogs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Start begins a fresh journey at the catalog's initial step and runs the
// advance loop until the journey awaits input or goes idle. An empty id is
// replaced by a generated one. Starting an existing id replaces its record.
func (e *Engine) Start(ctx context.Context, product, id string) (*State, error) {
	c, ok := e.catalogs[product]
	if !ok {
		return nil, fmt.Errorf("product %q: %w", product, ErrJourneyNotFound)
	}
	if id == "" {
		id = e.newID()
	}

	key := memoryKey(product, id)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	state := e.fresh(c, id)
	e.metrics.JourneyStarted(product)
	e.log.Info("starting journey",
		slog.String("product", product),
		slog.String("journey_id", id),
	)

	state = e.advance(ctx, c, state)
	return state, e.save(ctx, state)
}

// Reset replaces an existing journey with a fresh one at the initial step.
func (e *Engine) Reset(ctx context.Context, product, id string) (*State, error) {
	key := memoryKey(product, id)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	old, c, err := e.load(ctx, product, id)
	if err != nil {
		return nil, err
	}

	state := e.fresh(c, id)
	state.CreatedAt = old.CreatedAt
	e.log.Info("resetting journey",
		slog.String("product", product),
		slog.String("journey_id", id),
	)

	state = e.advance(ctx, c, state)
	return state, e.save(ctx, state)
}

// Resume continues the advance loop of a journey that was interrupted while
// active, for example by a cancelled context during a loader delay.
func (e *Engine) Resume(ctx context.Context, product, id string) (*State, error) {
	key := memoryKey(product, id)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	state, c, err := e.load(ctx, product, id)
	if err != nil {
		return nil, err
	}
	if state.Status != StatusActive {
		return state, nil
	}
	state = e.advance(ctx, c, state)
	return state, e.save(ctx, state)
}

// Get loads a journey.
func (e *Engine) Get(ctx context.Context, product, id string) (*State, error) {
	state, _, err := e.load(ctx, product, id)
	return state, err
}

// Delete removes a journey record.
func (e *Engine) Delete(ctx context.Context, product, id string) error {
	key := memoryKey(product, id)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)
	return e.storage.Delete(ctx, product, id)
}

// Respond feeds a widget response to the awaiting step.
func (e *Engine) Respond(ctx context.Context, product, id string, r Response) (*State, error) {
	return e.respond(ctx, product, id, func(*Step, Script) (Response, error) {
		return r, nil
	})
}

// RespondRaw decodes a JSON payload for the awaiting step's widget and responds with it.
func (e *Engine) RespondRaw(ctx context.Context, product, id string, raw []byte) (*State, error) {
	return e.respond(ctx, product, id, func(st *Step, _ Script) (Response, error) {
		return DecodeResponse(st.Widget, raw)
	})
}

// RespondText parses free text typed in a text-only front end into a response.
func (e *Engine) RespondText(ctx context.Context, product, id, text string) (*State, error) {
	return e.respond(ctx, product, id, func(st *Step, sc Script) (Response, error) {
		return ParseInput(st.Widget, sc, text)
	})
}

func (e *Engine) respond(ctx context.Context, product, id string, build func(*Step, Script) (Response, error)) (*State, error) {
	key := memoryKey(product, id)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	state, c, err := e.load(ctx, product, id)
	if err != nil {
		return nil, err
	}
	if state.Status != StatusAwaiting {
		return state, ErrNotAwaiting
	}

	st, ok := c.Lookup(state.CurrentStep)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrUnknownStep, state.CurrentStep)
	}

	var script Script
	if err := safely(func() { script = st.Render(state) }); err != nil {
		return e.failover(ctx, c, state, "render", err)
	}

	r, err := build(st, script)
	if err == nil {
		err = checkContract(st, script, r)
	}
	if err != nil {
		e.metrics.Response(product, st.Widget, false)
		e.log.Debug("rejected response",
			slog.String("journey_id", id),
			slog.String("step_id", string(st.ID)),
			sl.Err(err),
		)
		return state, err
	}
	e.metrics.Response(product, st.Widget, true)

	next, err := e.apply(ctx, st, script, state, r)
	if err != nil {
		return e.failover(ctx, c, state, processReason(err), err)
	}

	next = e.advance(ctx, c, next)
	return next, e.save(ctx, next)
}

// Edit re-answers a step that was answered earlier. The transcript is cut
// back to just before that step's most recent user entry, the state is
// rebuilt by replaying the earlier answers from the initial data, the new
// response is processed and the journey advances from there.
func (e *Engine) Edit(ctx context.Context, product, id string, stepID StepID, r Response) (*State, error) {
	key := memoryKey(product, id)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	state, c, err := e.load(ctx, product, id)
	if err != nil {
		return nil, err
	}

	st, ok := c.Lookup(stepID)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrUnknownStep, stepID)
	}
	answer := state.LastAnswer(stepID)
	entry := state.LastUserEntry(stepID)
	if answer < 0 || entry < 0 || st.Quiet {
		return state, fmt.Errorf("%w: %s", ErrNoAnswer, stepID)
	}

	base, err := e.replay(c, state, answer)
	if err != nil {
		return state, err
	}

	var script Script
	if err := safely(func() { script = st.Render(base) }); err != nil {
		return state, fmt.Errorf("render %s: %w", stepID, err)
	}
	if err := checkContract(st, script, r); err != nil {
		e.metrics.Response(product, st.Widget, false)
		return state, err
	}
	e.metrics.Response(product, st.Widget, true)

	base.Transcript = append([]Entry(nil), state.Transcript[:entry]...)
	base.CurrentStep = stepID
	base.CurrentModule = st.Module

	e.log.Info("editing answer",
		slog.String("journey_id", id),
		slog.String("step_id", string(stepID)),
		slog.Int("truncated", len(state.Transcript)-entry),
	)

	next, err := e.apply(ctx, st, script, base, r)
	if err != nil {
		return e.failover(ctx, c, base, processReason(err), err)
	}

	next = e.advance(ctx, c, next)
	return next, e.save(ctx, next)
}

// Update merges a patch into a journey outside of any step, e.g. to toggle UI panels.
func (e *Engine) Update(ctx context.Context, product, id string, patch Patch) (*State, error) {
	key := memoryKey(product, id)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	state, _, err := e.load(ctx, product, id)
	if err != nil {
		return nil, err
	}
	state = state.Apply(patch)
	return state, e.save(ctx, state)
}

// Prompt renders the widget the journey is waiting on.
func (e *Engine) Prompt(state *State) (Prompt, bool) {
	if state.Status != StatusAwaiting {
		return Prompt{}, false
	}
	c, ok := e.catalogs[state.Product]
	if !ok {
		return Prompt{}, false
	}
	st, ok := c.Lookup(state.CurrentStep)
	if !ok {
		return Prompt{}, false
	}
	var script Script
	if err := safely(func() { script = st.Render(state) }); err != nil {
		return Prompt{}, false
	}
	return e.prompt(state, st, script), true
}

func (e *Engine) prompt(state *State, st *Step, script Script) Prompt {
	return Prompt{
		JourneyID: state.ID,
		StepID:    st.ID,
		Module:    st.Module,
		Widget:    st.Widget,
		Script:    script,
	}
}

// advance runs steps until one awaits input, one points at itself, or the
// transition bound is hit.
func (e *Engine) advance(ctx context.Context, c *Catalog, state *State) *State {
	state.Status = StatusActive
	fail := func(reason string, err error) bool {
		if e.toFallback(c, state, reason, err) {
			return true
		}
		state.Status = StatusIdle
		return false
	}

	for i := 0; i < e.maxTransitions; i++ {
		if ctx.Err() != nil {
			return state
		}

		st, ok := c.Lookup(state.CurrentStep)
		if !ok {
			if !fail("unknown_step", fmt.Errorf("%w: %s", ErrUnknownStep, state.CurrentStep)) {
				return state
			}
			continue
		}

		var applies bool
		if err := safely(func() { applies = st.Applies(state) }); err != nil {
			if !fail("condition", err) {
				return state
			}
			continue
		}
		if !applies {
			var next StepID
			if err := safely(func() { next = st.NextStep(nil, state) }); err != nil {
				if !fail("next", err) {
					return state
				}
				continue
			}
			if err := declared(st, next); err != nil {
				if !fail("undeclared_edge", err) {
					return state
				}
				continue
			}
			if next == st.ID {
				state.Status = StatusIdle
				return state
			}
			e.transition(state, st.ID, next)
			continue
		}

		var script Script
		if err := safely(func() { script = st.Render(state) }); err != nil {
			if !fail("render", err) {
				return state
			}
			continue
		}
		state.CurrentModule = st.Module

		if msg := script.Message(); msg != "" {
			if err := e.narrate(ctx, state, st, msg); err != nil {
				return state
			}
		}

		if !st.Interactive() {
			var next StepID
			if err := safely(func() { next = st.NextStep(nil, state) }); err != nil {
				if !fail("next", err) {
					return state
				}
				continue
			}
			if err := declared(st, next); err != nil {
				if !fail("undeclared_edge", err) {
					return state
				}
				continue
			}
			if next == st.ID {
				state.Status = StatusIdle
				return state
			}
			e.transition(state, st.ID, next)
			continue
		}

		if resolver, ok := e.resolvers[st.Widget]; ok {
			if err := e.pacer.Wait(ctx, st.AutoAdvance); err != nil {
				return state
			}
			r, err := resolver.Resolve(ctx, st, state)
			if err == nil {
				err = checkContract(st, script, r)
			}
			if err != nil {
				if ctx.Err() != nil {
					return state
				}
				if !fail("resolver", err) {
					return state
				}
				continue
			}
			next, err := e.apply(ctx, st, script, state, r)
			if err != nil {
				if !fail(processReason(err), err) {
					return state
				}
				continue
			}
			state = next
			continue
		}

		state.Status = StatusAwaiting
		if err := e.presenter.Ask(ctx, state, e.prompt(state, st, script)); err != nil {
			e.log.Warn("presenter ask failed",
				slog.String("journey_id", state.ID),
				slog.String("step_id", string(st.ID)),
				sl.Err(err),
			)
		}
		return state
	}

	e.log.Error("transition limit reached",
		slog.String("journey_id", state.ID),
		slog.String("step_id", string(state.CurrentStep)),
		slog.Int("limit", e.maxTransitions),
	)
	state.Status = StatusIdle
	return state
}

// apply records a response, runs the step's reducer on a copy of the state
// and moves the copy to the next step. The input state is not modified when
// the step panics.
func (e *Engine) apply(ctx context.Context, st *Step, script Script, state *State, r Response) (*State, error) {
	now := e.clock()
	payload, err := EncodeResponse(r)
	if err != nil {
		return state, err
	}

	var (
		label  string
		merged *State
		next   StepID
	)
	err = safely(func() {
		working := state.Clone()
		working.Now = now
		label = e.label(st, r, working, script)
		merged = working.Apply(st.Reduce(r, working))
		next = st.NextStep(r, merged)
	})
	if err != nil {
		return state, fmt.Errorf("step %s: %w", st.ID, err)
	}
	if err := declared(st, next); err != nil {
		return state, err
	}

	merged.Answers = append(merged.Answers, Answer{
		StepID:  st.ID,
		Widget:  st.Widget,
		Payload: payload,
		At:      now,
	})
	if !st.Quiet && label != "" {
		entry := Entry{Role: RoleUser, StepID: st.ID, Text: label, At: now}
		merged.Transcript = append(merged.Transcript, entry)
		if err := e.presenter.Say(ctx, merged, entry); err != nil {
			e.log.Warn("presenter say failed", slog.String("journey_id", merged.ID), sl.Err(err))
		}
	}

	_ = e.pacer.Wait(ctx, e.pacing.Response)
	e.transition(merged, st.ID, next)
	merged.Status = StatusActive
	return merged, nil
}

// declared reports an error when next is neither the step itself nor one of
// its declared edges.
func declared(st *Step, next StepID) error {
	if next == st.ID || slices.Contains(st.Edges(), next) {
		return nil
	}
	return fmt.Errorf("%w: step %s moved to undeclared %q", ErrInvalidGraph, st.ID, next)
}

func processReason(err error) string {
	if errors.Is(err, ErrInvalidGraph) {
		return "undeclared_edge"
	}
	return "process"
}

func (e *Engine) narrate(ctx context.Context, state *State, st *Step, msg string) error {
	state.IsTyping = true
	if err := e.presenter.Typing(ctx, state); err != nil {
		e.log.Warn("presenter typing failed", slog.String("journey_id", state.ID), sl.Err(err))
	}
	err := e.pacer.Wait(ctx, e.pacing.Typing(msg))
	state.IsTyping = false
	if err != nil {
		return err
	}

	entry := Entry{Role: RoleBot, StepID: st.ID, Text: msg, At: e.clock()}
	state.Transcript = append(state.Transcript, entry)
	if err := e.presenter.Say(ctx, state, entry); err != nil {
		e.log.Warn("presenter say failed", slog.String("journey_id", state.ID), sl.Err(err))
	}
	return nil
}

func (e *Engine) transition(state *State, from, to StepID) {
	e.log.Debug("transitioning",
		slog.String("journey_id", state.ID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	e.metrics.Transition(state.Product, from, to)
	state.CurrentStep = to
}

// toFallback moves a broken journey to the catalog's fallback step.
// It reports false when there is nowhere left to go.
func (e *Engine) toFallback(c *Catalog, state *State, reason string, cause error) bool {
	e.log.Error("step failed",
		slog.String("journey_id", state.ID),
		slog.String("step_id", string(state.CurrentStep)),
		slog.String("reason", reason),
		sl.Err(cause),
	)
	fallback := c.Fallback()
	if fallback == "" || state.CurrentStep == fallback {
		return false
	}
	if _, ok := c.Lookup(fallback); !ok {
		return false
	}
	e.metrics.Fallback(state.Product, reason)
	state.ShowExpertPanel = true
	e.transition(state, state.CurrentStep, fallback)
	return true
}

// failover is used by the public operations when a step fails outside the
// advance loop. The journey lands on the fallback step and is saved.
func (e *Engine) failover(ctx context.Context, c *Catalog, state *State, reason string, cause error) (*State, error) {
	if !e.toFallback(c, state, reason, cause) {
		state.Status = StatusIdle
		return state, e.save(ctx, state)
	}
	state = e.advance(ctx, c, state)
	return state, e.save(ctx, state)
}

func (e *Engine) replay(c *Catalog, state *State, n int) (*State, error) {
	base := e.fresh(c, state.ID)
	base.CreatedAt = state.CreatedAt
	base.ShowAIChat = state.ShowAIChat

	for _, a := range state.Answers[:n] {
		st, ok := c.Lookup(a.StepID)
		if !ok {
			return nil, fmt.Errorf("replay: %w: %s", ErrUnknownStep, a.StepID)
		}
		r, err := DecodeResponse(a.Widget, []byte(a.Payload))
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", a.StepID, err)
		}
		base.Now = a.At
		var patch Patch
		if err := safely(func() { patch = st.Reduce(r, base) }); err != nil {
			return nil, fmt.Errorf("replay %s: %w", a.StepID, err)
		}
		base = base.Apply(patch)
		base.Answers = append(base.Answers, a)
	}
	return base, nil
}

func (e *Engine) fresh(c *Catalog, id string) *State {
	state := NewState(c.Product(), id, c.Initial(), c.InitialData())
	now := e.clock()
	state.CreatedAt = now
	state.UpdatedAt = now
	state.Now = now
	return state
}

func (e *Engine) load(ctx context.Context, product, id string) (*State, *Catalog, error) {
	c, ok := e.catalogs[product]
	if !ok {
		return nil, nil, fmt.Errorf("product %q: %w", product, ErrJourneyNotFound)
	}
	state, err := e.storage.Load(ctx, product, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load journey: %w", err)
	}
	if state == nil {
		return nil, nil, ErrJourneyNotFound
	}
	if state.Data == nil {
		state.Data = make(map[string]any)
	}
	return state, c, nil
}

func (e *Engine) save(ctx context.Context, state *State) error {
	state.UpdatedAt = e.clock()
	// Persist even when the request context is gone so progress is not lost.
	if err := e.storage.Save(context.WithoutCancel(ctx), state); err != nil {
		e.log.Error("failed to save journey", slog.String("journey_id", state.ID), sl.Err(err))
		return fmt.Errorf("save journey: %w", err)
	}
	return nil
}

// checkContract verifies the response variant matches the step's widget and
// that picked ids come from the options the step offered.
func checkContract(st *Step, script Script, r Response) error {
	if r == nil {
		return fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	if !r.Accepts(st.Widget) {
		return fmt.Errorf("%w: %T does not answer a %s widget", ErrMalformedResponse, r, st.Widget)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(script.Options) == 0 {
		return nil
	}
	switch v := r.(type) {
	case Choice:
		if _, ok := script.Option(v.ID); !ok {
			return fmt.Errorf("%w: unknown option %q", ErrMalformedResponse, v.ID)
		}
	case PlanPick:
		if _, ok := script.Option(v.Plan); !ok {
			return fmt.Errorf("%w: unknown plan %q", ErrMalformedResponse, v.Plan)
		}
	case AddOnPick:
		for _, id := range v.AddOns {
			if _, ok := script.Option(id); !ok {
				return fmt.Errorf("%w: unknown add-on %q", ErrMalformedResponse, id)
			}
		}
	}
	return nil
}

// errStepPanic wraps a panic raised by a step function.
var errStepPanic = errors.New("step panicked")

func safely(fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", errStepPanic, p)
		}
	}()
	fn()
	return nil
}
