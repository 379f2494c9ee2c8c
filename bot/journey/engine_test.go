package journey

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"CoverBot/entity"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var yesNo = []Option{{ID: "yes", Label: "Yes"}, {ID: "no", Label: "No"}}

func testCatalog() *Catalog {
	primary := NewRegistry("test", "intro.welcome",
		Step{
			ID: "intro.welcome", Module: "intro", Widget: WidgetNone,
			Script: func(*State) Script { return Say("Hi there") },
			To:     "intro.type",
		},
		Step{
			ID: "intro.type", Module: "intro", Widget: WidgetSelection,
			Script: func(*State) Script {
				return Script{
					BotMessages: []string{"Car or bike?"},
					Options:     []Option{{ID: "car", Label: "Car"}, {ID: "bike", Label: "Bike"}},
				}
			},
			Process: func(r Response, _ *State) Patch { return Patch{"type": ChoiceID(r)} },
			To:      "intro.cng",
		},
		Step{
			ID: "intro.cng", Module: "intro", Widget: WidgetSelection,
			Condition: func(s *State) bool { return s.GetString("type") == "car" },
			Script: func(*State) Script {
				return Script{BotMessages: []string{"Any CNG kit?"}, Options: yesNo}
			},
			Process: func(r Response, _ *State) Patch { return Patch{"cng": ChoiceID(r) == "yes"} },
			To:      "intro.name",
		},
		Step{
			ID: "intro.name", Module: "intro", Widget: WidgetText,
			Script:  func(*State) Script { return Say("Your name?") },
			Process: func(r Response, s *State) Patch { return Patch{"name": TextValue(r), "namedAt": s.Now} },
			To:      "intro.lookup",
		},
		Step{
			ID: "intro.lookup", Module: "vehicle", Widget: WidgetVehicleFetch, Quiet: true,
			AutoAdvance: time.Second,
			Script:      func(*State) Script { return Say("Looking up your vehicle") },
			Process: func(r Response, _ *State) Patch {
				v := r.(VehicleLookup)
				return Patch{"vehicle": v.Vehicle, "found": v.Found}
			},
			To: "intro.done",
		},
		Step{
			ID: "intro.done", Module: "vehicle", Widget: WidgetNone,
			Script: func(s *State) Script { return Say("All set, " + s.GetString("name")) },
			To:     "db.home",
		},
		Step{
			ID: "support.fallback", Module: "support", Widget: WidgetNone,
			Script: func(*State) Script { return Say("Something went wrong, an expert will reach out") },
		},
	)
	dashboard := NewRegistry("dashboard", "db.home",
		Step{
			ID: "db.home", Module: "dashboard", Widget: WidgetSelection,
			Script: func(*State) Script {
				return Script{BotMessages: []string{"Welcome to your dashboard"}, Options: []Option{{ID: "faq", Label: "FAQ"}}}
			},
			To: "db.home",
		},
	)
	return NewCatalog("motor", primary, dashboard, "support.fallback", func() Patch {
		return Patch{"type": "", "found": false}
	})
}

type recordingPresenter struct {
	mu      sync.Mutex
	typing  int
	entries []Entry
	prompts []Prompt
}

func (p *recordingPresenter) Typing(context.Context, *State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typing++
	return nil
}

func (p *recordingPresenter) Say(_ context.Context, _ *State, e Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	return nil
}

func (p *recordingPresenter) Ask(_ context.Context, _ *State, pr Prompt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, pr)
	return nil
}

type countingMetrics struct {
	nopMetrics
	fallbacks []string
}

func (m *countingMetrics) Fallback(_ string, reason string) {
	m.fallbacks = append(m.fallbacks, reason)
}

var fixedNow = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

func lookupResolver(found bool) Resolver {
	return ResolverFunc(func(context.Context, *Step, *State) (Response, error) {
		return VehicleLookup{Found: found, Vehicle: entity.Vehicle{Type: entity.VehicleCar, Brand: "Tata", Model: "Nexon", Year: 2022}}, nil
	})
}

func newTestEngine(t *testing.T, c *Catalog, opts ...EngineOption) *Engine {
	t.Helper()
	base := []EngineOption{
		WithPacer(NoPacer{}),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "j1" }),
		WithResolver(WidgetVehicleFetch, lookupResolver(true)),
	}
	e := NewEngine(NewMemoryStorage(), slog.New(slog.NewTextHandler(io.Discard, nil)), append(base, opts...)...)
	e.RegisterCatalog(c)
	return e
}

func texts(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Text)
	}
	return out
}

func TestStartNarratesUntilFirstWidget(t *testing.T) {
	pr := &recordingPresenter{}
	e := newTestEngine(t, testCatalog(), WithPresenter(pr))

	s, err := e.Start(context.Background(), "motor", "")
	require.NoError(t, err)

	assert.Equal(t, "j1", s.ID)
	assert.Equal(t, StepID("intro.type"), s.CurrentStep)
	assert.Equal(t, StatusAwaiting, s.Status)
	assert.Equal(t, []string{"Hi there", "Car or bike?"}, texts(s.Transcript))
	assert.False(t, s.IsTyping)
	assert.Equal(t, 2, pr.typing)
	require.Len(t, pr.prompts, 1)
	assert.Equal(t, WidgetSelection, pr.prompts[0].Widget)

	loaded, err := e.Get(context.Background(), "motor", "j1")
	require.NoError(t, err)
	assert.Equal(t, s.CurrentStep, loaded.CurrentStep)
}

func TestGuardSkipsWithoutNarration(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testCatalog())
	_, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)

	s, err := e.Respond(ctx, "motor", "j1", Choice{ID: "bike"})
	require.NoError(t, err)

	assert.Equal(t, StepID("intro.name"), s.CurrentStep)
	for _, entry := range s.Transcript {
		assert.NotEqual(t, StepID("intro.cng"), entry.StepID)
	}
	assert.Equal(t, []string{"Hi there", "Car or bike?", "Bike", "Your name?"}, texts(s.Transcript))
}

func TestLoaderResolvesAndReachesDashboard(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testCatalog())
	_, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	_, err = e.Respond(ctx, "motor", "j1", Choice{ID: "car"})
	require.NoError(t, err)
	_, err = e.Respond(ctx, "motor", "j1", Choice{ID: "no"})
	require.NoError(t, err)
	s, err := e.Respond(ctx, "motor", "j1", Text{Value: "Asha"})
	require.NoError(t, err)

	assert.Equal(t, StepID("db.home"), s.CurrentStep)
	assert.Equal(t, Module("dashboard"), s.CurrentModule)
	assert.True(t, s.GetBool("found"))
	assert.False(t, s.GetBool("cng"))
	assert.Equal(t, []string{
		"Hi there", "Car or bike?", "Car", "Any CNG kit?", "No", "Your name?", "Asha",
		"Looking up your vehicle", "All set, Asha", "Welcome to your dashboard",
	}, texts(s.Transcript))
	require.Len(t, s.Answers, 4)
	assert.Equal(t, StepID("intro.lookup"), s.Answers[3].StepID)
}

func TestNoneStepPointingAtItselfGoesIdle(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog("motor", NewRegistry("test", "end",
		Step{ID: "end", Widget: WidgetNone, Script: func(*State) Script { return Say("Sorry, we cannot insure this vehicle") }},
	), nil, "", nil)
	e := newTestEngine(t, c)

	s, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, s.Status)
	assert.Equal(t, StepID("end"), s.CurrentStep)
	assert.Len(t, s.Transcript, 1)

	_, err = e.Respond(ctx, "motor", "j1", Choice{ID: "anything"})
	assert.ErrorIs(t, err, ErrNotAwaiting)
}

func TestMalformedResponseLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testCatalog())
	before, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)

	for name, r := range map[string]Response{
		"wrong variant":  Text{Value: "car"},
		"unknown option": Choice{ID: "truck"},
		"empty choice":   Choice{},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.Respond(ctx, "motor", "j1", r)
			require.ErrorIs(t, err, ErrMalformedResponse)

			after, err := e.Get(ctx, "motor", "j1")
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(before, after))
		})
	}

	_, err = e.RespondRaw(ctx, "motor", "j1", []byte(`{"id":`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPanickingStepFallsBack(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog("motor", NewRegistry("test", "ask",
		Step{
			ID: "ask", Widget: WidgetText,
			Script:  func(*State) Script { return Say("Say something") },
			Process: func(Response, *State) Patch { panic("boom") },
			To:      "ask",
		},
		Step{ID: "support.fallback", Widget: WidgetNone, Script: func(*State) Script { return Say("Let me get an expert") }},
	), nil, "support.fallback", nil)
	m := &countingMetrics{}
	e := newTestEngine(t, c, WithMetrics(m))

	_, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	s, err := e.Respond(ctx, "motor", "j1", Text{Value: "hello"})
	require.NoError(t, err)

	assert.Equal(t, StepID("support.fallback"), s.CurrentStep)
	assert.Equal(t, StatusIdle, s.Status)
	assert.Empty(t, s.Answers)
	assert.True(t, s.ShowExpertPanel)
	assert.Equal(t, []string{"process"}, m.fallbacks)
}

func TestUnknownNextStepFallsBack(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog("motor", NewRegistry("test", "start",
		Step{ID: "start", Widget: WidgetNone, Targets: []StepID{"nowhere"}, Next: func(Response, *State) StepID { return "nowhere" }},
		Step{ID: "support.fallback", Widget: WidgetNone, Script: func(*State) Script { return Say("Let me get an expert") }},
	), nil, "support.fallback", nil)
	m := &countingMetrics{}
	e := newTestEngine(t, c, WithMetrics(m))

	s, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	assert.Equal(t, StepID("support.fallback"), s.CurrentStep)
	assert.Equal(t, []string{"unknown_step"}, m.fallbacks)
}

func TestUndeclaredEdgeFallsBack(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog("motor", NewRegistry("test", "start",
		Step{ID: "start", Widget: WidgetNone, Targets: []StepID{"done"}, Next: func(Response, *State) StepID { return "summary" }},
		Step{ID: "done", Widget: WidgetNone},
		Step{ID: "summary", Widget: WidgetNone},
		Step{ID: "support.fallback", Widget: WidgetNone, Script: func(*State) Script { return Say("Let me get an expert") }},
	), nil, "support.fallback", nil)
	m := &countingMetrics{}
	e := newTestEngine(t, c, WithMetrics(m))

	s, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	assert.Equal(t, StepID("support.fallback"), s.CurrentStep)
	assert.True(t, s.ShowExpertPanel)
	assert.Equal(t, []string{"undeclared_edge"}, m.fallbacks)
}

func TestUndeclaredEdgeAfterResponseFallsBack(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog("motor", NewRegistry("test", "ask",
		Step{
			ID: "ask", Widget: WidgetText,
			Script: func(*State) Script { return Say("Your name?") },
			To:     "done",
			Next:   func(Response, *State) StepID { return "summary" },
		},
		Step{ID: "done", Widget: WidgetNone},
		Step{ID: "summary", Widget: WidgetNone},
		Step{ID: "support.fallback", Widget: WidgetNone, Script: func(*State) Script { return Say("Let me get an expert") }},
	), nil, "support.fallback", nil)
	m := &countingMetrics{}
	e := newTestEngine(t, c, WithMetrics(m))

	_, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	s, err := e.Respond(ctx, "motor", "j1", Text{Value: "Asha"})
	require.NoError(t, err)

	assert.Equal(t, StepID("support.fallback"), s.CurrentStep)
	assert.Empty(t, s.Answers)
	assert.Equal(t, []string{"undeclared_edge"}, m.fallbacks)
}

func TestResolverFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testCatalog(), WithResolver(WidgetVehicleFetch, ResolverFunc(
		func(context.Context, *Step, *State) (Response, error) { return nil, errors.New("gateway down") },
	)))
	_, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	_, err = e.Respond(ctx, "motor", "j1", Choice{ID: "bike"})
	require.NoError(t, err)
	s, err := e.Respond(ctx, "motor", "j1", Text{Value: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, StepID("support.fallback"), s.CurrentStep)
}

func TestTransitionLimit(t *testing.T) {
	c := NewCatalog("motor", NewRegistry("test", "a",
		Step{ID: "a", To: "b"},
		Step{ID: "b", To: "a"},
	), nil, "", nil)
	e := newTestEngine(t, c, WithMaxTransitions(10))

	s, err := e.Start(context.Background(), "motor", "j1")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, s.Status)
}

func TestEditTruncatesAndReplays(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testCatalog())
	_, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	_, err = e.Respond(ctx, "motor", "j1", Choice{ID: "car"})
	require.NoError(t, err)
	_, err = e.Respond(ctx, "motor", "j1", Choice{ID: "yes"})
	require.NoError(t, err)
	before, err := e.Respond(ctx, "motor", "j1", Text{Value: "Asha"})
	require.NoError(t, err)

	k := before.LastUserEntry("intro.type")
	require.Equal(t, 2, k)

	s, err := e.Edit(ctx, "motor", "j1", "intro.type", Choice{ID: "bike"})
	require.NoError(t, err)

	require.Greater(t, len(s.Transcript), k)
	assert.Equal(t, before.Transcript[:k], s.Transcript[:k])
	assert.Equal(t, Entry{Role: RoleUser, StepID: "intro.type", Text: "Bike", At: fixedNow}, s.Transcript[k])
	assert.Equal(t, "bike", s.GetString("type"))
	assert.False(t, s.Has("cng"))
	assert.False(t, s.Has("name"))
	assert.Equal(t, StepID("intro.name"), s.CurrentStep)
	assert.Len(t, s.Answers, 1)
}

func TestEditEquivalentToFreshJourney(t *testing.T) {
	ctx := context.Background()

	edited := newTestEngine(t, testCatalog())
	_, err := edited.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	_, err = edited.Respond(ctx, "motor", "j1", Choice{ID: "car"})
	require.NoError(t, err)
	_, err = edited.Respond(ctx, "motor", "j1", Choice{ID: "no"})
	require.NoError(t, err)
	_, err = edited.Edit(ctx, "motor", "j1", "intro.type", Choice{ID: "bike"})
	require.NoError(t, err)
	a, err := edited.Respond(ctx, "motor", "j1", Text{Value: "Asha"})
	require.NoError(t, err)

	fresh := newTestEngine(t, testCatalog())
	_, err = fresh.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	_, err = fresh.Respond(ctx, "motor", "j1", Choice{ID: "bike"})
	require.NoError(t, err)
	b, err := fresh.Respond(ctx, "motor", "j1", Text{Value: "Asha"})
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(b, a))
}

func TestEditRejectsUnansweredStep(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testCatalog())
	_, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)

	_, err = e.Edit(ctx, "motor", "j1", "intro.name", Text{Value: "Asha"})
	assert.ErrorIs(t, err, ErrNoAnswer)
	_, err = e.Edit(ctx, "motor", "j1", "intro.nope", Text{Value: "Asha"})
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestSameInputsSameState(t *testing.T) {
	ctx := context.Background()
	run := func() *State {
		e := newTestEngine(t, testCatalog())
		_, err := e.Start(ctx, "motor", "j1")
		require.NoError(t, err)
		_, err = e.Respond(ctx, "motor", "j1", Choice{ID: "car"})
		require.NoError(t, err)
		_, err = e.Respond(ctx, "motor", "j1", Choice{ID: "yes"})
		require.NoError(t, err)
		s, err := e.Respond(ctx, "motor", "j1", Text{Value: "Asha"})
		require.NoError(t, err)
		return s
	}
	assert.Empty(t, cmp.Diff(run(), run()))
}

func TestResetStartsOver(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testCatalog())
	_, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	_, err = e.Respond(ctx, "motor", "j1", Choice{ID: "car"})
	require.NoError(t, err)

	s, err := e.Reset(ctx, "motor", "j1")
	require.NoError(t, err)
	assert.Equal(t, StepID("intro.type"), s.CurrentStep)
	assert.Empty(t, s.Answers)
	assert.Equal(t, "", s.GetString("type"))

	_, err = e.Reset(ctx, "motor", "nobody")
	assert.ErrorIs(t, err, ErrJourneyNotFound)
}

func TestRespondText(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testCatalog())
	_, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)

	s, err := e.RespondText(ctx, "motor", "j1", "2")
	require.NoError(t, err)
	assert.Equal(t, "bike", s.GetString("type"))

	_, err = e.RespondText(ctx, "motor", "j1", "")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSnapshot(t *testing.T) {
	c := testCatalog()
	c.SetModules("intro", "vehicle", "dashboard")
	e := newTestEngine(t, c)
	s, err := e.Start(context.Background(), "motor", "j1")
	require.NoError(t, err)

	snap := e.Snapshot(s)
	assert.Equal(t, 33, snap.Progress)
	require.NotNil(t, snap.Prompt)
	assert.Equal(t, StepID("intro.type"), snap.Prompt.StepID)
	assert.Len(t, snap.Prompt.Script.Options, 2)
}

func TestCancelledContextStopsAdvance(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := newTestEngine(t, testCatalog(), WithPacer(SleepPacer{}), WithPacing(Pacing{Min: time.Hour}))
	cancel()

	s, err := e.Start(ctx, "motor", "j1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, StepID("intro.welcome"), s.CurrentStep)

	e2 := newTestEngine(t, testCatalog())
	e2.storage = e.storage
	s, err = e2.Resume(context.Background(), "motor", "j1")
	require.NoError(t, err)
	assert.Equal(t, StatusAwaiting, s.Status)
}

func TestJourneyLocksAreReleased(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testCatalog())

	for _, id := range []string{"j1", "j2", "j3"} {
		_, err := e.Start(ctx, "motor", id)
		require.NoError(t, err)
		_, err = e.Respond(ctx, "motor", id, Choice{ID: "car"})
		require.NoError(t, err)
	}
	require.NoError(t, e.Delete(ctx, "motor", "j2"))

	assert.Zero(t, e.locks.Len())
	_, err := e.Get(ctx, "motor", "j2")
	assert.ErrorIs(t, err, ErrJourneyNotFound)
}
